package membership

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/freshness/pkg/config"
	"github.com/wonny/freshness/pkg/httputil"
	"github.com/wonny/freshness/pkg/logger"
)

func testHTTPClient() *httputil.Client {
	log := logger.NewWithWriter(io.Discard, "error")
	return httputil.New(&config.Config{}, log).DisableRetry()
}

func TestHTTPResolverListContractIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/product-groups/fx-forwards/contracts", r.URL.Path)
		json.NewEncoder(w).Encode(membersResponse{
			ProductGroup: "fx-forwards",
			ContractIDs:  []string{"C1", "C2"},
		})
	}))
	defer server.Close()

	resolver := NewHTTPResolver(testHTTPClient(), server.URL, 100, logger.NewWithWriter(io.Discard, "error"))

	ids, err := resolver.ListContractIDs(context.Background(), "fx-forwards")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2"}, ids)
}

func TestHTTPResolverEmptyGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(membersResponse{ProductGroup: "empty-group"})
	}))
	defer server.Close()

	resolver := NewHTTPResolver(testHTTPClient(), server.URL, 100, logger.NewWithWriter(io.Discard, "error"))

	ids, err := resolver.ListContractIDs(context.Background(), "empty-group")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids, "empty group is a valid answer, not a failure")
}

func TestHTTPResolverServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver := NewHTTPResolver(testHTTPClient(), server.URL, 100, logger.NewWithWriter(io.Discard, "error"))

	_, err := resolver.ListContractIDs(context.Background(), "fx-forwards")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPResolverUnreachableIsUnavailable(t *testing.T) {
	resolver := NewHTTPResolver(testHTTPClient(), "http://127.0.0.1:1", 100, logger.NewWithWriter(io.Discard, "error"))

	_, err := resolver.ListContractIDs(context.Background(), "fx-forwards")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPResolverPathEscapesGroup(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(membersResponse{})
	}))
	defer server.Close()

	resolver := NewHTTPResolver(testHTTPClient(), server.URL, 100, logger.NewWithWriter(io.Discard, "error"))

	_, err := resolver.ListContractIDs(context.Background(), "fx/forwards")
	require.NoError(t, err)
	assert.Equal(t, "/api/product-groups/fx%2Fforwards/contracts", gotPath)
}
