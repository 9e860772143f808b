package membership

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStaticMembers(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    map[string][]string
		wantErr bool
	}{
		{
			name: "two groups",
			spec: "fx-forwards=C1|C2;commodity-swaps=C3",
			want: map[string][]string{
				"fx-forwards":     {"C1", "C2"},
				"commodity-swaps": {"C3"},
			},
		},
		{
			name: "whitespace and empty parts tolerated",
			spec: " fx-forwards = C1 | C2 ; ",
			want: map[string][]string{
				"fx-forwards": {"C1", "C2"},
			},
		},
		{
			name: "group with no contracts",
			spec: "empty-group=",
			want: map[string][]string{
				"empty-group": nil,
			},
		},
		{
			name: "empty spec",
			spec: "",
			want: map[string][]string{},
		},
		{
			name:    "missing separator",
			spec:    "fx-forwards",
			wantErr: true,
		},
		{
			name:    "empty group name",
			spec:    "=C1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStaticMembers(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticResolver(t *testing.T) {
	resolver := NewStaticResolver(map[string][]string{
		"fx-forwards": {"C1", "C2"},
	})

	ids, err := resolver.ListContractIDs(context.Background(), "fx-forwards")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2"}, ids)

	// Unknown groups have zero contracts, not an error
	ids, err = resolver.ListContractIDs(context.Background(), "no-such-group")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStaticResolverCopiesInput(t *testing.T) {
	source := map[string][]string{"g": {"C1"}}
	resolver := NewStaticResolver(source)

	source["g"][0] = "mutated"

	ids, err := resolver.ListContractIDs(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1"}, ids)
}
