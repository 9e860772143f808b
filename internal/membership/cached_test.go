package membership

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/freshness/pkg/config"
	"github.com/wonny/freshness/pkg/logger"
	"github.com/wonny/freshness/pkg/redis"
)

type countingResolver struct {
	calls int
	ids   []string
	err   error
}

func (r *countingResolver) ListContractIDs(_ context.Context, _ string) ([]string, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.ids, nil
}

// With Redis disabled the cache is a no-op and every lookup calls through.
// The redis-backed path needs a live server and is covered by the
// integration environment, not unit tests.
func TestCachedResolverPassThroughWhenRedisDisabled(t *testing.T) {
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	cache := redis.NewCache(client, "freshness")

	inner := &countingResolver{ids: []string{"C1"}}
	resolver := NewCachedResolver(inner, cache, redis.TTLShort, logger.NewWithWriter(io.Discard, "error"))

	for i := 0; i < 3; i++ {
		ids, err := resolver.ListContractIDs(context.Background(), "fx-forwards")
		require.NoError(t, err)
		assert.Equal(t, []string{"C1"}, ids)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestCachedResolverPropagatesInnerFailure(t *testing.T) {
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)
	cache := redis.NewCache(client, "freshness")

	inner := &countingResolver{err: ErrUnavailable}
	resolver := NewCachedResolver(inner, cache, redis.TTLShort, logger.NewWithWriter(io.Discard, "error"))

	_, err = resolver.ListContractIDs(context.Background(), "fx-forwards")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
