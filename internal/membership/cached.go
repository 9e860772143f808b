package membership

import (
	"context"
	"time"

	"github.com/wonny/freshness/internal/freshness"
	"github.com/wonny/freshness/pkg/logger"
	"github.com/wonny/freshness/pkg/redis"
)

// CachedResolver decorates another resolver with a short-TTL Redis cache.
// Cache misses call through; inner failures always propagate, so a broken
// store is never reported as an empty group.
type CachedResolver struct {
	inner  freshness.MembershipResolver
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedResolver wraps inner with a membership cache
func NewCachedResolver(inner freshness.MembershipResolver, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	return &CachedResolver{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// ListContractIDs serves from cache when possible
func (r *CachedResolver) ListContractIDs(ctx context.Context, productGroup string) ([]string, error) {
	key := redis.GroupMembersKey(productGroup)

	var cached []string
	found, err := r.cache.Get(ctx, key, &cached)
	if err != nil {
		// A corrupt cache entry is a miss, not a failure
		r.logger.WithError(err).WithField("group", productGroup).Warn("Membership cache read failed")
	} else if found {
		return cached, nil
	}

	ids, err := r.inner.ListContractIDs(ctx, productGroup)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, ids, r.ttl); err != nil {
		r.logger.WithError(err).WithField("group", productGroup).Warn("Membership cache write failed")
	}

	return ids, nil
}
