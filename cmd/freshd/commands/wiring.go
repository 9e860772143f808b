package commands

import (
	"fmt"

	"github.com/wonny/freshness/internal/freshness"
	"github.com/wonny/freshness/internal/membership"
	"github.com/wonny/freshness/pkg/config"
	"github.com/wonny/freshness/pkg/database"
	"github.com/wonny/freshness/pkg/httputil"
	"github.com/wonny/freshness/pkg/logger"
	"github.com/wonny/freshness/pkg/redis"
)

// buildPolicies loads the two threshold tables, applying any overrides
// from configuration on top of the defaults
func buildPolicies(cfg *config.Config) (freshness.Policy, freshness.Policy, error) {
	contractPolicy, err := freshness.DefaultContractPolicy().WithOverrides(cfg.ContractThresholds)
	if err != nil {
		return freshness.Policy{}, freshness.Policy{}, fmt.Errorf("contract thresholds: %w", err)
	}

	groupPolicy, err := freshness.DefaultProductGroupPolicy().WithOverrides(cfg.ProductGroupThresholds)
	if err != nil {
		return freshness.Policy{}, freshness.Policy{}, fmt.Errorf("product group thresholds: %w", err)
	}

	return contractPolicy, groupPolicy, nil
}

// buildResolver constructs the configured membership resolver, optionally
// wrapped in a Redis-backed cache. The returned cleanup closes whatever
// connections the resolver owns.
// ⭐ SSOT: 리졸버 조립은 이 함수에서만
func buildResolver(cfg *config.Config, log *logger.Logger) (freshness.MembershipResolver, func(), error) {
	cleanup := func() {}

	var resolver freshness.MembershipResolver

	switch cfg.Resolver.Kind {
	case "static":
		members, err := membership.ParseStaticMembers(cfg.Resolver.StaticMembers)
		if err != nil {
			return nil, nil, fmt.Errorf("parse static members: %w", err)
		}
		resolver = membership.NewStaticResolver(members)

	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to contract store: %w", err)
		}
		cleanup = db.Close
		resolver = membership.NewPostgresResolver(db.Pool)

	case "http":
		client := httputil.New(cfg, log)
		if cfg.Redis.Enabled {
			redisClient, err := redis.New(cfg)
			if err != nil {
				return nil, nil, fmt.Errorf("connect to redis: %w", err)
			}
			limiter := redis.NewRateLimiter(redisClient, "freshness")
			client = client.WithRateLimiter(limiter, redis.ContractStoreRateLimit)
		}
		resolver = membership.NewHTTPResolver(client, cfg.Resolver.BaseURL, cfg.Resolver.RatePerSecond, log)

	default:
		return nil, nil, fmt.Errorf("unknown resolver kind %q", cfg.Resolver.Kind)
	}

	// Membership lookups are cacheable for a single sweep interval
	if cfg.Redis.Enabled && cfg.Resolver.Kind != "static" {
		redisClient, err := redis.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		cache := redis.NewCache(redisClient, "freshness")
		resolver = membership.NewCachedResolver(resolver, cache, cfg.Resolver.CacheTTL, log)

		inner := cleanup
		cleanup = func() {
			redisClient.Close()
			inner()
		}
	}

	return resolver, cleanup, nil
}
