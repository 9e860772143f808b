package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/freshness/pkg/config"
	"github.com/wonny/freshness/pkg/database"
	"github.com/wonny/freshness/pkg/logger"
	"github.com/wonny/freshness/pkg/redis"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "백엔드 연결 확인",
	Long: `설정된 백엔드(계약 저장소 DB, Redis) 연결을 확인합니다.

Example:
  go run ./cmd/freshd check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Backend Connectivity Check ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	fmt.Printf("Resolver kind: %s\n", cfg.Resolver.Kind)

	failed := false

	// 1. Contract store (only used by the postgres resolver)
	if cfg.Resolver.Kind == "postgres" {
		fmt.Printf("\nDatabase URL: %s\n", maskPassword(cfg.Database.URL))

		db, err := database.New(cfg)
		if err != nil {
			fmt.Printf("❌ Database connection failed: %v\n", err)
			failed = true
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := db.Ping(ctx); err != nil {
				fmt.Printf("❌ Database ping failed: %v\n", err)
				failed = true
			} else {
				stats := db.Stats()
				fmt.Printf("✅ Database connected (total=%d idle=%d)\n", stats.TotalConns, stats.IdleConns)
			}
			cancel()
			db.Close()
		}
	} else {
		fmt.Println("\nDatabase: not used by this resolver, skipping")
	}

	// 2. Redis (membership cache + rate limiter)
	if cfg.Redis.Enabled {
		fmt.Printf("\nRedis: %s:%s\n", cfg.Redis.Host, cfg.Redis.Port)

		redisClient, err := redis.New(cfg)
		if err != nil {
			fmt.Printf("❌ Redis connection failed: %v\n", err)
			failed = true
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := redisClient.Ping(ctx); err != nil {
				fmt.Printf("❌ Redis ping failed: %v\n", err)
				failed = true
			} else {
				fmt.Println("✅ Redis connected")
			}
			cancel()
			redisClient.Close()
		}
	} else {
		fmt.Println("\nRedis: disabled, skipping")
	}

	if failed {
		log.Error("Backend connectivity check failed")
		return fmt.Errorf("one or more backends are unreachable")
	}

	fmt.Println("\n✅ All configured backends reachable")
	return nil
}

// maskPassword hides the password portion of a connection URL for display
func maskPassword(url string) string {
	if url == "" {
		return "(not set)"
	}

	atIdx := strings.Index(url, "@")
	if atIdx == -1 {
		return url
	}

	schemeEnd := strings.Index(url, "://")
	if schemeEnd == -1 {
		return url
	}

	credentials := url[schemeEnd+3 : atIdx]
	colonIdx := strings.Index(credentials, ":")
	if colonIdx == -1 {
		return url
	}

	user := credentials[:colonIdx]
	return url[:schemeEnd+3] + user + ":****" + url[atIdx:]
}
