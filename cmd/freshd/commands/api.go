package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/freshness/internal/api"
	"github.com/wonny/freshness/internal/api/handlers"
	"github.com/wonny/freshness/internal/freshness"
	"github.com/wonny/freshness/internal/scheduler"
	"github.com/wonny/freshness/internal/scheduler/jobs"
	"github.com/wonny/freshness/pkg/config"
	"github.com/wonny/freshness/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `신선도 레지스트리 API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 체크포인트 기록/조회 엔드포인트 제공
- 설정된 그룹에 대한 주기적 currency sweep 실행

Endpoints:
  GET  /health                        - Health check
  POST /api/events                    - 체크포인트 기록
  GET  /api/contracts/{id}/stamps     - 스탬프 조회
  GET  /api/contracts/{id}/stale      - 스테일 이벤트 조회
  GET  /api/contracts/{id}/current    - 계약 currency 판정
  GET  /api/groups/{g}/staleness      - 그룹 스테일 조회
  GET  /api/groups/{g}/current        - 그룹 currency 판정
  GET  /api/groups/{g}/report         - Currency 리포트
  GET  /ws/currency                   - 실시간 리포트 스트림

Example:
  go run ./cmd/freshd api
  go run ./cmd/freshd api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Freshness Registry API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"env":      cfg.Env,
		"resolver": cfg.Resolver.Kind,
	}).Info("Initializing API server")

	// 3. Load threshold tables
	contractPolicy, groupPolicy, err := buildPolicies(cfg)
	if err != nil {
		return err
	}

	// 4. Build membership resolver
	resolver, cleanup, err := buildResolver(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// 5. Create registry
	registry := freshness.New(contractPolicy, groupPolicy, resolver, log)

	// 6. Set up currency sweep scheduler
	var sched *scheduler.Scheduler
	if cfg.Sweep.Enabled && len(cfg.Sweep.Groups) > 0 {
		sched = scheduler.New(log)
		sweep := jobs.NewCurrencySweep(registry, cfg.Sweep.Groups, cfg.Sweep.Schedule, cfg.Resolver.Timeout, log)
		if err := sched.AddJob(sweep); err != nil {
			return fmt.Errorf("schedule currency sweep: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	} else {
		log.Info("Currency sweep disabled")
	}

	// 7. Create handlers and router
	freshnessHandler := handlers.NewFreshnessHandler(registry, cfg.Resolver.Timeout, log)
	stream := api.NewCurrencyStream(registry, cfg.Resolver.Timeout, log)
	router := api.NewRouter(freshnessHandler, stream, sched, log)

	// 8. Create server
	server := api.New(cfg, log, router)

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
