package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/freshness/internal/freshness"
	"github.com/wonny/freshness/pkg/config"
	"github.com/wonny/freshness/pkg/httputil"
	"github.com/wonny/freshness/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "감시 대상 그룹 currency 요약",
	Long: `SWEEP_GROUPS에 설정된 모든 상품그룹의 currency 요약을
실행 중인 API 서버에서 조회합니다.

Example:
  go run ./cmd/freshd status
  go run ./cmd/freshd status --groups fx-forwards,commodity-swaps`,
	RunE: runStatus,
}

var (
	statusGroups []string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().StringSliceVar(&statusGroups, "groups", nil, "조회할 그룹 목록 (기본: SWEEP_GROUPS)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	groups := statusGroups
	if len(groups) == 0 {
		groups = cfg.Sweep.Groups
	}
	if len(groups) == 0 {
		return fmt.Errorf("no groups configured (set SWEEP_GROUPS or pass --groups)")
	}

	log := logger.New(cfg)
	client := httputil.New(cfg, log)

	fmt.Println("=== Freshness Status ===")

	failures := 0
	for _, group := range groups {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		endpoint := fmt.Sprintf("%s/api/groups/%s/report", cfg.APIBaseURL, url.PathEscape(group))

		var report freshness.CurrencyReport
		err := client.GetJSON(ctx, endpoint, &report)
		cancel()

		if err != nil {
			fmt.Printf("❌ %s: %v\n", group, err)
			failures++
			continue
		}

		marker := "✅"
		if !report.AllCurrent {
			marker = "❌"
		}
		fmt.Printf("%s %-24s contracts=%d current=%d stale=%d\n",
			marker, group, report.TotalContracts, report.FullyCurrentCount, report.StaleContractCount)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d groups could not be checked", failures, len(groups))
	}
	return nil
}
