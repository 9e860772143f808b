package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/freshness/internal/freshness"
	"github.com/wonny/freshness/pkg/config"
	"github.com/wonny/freshness/pkg/httputil"
	"github.com/wonny/freshness/pkg/logger"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "상품그룹 currency 리포트 조회",
	Long: `실행 중인 API 서버에서 상품그룹의 currency 리포트를 조회합니다.

Example:
  go run ./cmd/freshd report --group fx-forwards
  go run ./cmd/freshd report --group fx-forwards --json`,
	RunE: runReport,
}

var (
	reportGroup string
	reportJSON  bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	// Flags
	reportCmd.Flags().StringVar(&reportGroup, "group", "", "상품그룹 식별자 (필수)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "JSON 원문 출력")
	reportCmd.MarkFlagRequired("group")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	client := httputil.New(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/groups/%s/report", cfg.APIBaseURL, url.PathEscape(reportGroup))

	var report freshness.CurrencyReport
	if err := client.GetJSON(ctx, endpoint, &report); err != nil {
		return fmt.Errorf("fetch report: %w", err)
	}

	if reportJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printReport(&report)
	return nil
}

func printReport(report *freshness.CurrencyReport) {
	fmt.Printf("=== Currency Report: %s ===\n", report.ProductGroup)
	fmt.Printf("Checked at: %s\n\n", report.CheckedAt.Format(time.RFC3339))

	fmt.Printf("Contracts: %d total, %d fully current, %d stale\n",
		report.TotalContracts, report.FullyCurrentCount, report.StaleContractCount)

	for _, contract := range report.Contracts {
		marker := "✅"
		if !contract.FullyCurrent {
			marker = "❌"
		}
		fmt.Printf("\n%s %s (stale: %d)\n", marker, contract.ContractID, contract.StaleCount)

		for _, entry := range contract.Events {
			if !entry.Stale {
				continue
			}
			if entry.LastRun == nil {
				fmt.Printf("   - %s: never recorded\n", entry.Event)
			} else {
				fmt.Printf("   - %s: last run %s (%dm ago)\n",
					entry.Event, entry.LastRun.Format(time.RFC3339), *entry.AgeMinutes)
			}
		}
	}

	fmt.Println("\nGroup events:")
	for _, entry := range report.ProductGroupEvents {
		marker := "✅"
		if entry.Stale {
			marker = "❌"
		}
		if entry.LastRun == nil {
			fmt.Printf("%s %s: never recorded\n", marker, entry.Event)
		} else {
			fmt.Printf("%s %s: last run %s\n", marker, entry.Event, entry.LastRun.Format(time.RFC3339))
		}
	}

	if report.AllCurrent {
		fmt.Println("\n✅ All current")
	} else {
		fmt.Println("\n❌ Stale checkpoints present")
	}
}
