package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "freshd",
	Short: "계약 파이프라인 신선도 레지스트리",
	Long: `Freshness Registry Unified CLI

계약/상품그룹 체크포인트의 최종 완료 시각을 기록하고,
임계값 기준으로 신선도(currency)를 판정하는 레지스트리 서비스.

Usage:
  go run ./cmd/freshd [command]

Examples:
  go run ./cmd/freshd api
  go run ./cmd/freshd report --group fx-forwards
  go run ./cmd/freshd status
  go run ./cmd/freshd check`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
