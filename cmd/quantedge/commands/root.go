package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envOverride string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quantedge",
	Short: "QuantEdge - NSE 시세, 옵션 가격, 방향성 예측",
	Long: `QuantEdge Unified CLI

NSE 종목/지수 시세를 배치로 수집하고
Black-Scholes 옵션 가격과 앙상블 예측을 제공합니다.

Usage:
  go run ./cmd/quantedge [command]

Examples:
  go run ./cmd/quantedge serve
  go run ./cmd/quantedge quotes --sector IT
  go run ./cmd/quantedge options RELIANCE --strike 1300 --expiry 30
  go run ./cmd/quantedge forecast TCS`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envOverride, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
