package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// quotesCmd represents the quotes command
var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "시세 1회 갱신 후 보드 출력",
	Long: `전체 카탈로그를 배치로 1회 갱신하고 시세 보드를 출력합니다.

실패한 배치는 건너뛰며, 사이클 결과를 함께 표시합니다.

Example:
  go run ./cmd/quantedge quotes
  go run ./cmd/quantedge quotes --sector IT
  go run ./cmd/quantedge quotes --q tata`,
	RunE: runQuotes,
}

var (
	quotesSector string
	quotesQuery  string
)

func init() {
	rootCmd.AddCommand(quotesCmd)

	quotesCmd.Flags().StringVar(&quotesSector, "sector", "", "섹터 필터 (All = 전체)")
	quotesCmd.Flags().StringVarP(&quotesQuery, "q", "q", "", "종목/이름 검색")
}

// refreshOnce runs a single cycle bounded by a deadline
func refreshOnce(ctx context.Context, a *app) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	result, err := a.aggregator.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh quotes: %w", err)
	}

	for _, be := range result.Errors {
		PrintWarning(fmt.Sprintf("batch %d (%d symbols) failed: %s", be.Index+1, len(be.Symbols), be.Kind))
	}
	fmt.Printf("Refresh %s: %d/%d batches ok, %d quotes merged in %s\n",
		result.Status, result.Succeeded, result.Batches, result.Merged, result.Duration.Round(time.Millisecond))
	return nil
}

func runQuotes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := refreshOnce(ctx, a); err != nil {
		return err
	}

	rows := a.service.Board(quotesQuery, quotesSector)

	PrintHeader(fmt.Sprintf("Quote Board (%d)", len(rows)))
	widths := []int{12, 28, 14, 12, 10, 6}
	PrintTableHeader([]string{"SYMBOL", "NAME", "SECTOR", "PRICE", "CHANGE", "STALE"}, widths)
	for _, r := range rows {
		stale := ""
		if r.Stale {
			stale = "yes"
		}
		change := "-"
		if r.HasQuote() {
			change = formatSigned(r.ChangePercent, "%")
		}
		PrintTableRow([]string{r.Symbol, r.Name, r.Sector, formatPrice(r.LastPrice), change, stale}, widths)
	}

	st := a.service.Status()
	fmt.Println()
	PrintKeyValue("Status", string(st.Status), 14)
	PrintKeyValue("Last success", formatTime(st.LastSuccessfulRefresh), 14)
	return nil
}
