package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/internal/pricing"
)

// optionsCmd represents the options command
var optionsCmd = &cobra.Command{
	Use:   "options [symbol]",
	Short: "Black-Scholes 옵션 가격 / 그릭스",
	Long: `종목의 옵션 가격과 그릭스를 계산합니다.

--spot 을 주면 네트워크 없이 계산하고,
생략하면 시세를 1회 갱신한 뒤 현재가를 사용합니다.

Example:
  go run ./cmd/quantedge options RELIANCE
  go run ./cmd/quantedge options RELIANCE --strike 1300 --expiry 30
  go run ./cmd/quantedge options NIFTY50 --spot 24000 --ladder`,
	Args: cobra.ExactArgs(1),
	RunE: runOptions,
}

var (
	optionsStrike float64
	optionsExpiry int
	optionsSpot   float64
	optionsLadder bool
)

func init() {
	rootCmd.AddCommand(optionsCmd)

	optionsCmd.Flags().Float64Var(&optionsStrike, "strike", 0, "행사가 (0 = ATM)")
	optionsCmd.Flags().IntVar(&optionsExpiry, "expiry", 30, "만기 (일)")
	optionsCmd.Flags().Float64Var(&optionsSpot, "spot", 0, "기초자산 가격 (생략 시 시세 조회)")
	optionsCmd.Flags().BoolVar(&optionsLadder, "ladder", false, "ATM 주변 행사가 래더 출력")
}

func runOptions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	inst, err := a.service.Instrument(args[0])
	if err != nil {
		return err
	}

	spot := optionsSpot
	if spot <= 0 {
		if err := refreshOnce(ctx, a); err != nil {
			return err
		}
		q, ok := a.service.CurrentQuote(inst.Symbol)
		if !ok {
			PrintWarning("no quote for " + inst.Symbol + ", prices are degenerate")
		}
		spot = q.LastPrice
	}

	rate := a.cfg.Pricing.RiskFreeRate

	PrintHeader(fmt.Sprintf("%s options, %dd expiry", inst.Symbol, optionsExpiry))
	PrintKeyValue("Spot", formatPrice(spot), 10)
	PrintKeyValue("IV", fmt.Sprintf("%.1f%%", inst.IV*100), 10)
	PrintKeyValue("Rate", fmt.Sprintf("%.2f%%", rate*100), 10)
	fmt.Println()

	widths := []int{10, 10, 10, 8, 8, 8, 9, 8}
	PrintTableHeader([]string{"STRIKE", "CALL", "PUT", "Δ CALL", "Δ PUT", "GAMMA", "THETA", "VEGA"}, widths)

	strikes := []float64{optionsStrike}
	if optionsStrike <= 0 {
		strikes = []float64{pricing.ATMStrike(spot)}
	}
	if optionsLadder {
		strikes = pricing.StrikeLadder(spot)
	}

	for _, k := range strikes {
		printOptionRow(pricing.Quote(spot, k, rate, optionsExpiry, inst.IV), widths)
	}
	return nil
}

func printOptionRow(q contracts.OptionQuote, widths []int) {
	g := q.Greeks
	PrintTableRow([]string{
		fmt.Sprintf("%.0f", q.Strike),
		fmt.Sprintf("%.2f", q.CallPrice),
		fmt.Sprintf("%.2f", q.PutPrice),
		fmt.Sprintf("%.3f", g.DeltaCall),
		fmt.Sprintf("%.3f", g.DeltaPut),
		fmt.Sprintf("%.5f", g.Gamma),
		fmt.Sprintf("%.3f", g.Theta),
		fmt.Sprintf("%.3f", g.Vega),
	}, widths)
}
