package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/quantedge/internal/contracts"
)

// forecastCmd represents the forecast command
var forecastCmd = &cobra.Command{
	Use:   "forecast [symbol]",
	Short: "앙상블 방향성 예측",
	Long: `현재가와 가격 이력으로 1일/5일/30일 목표가와 상승/하락 확률을 계산합니다.

--price 를 주면 네트워크 없이 계산합니다.
FORECAST_SEED 를 고정하면 같은 입력에 같은 결과가 나옵니다.

Example:
  go run ./cmd/quantedge forecast TCS
  go run ./cmd/quantedge forecast RELIANCE --price 1300`,
	Args: cobra.ExactArgs(1),
	RunE: runForecast,
}

var (
	forecastPrice float64
)

func init() {
	rootCmd.AddCommand(forecastCmd)

	forecastCmd.Flags().Float64Var(&forecastPrice, "price", 0, "현재가 (생략 시 시세 조회)")
}

func runForecast(cmd *cobra.Command, args []string) error {
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

	var f *contracts.Forecast
	if forecastPrice > 0 {
		history, err := a.history.History(ctx, inst.Symbol, forecastPrice)
		if err != nil {
			return err
		}
		f, err = a.engine.Forecast(forecastPrice, history, a.rand.For(inst.Symbol, forecastPrice))
		if err != nil {
			return err
		}
		f.Symbol = inst.Symbol
	} else {
		if err := refreshOnce(ctx, a); err != nil {
			return err
		}
		f, err = a.service.ComputeForecast(ctx, inst.Symbol)
		if err != nil {
			return err
		}
	}

	printForecast(inst, f)
	return nil
}

func printForecast(inst contracts.Instrument, f *contracts.Forecast) {
	PrintHeader(fmt.Sprintf("%s (%s) forecast: %s", inst.Symbol, inst.Name, f.Direction()))

	PrintKeyValue("Price", formatPrice(f.CurrentPrice), 12)
	PrintKeyValue("1D target", formatPrice(f.Targets.OneDay), 12)
	PrintKeyValue("5D target", formatPrice(f.Targets.FiveDay), 12)
	PrintKeyValue("30D target", formatPrice(f.Targets.ThirtyDay), 12)
	PrintKeyValue("Bull / Bear", fmt.Sprintf("%d%% / %d%%", f.BullPct, f.BearPct), 12)
	PrintKeyValue("RSI / MACD", fmt.Sprintf("%.0f / %s", f.RSI, formatSigned(f.MACD, "")), 12)
	PrintKeyValue("Sentiment", f.Sentiment, 12)
	PrintKeyValue("Regime", f.Regime, 12)
	PrintKeyValue("Confidence", fmt.Sprintf("%d%%", f.Confidence), 12)

	fmt.Println()
	PrintKeyValue("Support", formatPrice(f.Levels.Support), 12)
	PrintKeyValue("Resistance", formatPrice(f.Levels.Resistance), 12)
	PrintKeyValue("Stop loss", formatPrice(f.Levels.StopLoss), 12)
	PrintKeyValue("Target", formatPrice(f.Levels.Target), 12)

	names := make([]string, 0, len(f.ModelScores))
	for name := range f.ModelScores {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	for _, name := range names {
		PrintKeyValue(name, fmt.Sprintf("%d%%", f.ModelScores[name]), 12)
	}
}
