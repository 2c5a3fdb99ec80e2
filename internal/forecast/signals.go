package forecast

import (
	"math"
	"sync"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
)

// Signals technical snapshot feeding the composite score
type Signals struct {
	RSI       float64
	MACD      float64
	Sentiment float64 // 0..1, 0.5 neutral
}

// SignalSource produces Signals for a close series
type SignalSource interface {
	Signals(history []float64, rnd Rand) Signals
}

// RandomSignals draws RSI in [30,80), MACD in [-10,10) and sentiment in [0,1).
// History is ignored.
type RandomSignals struct{}

// Signals implements SignalSource
func (RandomSignals) Signals(_ []float64, rnd Rand) Signals {
	return Signals{
		RSI:       30 + rnd.Float64()*50,
		MACD:      (rnd.Float64() - 0.5) * 20,
		Sentiment: rnd.Float64(),
	}
}

// IndicatorSignals computes RSI and MACD from the history.
// Sentiment has no market source and is still drawn from rnd.
// Series too short for an indicator fall back to neutral (RSI 50, MACD 0).
type IndicatorSignals struct {
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// DefaultIndicatorSignals RSI(14), MACD(12,26,9)
func DefaultIndicatorSignals() IndicatorSignals {
	return IndicatorSignals{RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9}
}

// Signals implements SignalSource
func (s IndicatorSignals) Signals(history []float64, rnd Rand) Signals {
	return Signals{
		RSI:       s.rsi(history),
		MACD:      s.macd(history),
		Sentiment: rnd.Float64(),
	}
}

func (s IndicatorSignals) rsi(history []float64) float64 {
	if len(history) <= s.RSIPeriod {
		return 50
	}

	rsi := momentum.NewRsiWithPeriod[float64](s.RSIPeriod)
	values := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(history)))

	// 변화가 없는 구간은 0/0 → NaN
	return lastFinite(values, 50)
}

func (s IndicatorSignals) macd(history []float64) float64 {
	if len(history) < s.MACDSlow {
		return 0
	}

	macd := trend.NewMacdWithPeriod[float64](s.MACDFast, s.MACDSlow, s.MACDSignal)
	lineCh, signalCh := macd.Compute(helper.SliceToChan(history))

	// 두 채널을 동시에 비워야 파이프라인이 막히지 않음
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range signalCh {
		}
	}()
	line := helper.ChanToSlice(lineCh)
	wg.Wait()

	return lastFinite(line, 0)
}

func lastFinite(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	v := values[len(values)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
