// Package forecast produces the ensemble directional forecast.
package forecast

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wonny/quantedge/internal/contracts"
)

// 점수 가중치
const (
	momentumWeight  = 0.30
	sentimentWeight = 0.25
	rsiAdjust       = 0.04
	macdAdjust      = 0.15
	trendThreshold  = 0.02

	minBull = 20.0
	maxBull = 85.0
)

type horizon struct {
	drift float64 // score multiplier
	noise float64 // full width of the symmetric perturbation
}

var (
	oneDay    = horizon{drift: 0.015, noise: 0.008}
	fiveDay   = horizon{drift: 0.04, noise: 0.02}
	thirtyDay = horizon{drift: 0.12, noise: 0.06}
)

// Regimes and Sentiments label vocabularies
var (
	Regimes    = []string{"Trending Bull", "Trending Bear", "Sideways", "High Volatility"}
	Sentiments = []string{"Bullish", "Bearish", "Neutral", "Strongly Bullish", "Mildly Bearish"}
)

// Engine ensemble forecaster. Stateless between calls.
type Engine struct {
	signals  SignalSource
	models   []ModelScorer
	headline ModelScorer
	log      zerolog.Logger
}

// NewEngine creates an engine with the default model bands
func NewEngine(signals SignalSource, log zerolog.Logger) *Engine {
	if signals == nil {
		signals = RandomSignals{}
	}
	return &Engine{
		signals:  signals,
		models:   DefaultModels(),
		headline: HeadlineConfidence,
		log:      log.With().Str("component", "forecast.engine").Logger(),
	}
}

// WithModels replaces the sub-model scorers
func (e *Engine) WithModels(models ...ModelScorer) *Engine {
	e.models = models
	return e
}

// Forecast computes a forecast from currentPrice and closes (oldest first).
// Empty history or a non-positive price is ErrInvalidArgument.
func (e *Engine) Forecast(currentPrice float64, history []float64, rnd Rand) (*contracts.Forecast, error) {
	if !(currentPrice > 0) || math.IsInf(currentPrice, 0) {
		return nil, fmt.Errorf("forecast: current price %v: %w", currentPrice, contracts.ErrInvalidArgument)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("forecast: empty history: %w", contracts.ErrInvalidArgument)
	}
	if !(history[0] > 0) {
		return nil, fmt.Errorf("forecast: first close %v: %w", history[0], contracts.ErrInvalidArgument)
	}

	first, last := history[0], history[len(history)-1]
	trendFactor := (last - first) / first

	sig := e.signals.Signals(history, rnd)
	score := compositeScore(momentumSign(trendFactor), sig)

	bull := int(math.Round(clamp(50+score*50, minBull, maxBull)))

	f := &contracts.Forecast{
		CurrentPrice: currentPrice,
		Targets: contracts.ForecastTargets{
			OneDay:    target(currentPrice, score, oneDay, rnd),
			FiveDay:   target(currentPrice, score, fiveDay, rnd),
			ThirtyDay: target(currentPrice, score, thirtyDay, rnd),
		},
		BullPct:   bull,
		BearPct:   100 - bull,
		RSI:       math.Round(sig.RSI),
		MACD:      round2(sig.MACD),
		Sentiment: pick(Sentiments, rnd),
	}
	f.Confidence = e.headline.Score(rnd)
	f.Regime = pick(Regimes, rnd)

	f.ModelScores = make(map[string]int, len(e.models))
	for _, m := range e.models {
		f.ModelScores[m.Name()] = m.Score(rnd)
	}

	f.Levels = contracts.ForecastLevels{
		Support:    round2(currentPrice * 0.97),
		Resistance: round2(currentPrice * 1.03),
		StopLoss:   round2(currentPrice * 0.95),
		Target:     round2(currentPrice * 1.06),
	}

	f.History = make([]float64, len(history))
	copy(f.History, history)

	e.log.Debug().
		Float64("price", currentPrice).
		Float64("trend", trendFactor).
		Float64("score", score).
		Int("bull", bull).
		Msg("forecast computed")

	return f, nil
}

func momentumSign(trendFactor float64) float64 {
	switch {
	case trendFactor > trendThreshold:
		return 1
	case trendFactor < -trendThreshold:
		return -1
	default:
		return 0
	}
}

func compositeScore(mom float64, sig Signals) float64 {
	score := mom*momentumWeight + (sig.Sentiment-0.5)*sentimentWeight

	switch {
	case sig.RSI < 30:
		score += rsiAdjust
	case sig.RSI > 70:
		score -= rsiAdjust
	}

	switch {
	case sig.MACD > 0:
		score += macdAdjust
	case sig.MACD < 0:
		score -= macdAdjust
	}

	return score
}

func target(price, score float64, h horizon, rnd Rand) float64 {
	return round2(price * (1 + score*h.drift + (rnd.Float64()-0.5)*h.noise))
}

func pick(labels []string, rnd Rand) string {
	i := int(rnd.Float64() * float64(len(labels)))
	if i >= len(labels) {
		i = len(labels) - 1
	}
	return labels[i]
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
