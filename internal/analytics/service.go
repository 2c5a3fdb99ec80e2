package analytics

import (
	"context"
	"fmt"

	"github.com/wonny/quantedge/internal/catalog"
	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/internal/forecast"
	"github.com/wonny/quantedge/internal/pricing"
	"github.com/wonny/quantedge/internal/quotes"
	"github.com/wonny/quantedge/pkg/logger"
)

// QuoteSource is the read side of the quote aggregator (*quotes.Aggregator)
type QuoteSource interface {
	Quote(symbol string) (contracts.Quote, bool)
	Quotes() []contracts.Quote
	Status() contracts.FeedStatus
	Refresh(ctx context.Context) (quotes.CycleResult, error)
}

// ForecastMetrics counts forecast outcomes (*metrics.Recorder)
type ForecastMetrics interface {
	RecordForecast(result string)
}

// Service composes catalog, quotes, pricing and forecasting for one symbol at a time
// ⭐ SSOT: 외부 레이어(API, CLI)는 이 서비스만 사용
// 자체 I/O 없음 (시세 상태 읽기 + 엔진 호출)
type Service struct {
	catalog *catalog.Catalog
	quotes  QuoteSource
	engine  *forecast.Engine
	history forecast.HistoryProvider
	rand    forecast.RandFactory
	rate    float64
	logger  *logger.Logger
	metrics ForecastMetrics
}

// NewService creates the facade
func NewService(
	cat *catalog.Catalog,
	qs QuoteSource,
	engine *forecast.Engine,
	history forecast.HistoryProvider,
	rf forecast.RandFactory,
	riskFreeRate float64,
	log *logger.Logger,
) *Service {
	return &Service{
		catalog: cat,
		quotes:  qs,
		engine:  engine,
		history: history,
		rand:    rf,
		rate:    riskFreeRate,
		logger:  log,
	}
}

// WithMetrics attaches forecast counters
func (s *Service) WithMetrics(m ForecastMetrics) *Service {
	s.metrics = m
	return s
}

// Instrument looks up catalog metadata
func (s *Service) Instrument(symbol string) (contracts.Instrument, error) {
	inst, ok := s.catalog.Get(symbol)
	if !ok {
		return contracts.Instrument{}, fmt.Errorf("%s: %w", symbol, contracts.ErrUnknownSymbol)
	}
	return inst, nil
}

// CurrentQuote returns the latest known quote, if any
func (s *Service) CurrentQuote(symbol string) (contracts.Quote, bool) {
	inst, ok := s.catalog.Get(symbol)
	if !ok {
		return contracts.Quote{}, false
	}
	return s.quotes.Quote(inst.Symbol)
}

// spot returns the last price, 0 while still loading
func (s *Service) spot(symbol string) float64 {
	if q, ok := s.quotes.Quote(symbol); ok {
		return q.LastPrice
	}
	return 0
}

// ComputeOptionsChain prices one strike. strike<=0 selects the ATM strike.
// 시세가 아직 없으면 엔진의 degenerate 결과가 그대로 반환됨
func (s *Service) ComputeOptionsChain(symbol string, strike float64, expiryDays int) (contracts.OptionQuote, error) {
	inst, err := s.Instrument(symbol)
	if err != nil {
		return contracts.OptionQuote{}, err
	}
	symbol = inst.Symbol

	spot := s.spot(symbol)
	if strike <= 0 {
		strike = pricing.ATMStrike(spot)
	}

	q := pricing.Quote(spot, strike, s.rate, expiryDays, inst.IV)
	q.Symbol = symbol
	return q, nil
}

// StrikeLadder prices the strikes around ATM for one expiry
func (s *Service) StrikeLadder(symbol string, expiryDays int) (contracts.OptionLadder, error) {
	inst, err := s.Instrument(symbol)
	if err != nil {
		return contracts.OptionLadder{}, err
	}
	symbol = inst.Symbol

	spot := s.spot(symbol)
	ladder := contracts.OptionLadder{
		Symbol:     symbol,
		Spot:       spot,
		ATMStrike:  pricing.ATMStrike(spot),
		ExpiryDays: expiryDays,
	}

	for _, k := range pricing.StrikeLadder(spot) {
		row := pricing.Quote(spot, k, s.rate, expiryDays, inst.IV)
		row.Symbol = symbol
		ladder.Rows = append(ladder.Rows, row)
	}
	return ladder, nil
}

// ExpiryPresets returns the selectable expiries in days
func (s *Service) ExpiryPresets() []int {
	out := make([]int, len(pricing.ExpiryPresets))
	copy(out, pricing.ExpiryPresets)
	return out
}

// ComputeForecast obtains a history series and forecasts from the latest price
func (s *Service) ComputeForecast(ctx context.Context, symbol string) (*contracts.Forecast, error) {
	f, err := s.computeForecast(ctx, symbol)
	if s.metrics != nil {
		if err != nil {
			s.metrics.RecordForecast("error")
		} else {
			s.metrics.RecordForecast("ok")
		}
	}
	return f, err
}

func (s *Service) computeForecast(ctx context.Context, symbol string) (*contracts.Forecast, error) {
	inst, err := s.Instrument(symbol)
	if err != nil {
		return nil, err
	}
	symbol = inst.Symbol

	price := s.spot(symbol)
	if price <= 0 {
		return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrQuoteUnavailable)
	}

	history, err := s.history.History(ctx, symbol, price)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", symbol, err)
	}

	f, err := s.engine.Forecast(price, history, s.rand.For(symbol, price))
	if err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Warn("Forecast rejected")
		return nil, err
	}
	f.Symbol = symbol
	return f, nil
}

// Quotes returns every known quote
func (s *Service) Quotes() []contracts.Quote {
	return s.quotes.Quotes()
}

// Status returns the feed state for display
func (s *Service) Status() contracts.FeedStatus {
	return s.quotes.Status()
}

// Refresh requests an out-of-cycle quote refresh
func (s *Service) Refresh(ctx context.Context) (quotes.CycleResult, error) {
	return s.quotes.Refresh(ctx)
}

// Board joins catalog rows with their latest quotes
func (s *Service) Board(query, sector string) []contracts.BoardRow {
	instruments := s.catalog.Filter(query, sector)
	rows := make([]contracts.BoardRow, 0, len(instruments))

	for _, inst := range instruments {
		row := contracts.BoardRow{Instrument: inst}
		if q, ok := s.quotes.Quote(inst.Symbol); ok {
			fetched := q.FetchedAt
			row.LastPrice = q.LastPrice
			row.ChangePercent = q.ChangePercent
			row.ChangeAbsolute = q.ChangeAbsolute
			row.FetchedAt = &fetched
			row.Stale = q.Stale
		}
		rows = append(rows, row)
	}
	return rows
}

// Sectors returns sector filters ("All" first)
func (s *Service) Sectors() []string {
	return s.catalog.Sectors()
}
