package history

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/internal/forecast"
)

// Provider serves recorded closes to the forecast engine
type Provider struct {
	repo     *Repository
	length   int
	fallback forecast.HistoryProvider
	log      zerolog.Logger
}

// NewProvider creates a provider returning up to length closes
func NewProvider(repo *Repository, length int, log zerolog.Logger) *Provider {
	if length <= 0 {
		length = 30
	}
	return &Provider{
		repo:   repo,
		length: length,
		log:    log.With().Str("component", "history.provider").Logger(),
	}
}

// WithFallback sets the provider used when fewer than two closes are recorded
func (p *Provider) WithFallback(fb forecast.HistoryProvider) *Provider {
	p.fallback = fb
	return p
}

// History implements forecast.HistoryProvider
func (p *Provider) History(ctx context.Context, symbol string, lastPrice float64) ([]float64, error) {
	closes, err := p.repo.Closes(ctx, symbol, p.length)
	if err != nil {
		return nil, err
	}

	// 추세 계산에는 최소 2개 필요
	if len(closes) >= 2 {
		return closes, nil
	}

	if p.fallback != nil {
		p.log.Debug().Str("symbol", symbol).Int("recorded", len(closes)).Msg("Using fallback history")
		return p.fallback.History(ctx, symbol, lastPrice)
	}

	return nil, fmt.Errorf("%s: %d closes recorded: %w", symbol, len(closes), contracts.ErrNoHistory)
}
