package forecast

import (
	"context"
	"fmt"

	"github.com/wonny/quantedge/internal/contracts"
)

// HistoryProvider returns past closes for a symbol, oldest first
type HistoryProvider interface {
	History(ctx context.Context, symbol string, lastPrice float64) ([]float64, error)
}

// SyntheticHistory generates Length closes uniformly within ±12% of lastPrice
type SyntheticHistory struct {
	Length int
	Rand   RandFactory
}

// NewSyntheticHistory creates a synthetic provider (length<=0 means 30)
func NewSyntheticHistory(length int, rf RandFactory) *SyntheticHistory {
	if length <= 0 {
		length = 30
	}
	return &SyntheticHistory{Length: length, Rand: rf}
}

// History implements HistoryProvider
func (s *SyntheticHistory) History(_ context.Context, symbol string, lastPrice float64) ([]float64, error) {
	if lastPrice <= 0 {
		return nil, fmt.Errorf("synthetic history for %s: price %v: %w", symbol, lastPrice, contracts.ErrInvalidArgument)
	}

	rnd := s.Rand.For(symbol+"/history", lastPrice)
	closes := make([]float64, s.Length)
	for i := range closes {
		closes[i] = lastPrice * (0.88 + rnd.Float64()*0.24)
	}
	return closes, nil
}
