package quotes

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/pkg/config"
)

// MaxBatchSize is the provider's hard limit on symbols per request
const MaxBatchSize = 50

// Config controls the refresh cycle
type Config struct {
	BatchSize       int           `default:"30" validate:"gte=1,lte=50"`
	BatchTimeout    time.Duration `default:"15s" validate:"gt=0"`
	RefreshInterval time.Duration `default:"60s" validate:"gte=1s"`
	MaxParallel     int           `default:"4" validate:"gte=1"`
	StaleAfter      time.Duration `default:"5m" validate:"gt=0"`
}

var validate = validator.New()

// ConfigFrom derives aggregator settings from the app config.
// 0 값은 기본값으로 채워짐
func ConfigFrom(cfg *config.Config) (Config, error) {
	c := Config{
		BatchSize:       cfg.Quotes.BatchSize,
		BatchTimeout:    cfg.Quotes.BatchTimeout,
		RefreshInterval: cfg.Quotes.RefreshInterval,
		MaxParallel:     cfg.Quotes.MaxParallel,
		StaleAfter:      cfg.Quotes.StaleAfter,
	}
	return c.normalize()
}

// normalize fills defaults and validates
func (c Config) normalize() (Config, error) {
	if err := defaults.Set(&c); err != nil {
		return c, fmt.Errorf("quote config defaults: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return c, fmt.Errorf("%w: quote config: %v", contracts.ErrInvalidArgument, err)
	}
	return c, nil
}

// Partition splits symbols into consecutive batches of at most size.
// 순서 유지, 마지막 배치는 더 작을 수 있음
func Partition(symbols []string, size int) [][]string {
	if size <= 0 || len(symbols) == 0 {
		return nil
	}

	batches := make([][]string, 0, (len(symbols)+size-1)/size)
	for start := 0; start < len(symbols); start += size {
		end := start + size
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := make([]string, end-start)
		copy(batch, symbols[start:end])
		batches = append(batches, batch)
	}
	return batches
}
