package quotes

import (
	"context"
	"time"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/pkg/redis"
)

// RedisSnapshots stores the quote board in Redis for warm restarts
type RedisSnapshots struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewRedisSnapshots creates a snapshot store (no-op when Redis is disabled)
func NewRedisSnapshots(cache *redis.Cache, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{cache: cache, ttl: ttl}
}

// Load returns the last saved board, or nil when absent
func (s *RedisSnapshots) Load(ctx context.Context) ([]contracts.Quote, error) {
	var quotes []contracts.Quote
	found, err := s.cache.Get(ctx, redis.QuoteSnapshotKey(), &quotes)
	if err != nil || !found {
		return nil, err
	}
	return quotes, nil
}

// Save overwrites the board
func (s *RedisSnapshots) Save(ctx context.Context, quotes []contracts.Quote) error {
	return s.cache.Set(ctx, redis.QuoteSnapshotKey(), quotes, s.ttl)
}
