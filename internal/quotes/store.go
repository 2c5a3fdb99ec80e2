package quotes

import (
	"sort"
	"sync"
	"time"

	"github.com/wonny/quantedge/internal/contracts"
)

// Store holds the latest quote per symbol
// ⭐ SSOT: 시세 상태는 이 구조체에서만 변경됨 (Aggregator 전용)
type Store struct {
	mu         sync.RWMutex
	quotes     map[string]contracts.Quote
	staleAfter time.Duration
	now        func() time.Time
}

// StoreStats summarises freshness
type StoreStats struct {
	Total int `json:"total"`
	Fresh int `json:"fresh"`
	Stale int `json:"stale"`
}

// NewStore creates an empty store
func NewStore(staleAfter time.Duration) *Store {
	return &Store{
		quotes:     make(map[string]contracts.Quote),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Merge applies one successful batch under a single lock.
// Older data (by FetchedAt) never replaces newer data.
func (s *Store) Merge(batch map[string]contracts.Quote) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := 0
	for symbol, q := range batch {
		if existing, ok := s.quotes[symbol]; ok && q.FetchedAt.Before(existing.FetchedAt) {
			continue
		}
		q.Symbol = symbol
		q.Stale = false
		s.quotes[symbol] = q
		merged++
	}
	return merged
}

// Restore seeds quotes that are not yet known (warm start)
func (s *Store) Restore(quotes []contracts.Quote) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, q := range quotes {
		if q.Symbol == "" {
			continue
		}
		if _, ok := s.quotes[q.Symbol]; ok {
			continue
		}
		q.Stale = false
		s.quotes[q.Symbol] = q
		restored++
	}
	return restored
}

// Get returns the quote for symbol
func (s *Store) Get(symbol string) (contracts.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[symbol]
	if !ok {
		return contracts.Quote{}, false
	}
	q.Stale = s.isStale(q, s.now())
	return q, true
}

// Snapshot returns all quotes sorted by symbol
func (s *Store) Snapshot() []contracts.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]contracts.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		q.Stale = s.isStale(q, now)
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len returns the number of known quotes
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}

// Stats returns freshness counts
func (s *Store) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	st := StoreStats{Total: len(s.quotes)}
	for _, q := range s.quotes {
		if s.isStale(q, now) {
			st.Stale++
		} else {
			st.Fresh++
		}
	}
	return st
}

func (s *Store) isStale(q contracts.Quote, now time.Time) bool {
	if s.staleAfter <= 0 {
		return false
	}
	return now.Sub(q.FetchedAt) > s.staleAfter
}
