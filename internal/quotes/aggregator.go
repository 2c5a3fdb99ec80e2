package quotes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/internal/scheduler"
	"github.com/wonny/quantedge/pkg/logger"
)

// Metrics receives refresh cycle observations (*metrics.Recorder)
type Metrics interface {
	RecordBatch(outcome string)
	RecordBatchError(kind string)
	RecordRefresh(seconds float64)
	SetFeedStatus(code int)
	SetQuotesKnown(n int)
}

// SnapshotStore persists the quote board between restarts
type SnapshotStore interface {
	Load(ctx context.Context) ([]contracts.Quote, error)
	Save(ctx context.Context, quotes []contracts.Quote) error
}

// JobScheduler owns the periodic refresh task
type JobScheduler interface {
	AddJob(job scheduler.Job) error
	RemoveJob(name string) error
}

// BatchError describes one failed batch of a cycle
type BatchError struct {
	Index   int      `json:"index"`
	Symbols []string `json:"symbols"`
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
}

// CycleResult summarises one refresh cycle
type CycleResult struct {
	ID        string                       `json:"id"`
	StartedAt time.Time                    `json:"started_at"`
	Duration  time.Duration                `json:"duration"`
	Batches   int                          `json:"batches"`
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
	Merged    int                          `json:"merged"`
	Status    contracts.ConnectivityStatus `json:"status"`
	Errors    []BatchError                 `json:"errors,omitempty"`
	// Coalesced is true when the cycle served more than one trigger
	Coalesced bool `json:"coalesced"`
	// Canceled is true when shutdown interrupted the cycle; status is left as is
	Canceled bool `json:"canceled"`
}

type batchOutcome struct {
	quotes map[string]contracts.Quote
	err    error
}

// Aggregator keeps the freshest known quote for every catalog symbol
// ⭐ SSOT: 시세 갱신 사이클은 여기서만 실행됨
// 동시에 최대 1개의 사이클만 실행 (수동 요청은 진행 중 사이클에 합류)
type Aggregator struct {
	cfg       Config
	symbols   []string
	fetcher   Fetcher
	store     *Store
	logger    *logger.Logger
	metrics   Metrics
	snapshots SnapshotStore

	group singleflight.Group

	mu          sync.RWMutex
	status      contracts.ConnectivityStatus
	lastSuccess *time.Time
	inFlight    bool
	lastCycle   *CycleResult
	listeners   []func(CycleResult)

	lifeCtx context.Context
	cancel  context.CancelFunc
	sched   JobScheduler
	wg      sync.WaitGroup

	now func() time.Time
}

// New creates an aggregator for symbols (duplicates dropped, order kept)
func New(cfg Config, symbols []string, fetcher Fetcher, log *logger.Logger) (*Aggregator, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is required", contracts.ErrInvalidArgument)
	}

	seen := make(map[string]struct{}, len(symbols))
	unique := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}

	store := NewStore(cfg.StaleAfter)

	return &Aggregator{
		cfg:     cfg,
		symbols: unique,
		fetcher: fetcher,
		store:   store,
		logger:  log,
		metrics: nopMetrics{},
		status:  contracts.StatusConnecting,
		now:     time.Now,
	}, nil
}

// WithMetrics attaches a metrics sink
func (a *Aggregator) WithMetrics(m Metrics) *Aggregator {
	if m != nil {
		a.metrics = m
	}
	return a
}

// WithSnapshots enables warm start and snapshot persistence
func (a *Aggregator) WithSnapshots(s SnapshotStore) *Aggregator {
	a.snapshots = s
	return a
}

// WithClock overrides the time source (tests)
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	a.store.now = now
	return a
}

// OnCycle registers a callback invoked after every completed cycle
func (a *Aggregator) OnCycle(fn func(CycleResult)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Refresh runs a cycle, or joins the one already in flight.
// ctx only bounds how long the caller waits; the cycle itself is not cancelled by it.
func (a *Aggregator) Refresh(ctx context.Context) (CycleResult, error) {
	ch := a.group.DoChan("refresh", func() (interface{}, error) {
		return a.runCycle(a.cycleContext()), nil
	})

	select {
	case <-ctx.Done():
		return CycleResult{}, ctx.Err()
	case res := <-ch:
		result := res.Val.(CycleResult)
		result.Coalesced = res.Shared
		return result, nil
	}
}

func (a *Aggregator) cycleContext() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lifeCtx != nil {
		return a.lifeCtx
	}
	return context.Background()
}

// runCycle fans out all batches, waits for every one, then merges the successes
func (a *Aggregator) runCycle(ctx context.Context) CycleResult {
	result := CycleResult{
		ID:        uuid.NewString(),
		StartedAt: a.now(),
	}

	a.mu.Lock()
	a.inFlight = true
	a.mu.Unlock()

	batches := Partition(a.symbols, a.cfg.BatchSize)
	result.Batches = len(batches)
	outcomes := make([]batchOutcome, len(batches))

	var g errgroup.Group
	g.SetLimit(a.cfg.MaxParallel)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			outcomes[i] = a.fetchBatch(ctx, batch)
			// 배치 실패는 다른 배치를 취소하지 않음
			return nil
		})
	}
	_ = g.Wait()

	for i, out := range outcomes {
		if out.err != nil {
			kind := errorKind(out.err)
			result.Failed++
			result.Errors = append(result.Errors, BatchError{
				Index:   i,
				Symbols: batches[i],
				Kind:    kind,
				Message: out.err.Error(),
			})
			a.metrics.RecordBatch("failed")
			a.metrics.RecordBatchError(kind)

			a.logger.WithError(out.err).WithFields(map[string]interface{}{
				"cycle": result.ID,
				"batch": i,
				"size":  len(batches[i]),
				"kind":  kind,
			}).Warn("Quote batch failed")
			continue
		}

		result.Succeeded++
		result.Merged += a.store.Merge(out.quotes)
		a.metrics.RecordBatch("ok")
	}

	end := a.now()
	result.Duration = end.Sub(result.StartedAt)
	result.Canceled = ctx.Err() != nil

	a.mu.Lock()
	switch {
	case result.Canceled, result.Batches == 0:
		// 상태 유지
	case result.Succeeded > 0:
		a.status = contracts.StatusLive
		a.lastSuccess = &end
	default:
		a.status = contracts.StatusError
	}
	result.Status = a.status
	a.inFlight = false
	last := result
	a.lastCycle = &last
	listeners := make([]func(CycleResult), len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	a.metrics.RecordRefresh(result.Duration.Seconds())
	a.metrics.SetFeedStatus(result.Status.Code())
	a.metrics.SetQuotesKnown(a.store.Len())

	log := a.logger.WithFields(map[string]interface{}{
		"cycle":     result.ID,
		"batches":   result.Batches,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"merged":    result.Merged,
		"status":    string(result.Status),
		"duration":  result.Duration.String(),
	})
	switch {
	case result.Canceled:
		log.Info("Quote refresh cancelled")
	case result.Batches > 0 && result.Succeeded == 0:
		log.Error("Quote refresh failed: no batch succeeded")
	default:
		log.Info("Quote refresh completed")
	}

	for _, fn := range listeners {
		fn(result)
	}

	return result
}

// fetchBatch runs one batch under its own timeout
func (a *Aggregator) fetchBatch(ctx context.Context, batch []string) batchOutcome {
	bctx, cancel := context.WithTimeout(ctx, a.cfg.BatchTimeout)
	defer cancel()

	quotes, err := a.fetcher.FetchBatch(bctx, batch)
	if err != nil {
		return batchOutcome{err: classify(bctx, err)}
	}
	return batchOutcome{quotes: a.stamp(quotes)}
}

// stamp sets FetchedAt on quotes the fetcher left unstamped.
// Merge compares FetchedAt, so a zero value would lose to a restored snapshot.
func (a *Aggregator) stamp(quotes map[string]contracts.Quote) map[string]contracts.Quote {
	now := a.now()
	out := make(map[string]contracts.Quote, len(quotes))
	for symbol, q := range quotes {
		if q.FetchedAt.IsZero() {
			q.FetchedAt = now
		}
		out[symbol] = q
	}
	return out
}

// Start warms the store, schedules the periodic refresh and fires the first cycle
func (a *Aggregator) Start(ctx context.Context, sched JobScheduler) error {
	a.mu.Lock()
	if a.cancel != nil {
		a.mu.Unlock()
		return errors.New("quote aggregator already started")
	}
	a.lifeCtx, a.cancel = context.WithCancel(ctx)
	a.sched = sched
	a.mu.Unlock()

	if a.snapshots != nil {
		a.warmStart(ctx)
		a.OnCycle(a.saveSnapshot)
	}

	if sched != nil {
		if err := sched.AddJob(a.RefreshJob()); err != nil {
			a.cancel()
			return fmt.Errorf("failed to schedule quote refresh: %w", err)
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"symbols":  len(a.symbols),
		"batches":  len(Partition(a.symbols, a.cfg.BatchSize)),
		"interval": a.cfg.RefreshInterval.String(),
	}).Info("Quote aggregator started")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if _, err := a.Refresh(a.lifeCtx); err != nil {
			a.logger.WithError(err).Debug("Initial quote refresh abandoned")
		}
	}()

	return nil
}

// Stop cancels the periodic refresh and waits for the startup cycle
func (a *Aggregator) Stop() {
	a.mu.RLock()
	cancel, sched := a.cancel, a.sched
	a.mu.RUnlock()

	if cancel == nil {
		return
	}
	if sched != nil {
		if err := sched.RemoveJob(RefreshJobName); err != nil {
			a.logger.WithError(err).Debug("Refresh job already removed")
		}
	}
	cancel()
	a.wg.Wait()
	a.logger.Info("Quote aggregator stopped")
}

func (a *Aggregator) warmStart(ctx context.Context) {
	quotes, err := a.snapshots.Load(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to load quote snapshot")
		return
	}
	if restored := a.store.Restore(quotes); restored > 0 {
		a.metrics.SetQuotesKnown(a.store.Len())
		a.logger.WithField("restored", restored).Info("Quote snapshot restored")
	}
}

func (a *Aggregator) saveSnapshot(result CycleResult) {
	if result.Succeeded == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.snapshots.Save(ctx, a.store.Snapshot()); err != nil {
		a.logger.WithError(err).Warn("Failed to save quote snapshot")
	}
}

// Status returns the feed state
func (a *Aggregator) Status() contracts.FeedStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := contracts.FeedStatus{
		Status:          a.status,
		RefreshInFlight: a.inFlight,
		QuoteCount:      a.store.Len(),
	}
	if a.lastSuccess != nil {
		t := *a.lastSuccess
		st.LastSuccessfulRefresh = &t
	}
	return st
}

// Quote returns the latest known quote for symbol
func (a *Aggregator) Quote(symbol string) (contracts.Quote, bool) {
	return a.store.Get(symbol)
}

// Quotes returns every known quote sorted by symbol
func (a *Aggregator) Quotes() []contracts.Quote {
	return a.store.Snapshot()
}

// Stats returns store freshness counts
func (a *Aggregator) Stats() StoreStats {
	return a.store.Stats()
}

// LastCycle returns the most recent completed cycle
func (a *Aggregator) LastCycle() (CycleResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastCycle == nil {
		return CycleResult{}, false
	}
	return *a.lastCycle, true
}

// Symbols returns the tracked symbols in batch order
func (a *Aggregator) Symbols() []string {
	out := make([]string, len(a.symbols))
	copy(out, a.symbols)
	return out
}

type nopMetrics struct{}

func (nopMetrics) RecordBatch(string)      {}
func (nopMetrics) RecordBatchError(string) {}
func (nopMetrics) RecordRefresh(float64)   {}
func (nopMetrics) SetFeedStatus(int)       {}
func (nopMetrics) SetQuotesKnown(int)      {}
