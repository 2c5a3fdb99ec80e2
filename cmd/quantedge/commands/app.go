package commands

import (
	"context"
	"fmt"

	"github.com/wonny/quantedge/internal/analytics"
	"github.com/wonny/quantedge/internal/catalog"
	"github.com/wonny/quantedge/internal/forecast"
	"github.com/wonny/quantedge/internal/history"
	"github.com/wonny/quantedge/internal/quotes"
	"github.com/wonny/quantedge/internal/scheduler"
	"github.com/wonny/quantedge/internal/scheduler/jobs"
	"github.com/wonny/quantedge/pkg/config"
	"github.com/wonny/quantedge/pkg/database"
	"github.com/wonny/quantedge/pkg/logger"
	"github.com/wonny/quantedge/pkg/metrics"
	"github.com/wonny/quantedge/pkg/redis"
)

// app holds the wired components shared by commands
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	catalog    *catalog.Catalog
	metrics    *metrics.Recorder
	aggregator *quotes.Aggregator
	engine     *forecast.Engine
	rand       forecast.RandFactory
	history    forecast.HistoryProvider
	closes     *history.Repository // nil unless HISTORY_SOURCE=postgres
	service    *analytics.Service

	db    *database.DB
	redis *redis.Client
}

// loadConfig loads config and applies global flags
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if envOverride != "" {
		cfg.Env = envOverride
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// newApp wires catalog, quote feed, engines and the facade
func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, metrics: metrics.New()}

	// 1. Instrument catalog
	if cfg.CatalogFile != "" {
		a.catalog, err = catalog.Load(cfg.CatalogFile)
	} else {
		a.catalog, err = catalog.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// 2. Quote aggregator
	qcfg, err := quotes.ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	a.aggregator, err = quotes.New(qcfg, a.catalog.Symbols(), quotes.NewHTTPFetcher(cfg, log), log)
	if err != nil {
		return nil, fmt.Errorf("create aggregator: %w", err)
	}
	a.aggregator.WithMetrics(a.metrics)

	// 3. Redis snapshot (optional)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.redis.Enabled() {
		cache := redis.NewCache(a.redis, "quantedge")
		a.aggregator.WithSnapshots(quotes.NewRedisSnapshots(cache, cfg.Redis.SnapshotTTL))
	}

	// 4. Forecast engine
	a.rand = forecast.SeededRandFactory{Seed: cfg.Forecast.Seed}
	var signals forecast.SignalSource = forecast.RandomSignals{}
	if cfg.Forecast.Signals == "indicator" {
		signals = forecast.DefaultIndicatorSignals()
	}
	a.engine = forecast.NewEngine(signals, log.Zerolog())

	// 5. History provider
	synthetic := forecast.NewSyntheticHistory(cfg.Forecast.HistoryLength, a.rand)
	a.history = synthetic
	if cfg.Forecast.HistorySource == "postgres" {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closes = history.NewRepository(a.db.Pool)
		if err := a.closes.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.history = history.NewProvider(a.closes, cfg.Forecast.HistoryLength, log.Zerolog()).
			WithFallback(synthetic)
	}

	// 6. Facade
	a.service = analytics.NewService(
		a.catalog,
		a.aggregator,
		a.engine,
		a.history,
		a.rand,
		cfg.Pricing.RiskFreeRate,
		log,
	).WithMetrics(a.metrics)

	log.WithFields(map[string]interface{}{
		"instruments":    a.catalog.Len(),
		"signals":        cfg.Forecast.Signals,
		"history_source": cfg.Forecast.HistorySource,
		"redis":          a.redis.Enabled(),
	}).Debug("Application wired")

	return a, nil
}

// newScheduler registers every job without starting anything
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log, a.cfg.Location())

	if err := sched.AddJob(jobs.NewQuoteFreshnessJob(a.aggregator, a.log)); err != nil {
		return nil, err
	}
	if a.closes != nil {
		if err := sched.AddJob(jobs.NewHistorySnapshotJob(a.aggregator, a.closes, a.cfg.Location(), a.log)); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
