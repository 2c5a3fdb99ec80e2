package jobs

import (
	"context"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/internal/quotes"
	"github.com/wonny/quantedge/pkg/logger"
)

// FeedMonitor exposes aggregator health (*quotes.Aggregator)
type FeedMonitor interface {
	Status() contracts.FeedStatus
	Stats() quotes.StoreStats
}

// QuoteFreshnessJob reports stale quotes
type QuoteFreshnessJob struct {
	feed   FeedMonitor
	logger *logger.Logger
}

// NewQuoteFreshnessJob creates a new freshness job
func NewQuoteFreshnessJob(feed FeedMonitor, log *logger.Logger) *QuoteFreshnessJob {
	return &QuoteFreshnessJob{
		feed:   feed,
		logger: log,
	}
}

// Name returns the job name
func (j *QuoteFreshnessJob) Name() string {
	return "quote_freshness"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *QuoteFreshnessJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run logs the freshness of the board. Stale quotes are kept, never removed.
func (j *QuoteFreshnessJob) Run(ctx context.Context) error {
	stats := j.feed.Stats()
	status := j.feed.Status()

	log := j.logger.WithFields(map[string]interface{}{
		"status": string(status.Status),
		"total":  stats.Total,
		"fresh":  stats.Fresh,
		"stale":  stats.Stale,
	})

	if stats.Stale > 0 {
		log.Warn("Stale quotes on board")
		return nil
	}
	log.Debug("Quote board fresh")
	return nil
}
