package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/pkg/logger"
)

// QuoteSource exposes the current quote board
type QuoteSource interface {
	Quotes() []contracts.Quote
}

// CloseRecorder persists daily closes (*history.Repository)
type CloseRecorder interface {
	RecordCloses(ctx context.Context, tradeDate time.Time, quotes []contracts.Quote) (int, error)
}

// HistorySnapshotJob records the closing board after market hours
// ⭐ SSOT: 종가 기록 스케줄은 이 Job에서만
type HistorySnapshotJob struct {
	source   QuoteSource
	recorder CloseRecorder
	loc      *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

// NewHistorySnapshotJob creates a new history snapshot job
func NewHistorySnapshotJob(source QuoteSource, recorder CloseRecorder, loc *time.Location, log *logger.Logger) *HistorySnapshotJob {
	if loc == nil {
		loc = time.Local
	}
	return &HistorySnapshotJob{
		source:   source,
		recorder: recorder,
		loc:      loc,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *HistorySnapshotJob) Name() string {
	return "history_snapshot"
}

// Schedule returns the cron schedule (weekdays 15:35, after NSE close)
func (j *HistorySnapshotJob) Schedule() string {
	return "0 35 15 * * 1-5"
}

// Run records every fresh quote as today's close
func (j *HistorySnapshotJob) Run(ctx context.Context) error {
	board := j.source.Quotes()

	fresh := make([]contracts.Quote, 0, len(board))
	for _, q := range board {
		if !q.Stale && q.LastPrice > 0 {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) == 0 {
		return errors.New("no fresh quotes to record")
	}

	tradeDate := j.now().In(j.loc)
	written, err := j.recorder.RecordCloses(ctx, tradeDate, fresh)
	if err != nil {
		return fmt.Errorf("record closes: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"trade_date": tradeDate.Format("2006-01-02"),
		"written":    written,
		"skipped":    len(board) - len(fresh),
	}).Info("Daily closes recorded")

	return nil
}
