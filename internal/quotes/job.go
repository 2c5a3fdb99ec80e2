package quotes

import (
	"context"
	"fmt"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/internal/scheduler"
)

// RefreshJobName is the scheduler key of the periodic refresh
const RefreshJobName = "quote_refresh"

// RefreshJob returns the periodic refresh job (registered by Start)
func (a *Aggregator) RefreshJob() scheduler.Job {
	return &refreshJob{aggregator: a}
}

// refreshJob triggers a cycle on the aggregator's interval
type refreshJob struct {
	aggregator *Aggregator
}

func (j *refreshJob) Name() string {
	return RefreshJobName
}

func (j *refreshJob) Schedule() string {
	return "@every " + j.aggregator.cfg.RefreshInterval.String()
}

// Run fails when no batch succeeded, so the scheduler history shows outages
func (j *refreshJob) Run(ctx context.Context) error {
	result, err := j.aggregator.Refresh(ctx)
	if err != nil {
		return err
	}
	if result.Status == contracts.StatusError && !result.Canceled {
		return fmt.Errorf("quote refresh %s: all %d batches failed", result.ID, result.Batches)
	}
	return nil
}
