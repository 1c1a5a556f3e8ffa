package usecase

import (
	"context"
	"time"

	"HarborMonitor/internal/ports"
)

// Runner binds the ticking driver to the monitoring cycle.
type Runner struct {
	driver ports.Scheduler
	cycle  *Cycle
}

// NewRunner returns a helper to start/stop the recurring cycle.
func NewRunner(driver ports.Scheduler, cycle *Cycle) *Runner {
	return &Runner{driver: driver, cycle: cycle}
}

// Start registers the cycle with the provided scheduler.
func (r *Runner) Start(ctx context.Context) error {
	if r.driver == nil || r.cycle == nil {
		return nil
	}

	job := func(trigger time.Time) {
		r.cycle.Run(ctx, trigger)
	}

	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Runner) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}

	return r.driver.Stop(ctx)
}
