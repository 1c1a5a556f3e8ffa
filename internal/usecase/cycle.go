package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Cycle chains the recurring workflows into one monitoring pass:
// discover, classify, extract events, track the watchlist, notify.
// Each stage runs even when an earlier one reported an error, so a
// broken feed never stops matter tracking or alerting.
type Cycle struct {
	discovery *Discovery
	classify  *Classify
	events    *ExtractEvents
	tracker   *TrackMatters
	notify    *Notify
	logger    *slog.Logger
}

// NewCycle wires the workflows executed on every scheduler tick.
func NewCycle(discovery *Discovery, classify *Classify, events *ExtractEvents,
	tracker *TrackMatters, notify *Notify, logger *slog.Logger) *Cycle {
	return &Cycle{
		discovery: discovery,
		classify:  classify,
		events:    events,
		tracker:   tracker,
		notify:    notify,
		logger:    logger,
	}
}

// Run executes one full monitoring pass.
func (c *Cycle) Run(ctx context.Context, now time.Time) {
	c.logger.Info("cycle started", "at", now)
	started := time.Now()

	if _, err := c.discovery.Run(ctx); err != nil {
		c.logger.Error("discovery stage failed", "err", err)
	}
	if _, err := c.classify.Run(ctx, 0); err != nil {
		c.logger.Error("classify stage failed", "err", err)
	}
	if _, err := c.events.Run(ctx, 0); err != nil {
		c.logger.Error("event stage failed", "err", err)
	}
	if _, err := c.tracker.Run(ctx); err != nil {
		c.logger.Error("tracking stage failed", "err", err)
	}
	if _, err := c.notify.Run(ctx); err != nil {
		c.logger.Error("notify stage failed", "err", err)
	}

	c.logger.Info("cycle finished", "took", time.Since(started).Round(time.Millisecond))
}
