// Package usecase orchestrates the monitoring workflows over the driven
// adapters: discovery, classification, event extraction, watchlist tracking,
// question answering, and alerting.
package usecase

import (
	"context"
	"log/slog"

	"HarborMonitor/internal/ports"
)

// Discovery runs every configured source and aggregates how many new items
// landed. A failing source is logged and skipped so one dead feed or API
// outage never blocks the others.
type Discovery struct {
	sources []ports.Source
	logger  *slog.Logger
}

// NewDiscovery constructs the discovery pipeline.
func NewDiscovery(sources []ports.Source, logger *slog.Logger) *Discovery {
	return &Discovery{sources: sources, logger: logger}
}

// Run executes one discovery pass over all sources and returns the total
// count of newly stored items.
func (d *Discovery) Run(ctx context.Context) (int, error) {
	total := 0
	for _, src := range d.sources {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		count, err := src.Discover(ctx)
		total += count
		if err != nil {
			d.logger.Error("source failed", "source", src.Name(), "err", err, "stored", count)
			continue
		}
		d.logger.Info("source scanned", "source", src.Name(), "new", count)
	}
	d.logger.Info("discovery finished", "total_new", total)
	return total, nil
}
