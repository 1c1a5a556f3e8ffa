package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

// Notify publishes a digest of high-priority analyzed articles that have not
// been alerted yet, then marks them so the next digest starts clean.
type Notify struct {
	store    ports.ArticleStore
	notifier ports.Notifier // nil when no alert channel is configured
	cfg      config.NotifyConfig
	logger   *slog.Logger
}

// NewNotify constructs the digest workflow.
func NewNotify(store ports.ArticleStore, notifier ports.Notifier,
	cfg config.NotifyConfig, logger *slog.Logger) *Notify {
	return &Notify{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run sends one digest. It returns how many articles were included; articles
// are marked notified only after the publish succeeds.
func (n *Notify) Run(ctx context.Context) (int, error) {
	if n.notifier == nil {
		return 0, nil
	}

	articles, err := n.store.UnnotifiedAbovePriority(ctx, n.cfg.MinPriority, n.cfg.MaxArticles)
	if err != nil {
		return 0, fmt.Errorf("load unnotified: %w", err)
	}
	if len(articles) == 0 {
		return 0, nil
	}

	digest := buildDigest(articles)
	if err := n.notifier.PublishDigest(ctx, digest); err != nil {
		return 0, fmt.Errorf("publish digest: %w", err)
	}

	ids := make([]int64, len(articles))
	for i, art := range articles {
		ids[i] = art.ID
	}
	if err := n.store.MarkNotified(ctx, ids); err != nil {
		return len(articles), fmt.Errorf("mark notified: %w", err)
	}

	n.logger.Info("digest published", "articles", len(articles))
	return len(articles), nil
}

func buildDigest(articles []domain.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*High-priority updates (%d)*\n\n", len(articles))
	for _, art := range articles {
		fmt.Fprintf(&b, "- *%s*\n", art.Title)
		fmt.Fprintf(&b, "  Priority %d/10, %s, %s\n", art.Priority, art.Category, art.Source)
		if art.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", art.Summary)
		}
		fmt.Fprintf(&b, "  %s\n\n", art.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
