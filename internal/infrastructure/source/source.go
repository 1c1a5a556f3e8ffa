// Package source holds the three content-discovery adapters: the Legistar
// records API, the planning-board website, and the RSS feed set. All share
// the same shape: discover candidates, gate them through the keyword filter,
// enrich survivors with fetched text, and persist new URLs idempotently.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

const maxTitleLen = 500

// ingestor persists discovered items, skipping URLs already seen within the
// current run. The store's unique-URL constraint handles cross-run dedup.
type ingestor struct {
	store ports.ArticleStore
	seen  map[string]struct{}
}

func newIngestor(store ports.ArticleStore) *ingestor {
	return &ingestor{store: store, seen: map[string]struct{}{}}
}

// add inserts the item as an unanalyzed article. Returns true only when the
// URL was new to both this run and the store.
func (g *ingestor) add(ctx context.Context, item domain.DiscoveredItem, content string) (bool, error) {
	if item.URL == "" {
		return false, fmt.Errorf("discovered item %q has no url", item.Title)
	}
	if _, ok := g.seen[item.URL]; ok {
		return false, nil
	}
	g.seen[item.URL] = struct{}{}

	title := truncate(item.Title, maxTitleLen)
	if content == "" {
		content = item.Summary
	}
	if content == "" {
		content = title
	}

	inserted, err := g.store.InsertIfNew(ctx, domain.Article{
		Title:        title,
		URL:          item.URL,
		Summary:      item.Summary,
		Content:      content,
		Source:       item.Source,
		PublishedAt:  item.PublishedAt,
		DiscoveredAt: time.Now(),
		Analyzed:     false,
	})
	if err != nil {
		return false, fmt.Errorf("insert article %s: %w", item.URL, err)
	}
	return inserted, nil
}

func logNew(logger *slog.Logger, kind, title string) {
	if logger != nil {
		logger.Info("new item", "kind", kind, "title", truncate(title, 80))
	}
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
