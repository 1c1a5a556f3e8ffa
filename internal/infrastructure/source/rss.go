package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/keyword"
	"HarborMonitor/internal/ports"
)

const defaultFeedEntries = 30

// RSS polls the configured feed list. Broad-tier feeds get the stricter
// AND-logic filter through the shared keyword.Filter.
type RSS struct {
	feeds   []config.FeedConfig
	parser  *gofeed.Parser
	filter  *keyword.Filter
	fetcher ports.ContentFetcher
	store   ports.ArticleStore
	maxAge  time.Duration
	logger  *slog.Logger
}

var _ ports.Source = (*RSS)(nil)

// NewRSS wires the feed poller. maxAgeDays bounds how far back entries are
// accepted; zero disables the cutoff.
func NewRSS(feeds []config.FeedConfig, filter *keyword.Filter, fetcher ports.ContentFetcher,
	store ports.ArticleStore, client *http.Client, maxAgeDays int, logger *slog.Logger) *RSS {

	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	var maxAge time.Duration
	if maxAgeDays > 0 {
		maxAge = time.Duration(maxAgeDays) * 24 * time.Hour
	}
	return &RSS{
		feeds:   feeds,
		parser:  parser,
		filter:  filter,
		fetcher: fetcher,
		store:   store,
		maxAge:  maxAge,
		logger:  logger,
	}
}

// Name identifies the adapter in logs and pipeline summaries.
func (r *RSS) Name() string { return "rss" }

// Discover walks every feed, isolating per-feed failures so one dead feed
// never aborts the rest.
func (r *RSS) Discover(ctx context.Context) (int, error) {
	ing := newIngestor(r.store)
	var added int
	for _, feed := range r.feeds {
		n, err := r.scanFeed(ctx, ing, feed)
		if err != nil {
			r.logger.Error("feed failed", "source", feed.Source, "error", err)
			continue
		}
		added += n
	}
	return added, nil
}

func (r *RSS) scanFeed(ctx context.Context, ing *ingestor, cfg config.FeedConfig) (int, error) {
	feed, err := r.parser.ParseURLWithContext(cfg.URL, ctx)
	if err != nil {
		return 0, fmt.Errorf("parse feed %s: %w", cfg.URL, err)
	}

	limit := cfg.MaxEntries
	if limit <= 0 {
		limit = defaultFeedEntries
	}

	var added int
	for i, entry := range feed.Items {
		if i >= limit {
			break
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		if !r.filter.Passes(entry.Title, summary, cfg.Source) {
			continue
		}

		var published *time.Time
		if entry.PublishedParsed != nil {
			t := *entry.PublishedParsed
			published = &t
		}
		if r.maxAge > 0 && published != nil && time.Since(*published) > r.maxAge {
			continue
		}

		content := r.fetcher.FetchText(ctx, entry.Link)
		inserted, err := ing.add(ctx, domain.DiscoveredItem{
			Title:       entry.Title,
			URL:         entry.Link,
			Summary:     summary,
			Source:      cfg.Source,
			PublishedAt: published,
		}, content)
		if err != nil {
			r.logger.Error("entry failed", "source", cfg.Source, "error", err)
			continue
		}
		if inserted {
			added++
			logNew(r.logger, cfg.Source, entry.Title)
		}
	}
	return added, nil
}
