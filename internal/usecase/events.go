package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"HarborMonitor/internal/analysis"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

const defaultEventBatch = 30

// minEventRelevance gates extraction: low-relevance articles rarely carry
// actionable dates and each extraction costs an LLM call.
const minEventRelevance = 5

// ExtractEvents derives calendar events for analyzed articles that have not
// been through extraction yet. Extraction is best-effort enrichment: an
// extractor failure skips the article, never fails the batch.
type ExtractEvents struct {
	articles  ports.ArticleStore
	events    ports.EventStore
	extractor ports.EventExtractor // nil when the LLM is disabled
	logger    *slog.Logger
}

// NewExtractEvents constructs the extraction workflow.
func NewExtractEvents(articles ports.ArticleStore, events ports.EventStore,
	extractor ports.EventExtractor, logger *slog.Logger) *ExtractEvents {
	return &ExtractEvents{
		articles:  articles,
		events:    events,
		extractor: extractor,
		logger:    logger,
	}
}

// Run walks recently analyzed articles and stores any events found. It
// returns how many events were inserted.
func (e *ExtractEvents) Run(ctx context.Context, limit int) (int, error) {
	if e.extractor == nil {
		return 0, nil
	}
	if limit <= 0 {
		limit = defaultEventBatch
	}

	articles, err := e.articles.Analyzed(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("load analyzed: %w", err)
	}

	inserted := 0
	for _, article := range articles {
		if ctx.Err() != nil {
			return inserted, ctx.Err()
		}
		if article.Relevance < minEventRelevance {
			continue
		}

		count, err := e.events.CountForArticle(ctx, article.ID)
		if err != nil {
			return inserted, fmt.Errorf("count events: %w", err)
		}
		if count > 0 {
			continue
		}

		n, err := e.processArticle(ctx, article)
		inserted += n
		if err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

func (e *ExtractEvents) processArticle(ctx context.Context, article domain.Article) (int, error) {
	drafts, err := e.extractor.ExtractEvents(ctx, article.Title, article.Content)
	if err != nil {
		e.logger.Warn("event extraction skipped", "id", article.ID, "err", err)
		return 0, nil
	}

	inserted := 0
	var earliest *time.Time
	for _, draft := range drafts {
		event := domain.Event{
			ArticleID:   article.ID,
			Title:       draft.Title,
			Type:        analysis.CoerceEventType(string(draft.Type)),
			Start:       draft.Start,
			End:         draft.End,
			Location:    draft.Location,
			Description: draft.Description,
			County:      analysis.CoerceCounty(string(draft.County)),
			SourceURL:   article.URL,
			Recurring:   draft.Recurring,
			CreatedAt:   time.Now().UTC(),
		}
		if _, err := e.events.Insert(ctx, event); err != nil {
			return inserted, fmt.Errorf("insert event: %w", err)
		}
		inserted++
		if earliest == nil || draft.Start.Before(*earliest) {
			start := draft.Start
			earliest = &start
		}
	}

	if earliest != nil {
		if err := e.articles.SetEventDate(ctx, article.ID, *earliest); err != nil {
			return inserted, fmt.Errorf("set event date: %w", err)
		}
		e.logger.Info("events extracted", "id", article.ID, "count", inserted)
	}
	return inserted, nil
}
