package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/logging"
)

func TestExtractEventsStoresDraftsAndEarliestDate(t *testing.T) {
	t.Parallel()

	articles := newFakeArticleStore()
	articles.analyzed = []domain.Article{
		{ID: 4, Title: "Hearing scheduled", URL: "http://example.com/hearing", Relevance: 8, Analyzed: true},
	}
	events := newFakeEventStore()

	later := time.Date(2026, 9, 20, 18, 0, 0, 0, time.UTC)
	sooner := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
	extractor := &fakeExtractor{drafts: []domain.EventDraft{
		{Title: "Second reading", Type: domain.EventHearing, Start: later},
		{Title: "Public hearing", Type: domain.EventHearing, Start: sooner},
	}}

	extract := NewExtractEvents(articles, events, extractor, logging.New("error"))
	n, err := extract.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, events.inserted, 2)
	assert.Equal(t, int64(4), events.inserted[0].ArticleID)
	assert.Equal(t, "http://example.com/hearing", events.inserted[0].SourceURL)
	assert.Equal(t, sooner, articles.eventDates[4])
}

func TestExtractEventsSkipsLowRelevanceAndDone(t *testing.T) {
	t.Parallel()

	articles := newFakeArticleStore()
	articles.analyzed = []domain.Article{
		{ID: 1, Title: "Barely relevant", Relevance: 3, Analyzed: true},
		{ID: 2, Title: "Already extracted", Relevance: 9, Analyzed: true},
	}
	events := newFakeEventStore()
	events.counts[2] = 1
	extractor := &fakeExtractor{}

	extract := NewExtractEvents(articles, events, extractor, logging.New("error"))
	n, err := extract.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, extractor.calls)
}

func TestExtractEventsNoExtractorIsNoop(t *testing.T) {
	t.Parallel()

	extract := NewExtractEvents(newFakeArticleStore(), newFakeEventStore(), nil, logging.New("error"))
	n, err := extract.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
