package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/logging"
)

func testQAConfig() config.QAConfig {
	return config.QAConfig{
		LookbackDays:   30,
		MaxArticles:    3,
		MaxEvents:      5,
		DomainPhrases:  []string{"data center", "CR-98-2025"},
		EventTermHints: []string{"when", "meeting", "hearing"},
	}
}

func TestAskWithoutEngineReportsOffline(t *testing.T) {
	t.Parallel()

	ask := NewAsk(newFakeArticleStore(), newFakeEventStore(), nil,
		testQAConfig(), logging.New("error"))
	answer, err := ask.Run(context.Background(), "what is the status of CR-98-2025?")
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "not available")
	assert.Zero(t, answer.Confidence)
	assert.Empty(t, answer.Sources)
}

func TestAskSearchTermsExtractPhrasesAndWords(t *testing.T) {
	t.Parallel()

	ask := NewAsk(newFakeArticleStore(), newFakeEventStore(), &fakeEngine{},
		testQAConfig(), logging.New("error"))
	terms := ask.searchTerms("What is the status of the Data Center resolution CR-98-2025?")

	// Domain phrases come first, matched case-insensitively; stopwords and
	// short words are gone.
	assert.Equal(t, []string{"data center", "CR-98-2025", "status", "resolution"}, terms)
}

func TestAskBackfillsWithRecentTop(t *testing.T) {
	t.Parallel()

	pub := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	articles := newFakeArticleStore()
	articles.searchHits = []domain.Article{
		{ID: 1, Title: "Council vote on CR-98-2025", URL: "http://a/1",
			Summary: "passed 9-2", PublishedAt: &pub, KeyPoints: []string{"effective October"}},
	}
	articles.recentTop = []domain.Article{
		{ID: 1, Title: "Council vote on CR-98-2025", URL: "http://a/1"}, // duplicate
		{ID: 2, Title: "Planning board schedule", URL: "http://a/2"},
		{ID: 3, Title: "Moratorium extended", URL: "http://a/3"},
		{ID: 4, Title: "Never reached", URL: "http://a/4"},
	}
	events := newFakeEventStore()
	events.upcoming = []domain.Event{
		{Title: "Public hearing", Start: time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC),
			Location: "Upper Marlboro"},
	}

	engine := &fakeEngine{reply: "It passed on second reading."}
	ask := NewAsk(articles, events, engine, testQAConfig(), logging.New("error"))
	answer, err := ask.Run(context.Background(), "When is the next hearing on the data center bill?")
	require.NoError(t, err)

	assert.Equal(t, "It passed on second reading.", answer.Text)
	// 1 match + backfill up to MaxArticles, duplicate dropped.
	require.Len(t, answer.Sources, 3)
	assert.Equal(t, "http://a/1", answer.Sources[0].URL)
	assert.Equal(t, "http://a/2", answer.Sources[1].URL)
	assert.Equal(t, "http://a/3", answer.Sources[2].URL)

	assert.Contains(t, engine.block, "RECENT COVERAGE:")
	assert.Contains(t, engine.block, "[1] Council vote on CR-98-2025")
	assert.Contains(t, engine.block, "- effective October")
	assert.Contains(t, engine.block, "UPCOMING EVENTS:")
	assert.Contains(t, engine.block, "Public hearing on 2026-09-10 18:00 at Upper Marlboro")

	// 3 articles and 1 event.
	assert.InDelta(t, 0.475, answer.Confidence, 1e-9)
}

func TestAskSkipsEventsWithoutScheduleHint(t *testing.T) {
	t.Parallel()

	articles := newFakeArticleStore()
	events := newFakeEventStore()
	events.upcoming = []domain.Event{{Title: "Should not appear", Start: time.Now()}}

	engine := &fakeEngine{reply: "Nothing on record."}
	ask := NewAsk(articles, events, engine, testQAConfig(), logging.New("error"))
	answer, err := ask.Run(context.Background(), "Who sponsored the moratorium?")
	require.NoError(t, err)

	assert.NotContains(t, engine.block, "UPCOMING EVENTS:")
	// Empty grounding bottoms out at the confidence floor.
	assert.InDelta(t, 0.2, answer.Confidence, 1e-9)
}

func TestConfidenceCaps(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.2, confidence(0, 0), 1e-9)
	assert.InDelta(t, 0.95, confidence(10, 10), 1e-9)
}
