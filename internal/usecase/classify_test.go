package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HarborMonitor/internal/analysis"
	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/logging"
)

func testHeuristic() *analysis.Heuristic {
	return analysis.NewHeuristic(config.KeywordConfig{
		CriticalSignals: []string{"vote", "public hearing"},
		HighSignals:     []string{"data center", "zoning"},
		MediumSignals:   []string{"planning board"},
	})
}

func TestClassifyUsesPrimary(t *testing.T) {
	t.Parallel()

	store := newFakeArticleStore()
	store.unanalyzed = []domain.Article{
		{ID: 1, Title: "Council vote on data center zoning", Content: "text", Source: "Test"},
	}
	primary := &fakeClassifier{judgment: domain.Judgment{
		Relevance: 9, Priority: 8, Category: domain.CategoryLegislation,
		County: domain.CountyPrinceGeorges, Summary: "from the model",
	}}

	classify := NewClassify(store, primary, testHeuristic(), logging.New("error"))
	done, err := classify.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, "from the model", store.judgments[1].Summary)
}

func TestClassifyFallsBackToHeuristic(t *testing.T) {
	t.Parallel()

	store := newFakeArticleStore()
	store.unanalyzed = []domain.Article{
		{ID: 7, Title: "Public hearing on data center in Prince George's",
			Content: "residents gather", Source: "Test"},
	}
	primary := &fakeClassifier{err: errors.New("provider down")}

	classify := NewClassify(store, primary, testHeuristic(), logging.New("error"))
	done, err := classify.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, primary.calls)

	// The heuristic judgment still lands in storage.
	j := store.judgments[7]
	assert.GreaterOrEqual(t, j.Relevance, 5)
	assert.NotEmpty(t, j.Summary)
}

func TestClassifyHeuristicOnlyWithoutPrimary(t *testing.T) {
	t.Parallel()

	store := newFakeArticleStore()
	store.unanalyzed = []domain.Article{
		{ID: 2, Title: "Zoning update for Charles County", Content: "", Source: "Test"},
		{ID: 3, Title: "Farmers market schedule", Content: "", Source: "Test"},
	}

	classify := NewClassify(store, nil, testHeuristic(), logging.New("error"))
	done, err := classify.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, done)
	assert.Len(t, store.judgments, 2)
	assert.Greater(t, store.judgments[2].Relevance, store.judgments[3].Relevance)
}
