package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
)

func testHeuristic() *Heuristic {
	return NewHeuristic(config.KeywordConfig{
		CriticalSignals: []string{"vote", "approval", "legislative amendment", "zoning change"},
		HighSignals:     []string{"planning board", "county council", "task force"},
		MediumSignals:   []string{"data center", "zoning", "moratorium"},
	})
}

func TestHeuristicCriticalSignal(t *testing.T) {
	t.Parallel()

	h := testHeuristic()
	j := h.Analyze("Council schedules vote on zoning text amendment",
		"The vote covers the qualified data center definition.", "Maryland Matters")

	assert.Equal(t, 8, j.Priority)
	assert.Equal(t, 7, j.Relevance)
	assert.Equal(t, domain.CategoryLegislation, j.Category)
}

func TestHeuristicTiers(t *testing.T) {
	t.Parallel()

	h := testHeuristic()

	high := h.Analyze("Planning board posts agenda", "", "PG Planning Board")
	assert.Equal(t, 7, high.Priority)

	medium := h.Analyze("New data center proposed", "", "WTOP News")
	assert.Equal(t, 6, medium.Priority)

	base := h.Analyze("Road repaving begins", "", "Patch Bowie")
	assert.Equal(t, 5, base.Priority)
	assert.Equal(t, 5, base.Relevance)
}

func TestHeuristicCountyDetection(t *testing.T) {
	t.Parallel()

	h := testHeuristic()

	pg := h.Analyze("Upper Marlboro hearing announced", "", "src")
	assert.Equal(t, domain.CountyPrinceGeorges, pg.County)

	both := h.Analyze("Prince George's and Charles County align rules", "", "src")
	assert.Equal(t, domain.CountyBoth, both.County)

	unclear := h.Analyze("Regional grid strain grows", "", "src")
	assert.Equal(t, domain.CountyUnclear, unclear.County)
}

func TestHeuristicDeterministic(t *testing.T) {
	t.Parallel()

	h := testHeuristic()
	first := h.Analyze("Moratorium floated for AR zones", "details", "src")
	second := h.Analyze("Moratorium floated for AR zones", "details", "src")
	assert.Equal(t, first, second)
}
