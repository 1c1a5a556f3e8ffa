package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"HarborMonitor/internal/domain"
)

func TestValidateJudgmentClampsScores(t *testing.T) {
	t.Parallel()

	j := ValidateJudgment(domain.Judgment{
		Relevance: -5,
		Priority:  42,
		Category:  "policy",
		County:    "unclear",
		Summary:   "ok",
	}, "title")

	assert.Equal(t, 0, j.Relevance)
	assert.Equal(t, 10, j.Priority)
	assert.NotNil(t, j.KeyPoints)
}

func TestValidateJudgmentCoercesUnknownEnums(t *testing.T) {
	t.Parallel()

	j := ValidateJudgment(domain.Judgment{
		Relevance: 6,
		Priority:  6,
		Category:  "gossip",
		County:    "narnia",
	}, "County weighs data center rules")

	assert.Equal(t, domain.CategoryPolicy, j.Category)
	assert.Equal(t, domain.CountyUnclear, j.County)
	assert.Equal(t, "County weighs data center rules", j.Summary)
}

func TestCoerceEventType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.EventHearing, CoerceEventType("hearing"))
	assert.Equal(t, domain.EventAnnouncement, CoerceEventType("gala"))
}

func TestCoerceRisk(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.RiskHigh, CoerceRisk("HIGH"))
	assert.Equal(t, domain.RiskUnclear, CoerceRisk("severe"))
}
