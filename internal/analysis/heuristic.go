package analysis

import (
	"strings"
	"time"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
)

// Heuristic is the rule-based classifier used when the LLM is disabled or a
// call fails. It is deterministic: identical input always yields identical
// output, which keeps the degraded mode trivially testable.
type Heuristic struct {
	critical []string
	high     []string
	medium   []string
}

// NewHeuristic builds the fallback classifier from the configured signal tiers.
func NewHeuristic(kw config.KeywordConfig) *Heuristic {
	return &Heuristic{
		critical: kw.CriticalSignals,
		high:     kw.HighSignals,
		medium:   kw.MediumSignals,
	}
}

var categorySignals = []struct {
	category domain.Category
	terms    []string
}{
	{domain.CategoryLegislation, []string{"legislative amendment", "zoning text amendment", "resolution", "bill", "ordinance", "vote", "council"}},
	{domain.CategoryMeeting, []string{"meeting", "agenda", "hearing", "session"}},
	{domain.CategoryEnvironmental, []string{"environmental", "water", "emissions", "pollution", "wildlife"}},
	{domain.CategoryCommunity, []string{"residents", "community", "protest", "petition", "neighborhood"}},
	{domain.CategoryDevelopment, []string{"construction", "developer", "redevelopment", "site plan", "acquisition"}},
}

var countySignals = []struct {
	county domain.County
	terms  []string
}{
	{domain.CountyPrinceGeorges, []string{"prince george", "upper marlboro", "eagle harbor", "chalk point", "landover"}},
	{domain.CountyCharles, []string{"charles county", "waldorf", "la plata"}},
	{domain.CountyStatewide, []string{"statewide", "general assembly", "governor", "state of maryland"}},
}

// Analyze scores an article with tiered keyword rules. Summary defaults to
// the title; key points are always empty in degraded mode.
func (h *Heuristic) Analyze(title, content, source string) domain.Judgment {
	text := strings.ToLower(title + " " + content)

	priority := 5
	relevance := 5
	switch {
	case containsAny(text, h.critical):
		priority = 8
		relevance = 7
	case containsAny(text, h.high):
		priority = 7
		relevance = 6
	case containsAny(text, h.medium):
		priority = 6
	}

	category := domain.CategoryPolicy
	for _, cs := range categorySignals {
		if containsAny(text, cs.terms) {
			category = cs.category
			break
		}
	}

	county := domain.CountyUnclear
	var pg, ch bool
	for _, cs := range countySignals {
		if containsAny(text, cs.terms) {
			switch cs.county {
			case domain.CountyPrinceGeorges:
				pg = true
			case domain.CountyCharles:
				ch = true
			default:
				county = cs.county
			}
		}
	}
	switch {
	case pg && ch:
		county = domain.CountyBoth
	case pg:
		county = domain.CountyPrinceGeorges
	case ch:
		county = domain.CountyCharles
	}

	return ValidateJudgment(domain.Judgment{
		Relevance: relevance,
		Priority:  priority,
		Category:  category,
		County:    county,
		Summary:   title,
		KeyPoints: []string{},
	}, title)
}

// AnalyzeArticle satisfies the classifier contract shape used by the
// resolver; the published date carries no signal for the heuristic.
func (h *Heuristic) AnalyzeArticle(title, content, source string, _ *time.Time) domain.Judgment {
	return h.Analyze(title, content, source)
}

func containsAny(lowered string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
