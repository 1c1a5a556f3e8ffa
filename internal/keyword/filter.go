// Package keyword decides whether raw source items are in scope before any
// network or LLM spend. It is pure: no I/O, no clocks, no globals.
package keyword

import (
	"strings"

	"HarborMonitor/internal/config"
)

// Filter applies tiered keyword gating. Geo-specific terms (jurisdiction
// names, known bill codes) pass on their own. Contextual terms (the topic
// vocabulary) are enough for local-tier sources, but broad-tier sources must
// also corroborate with a geographic term: "data center" alone appears in
// industry press constantly without having anything to do with the monitored
// counties.
type Filter struct {
	geoSpecific []string
	geographic  []string
	contextual  []string
	broad       map[string]bool
}

// New builds a filter from the configured vocabulary and the set of
// broad-tier source labels.
func New(kw config.KeywordConfig, broadSources []string) *Filter {
	broad := make(map[string]bool, len(broadSources))
	for _, s := range broadSources {
		broad[s] = true
	}
	return &Filter{
		geoSpecific: kw.GeoSpecific,
		geographic:  kw.Geographic,
		contextual:  kw.Contextual,
		broad:       broad,
	}
}

// Passes reports whether an item with the given title and summary from the
// given source label is in scope.
func (f *Filter) Passes(title, summary, source string) bool {
	text := strings.ToLower(title + " " + summary)

	// A geo-specific hit is sufficient regardless of tier.
	if matchAny(text, f.geoSpecific) {
		return true
	}

	if f.broad[source] {
		return matchAny(text, f.contextual) && matchAny(text, f.geographic)
	}

	// Local-tier sources are already jurisdiction-scoped, so a single
	// topical hit is trustworthy.
	return matchAny(text, f.contextual)
}

// MatchAny reports whether any term in the list appears in the text.
// Matching is case-insensitive substring matching, not tokenized; short
// terms can false-positive inside longer words.
func MatchAny(text string, terms []string) bool {
	return matchAny(strings.ToLower(text), terms)
}

func matchAny(lowered string, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
