// Package analysis holds the pure classification logic: judgment validation
// and the deterministic heuristic used when the LLM backend is unavailable.
package analysis

import "HarborMonitor/internal/domain"

// ValidateJudgment clamps and normalizes a judgment so out-of-range or
// unrecognized provider output never reaches the store. Raw provider JSON is
// parsed at the LLM boundary; this is the single place values get coerced.
func ValidateJudgment(j domain.Judgment, title string) domain.Judgment {
	j.Relevance = clamp(j.Relevance, 0, 10)
	j.Priority = clamp(j.Priority, 1, 10)
	j.Category = CoerceCategory(string(j.Category))
	j.County = CoerceCounty(string(j.County))
	if j.Summary == "" {
		j.Summary = title
	}
	if j.KeyPoints == nil {
		j.KeyPoints = []string{}
	}
	return j
}

// CoerceCategory maps a raw string onto the closed category set, falling
// back to policy when the value is unrecognized.
func CoerceCategory(raw string) domain.Category {
	for _, c := range domain.Categories {
		if string(c) == raw {
			return c
		}
	}
	return domain.CategoryPolicy
}

// CoerceCounty maps a raw string onto the closed county set, falling back
// to unclear.
func CoerceCounty(raw string) domain.County {
	for _, c := range domain.Counties {
		if string(c) == raw {
			return c
		}
	}
	return domain.CountyUnclear
}

// CoerceEventType maps a raw string onto the closed event-type set, falling
// back to announcement.
func CoerceEventType(raw string) domain.EventType {
	for _, t := range domain.EventTypes {
		if string(t) == raw {
			return t
		}
	}
	return domain.EventAnnouncement
}

// CoerceRisk maps a raw string onto the HIGH/MEDIUM/LOW scale.
func CoerceRisk(raw string) domain.RiskRating {
	switch domain.RiskRating(raw) {
	case domain.RiskHigh, domain.RiskMedium, domain.RiskLow:
		return domain.RiskRating(raw)
	}
	return domain.RiskUnclear
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
