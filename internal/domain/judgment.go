package domain

import "time"

// Judgment is the structured classification of one article.
type Judgment struct {
	Relevance int      // 0-10
	Priority  int      // 1-10
	Category  Category
	County    County
	Summary   string
	KeyPoints []string
}

// RiskRating is a categorical severity used by the amendment analyzer.
type RiskRating string

const (
	RiskHigh    RiskRating = "HIGH"
	RiskMedium  RiskRating = "MEDIUM"
	RiskLow     RiskRating = "LOW"
	RiskUnclear RiskRating = "UNCLEAR"
)

// AmendmentRisks rates the dimensions residents care about in a zoning draft.
type AmendmentRisks struct {
	ApprovalPath   RiskRating
	Power          RiskRating
	Infrastructure RiskRating
	Compatibility  RiskRating
}

// AmendmentJudgment is the structured analysis of a legislative attachment
// (zoning amendment draft text).
type AmendmentJudgment struct {
	ApprovalPath           string
	QualifiedDefinition    string
	PowerProvisions        string
	InfrastructureTriggers string
	CompatibilityStandards string
	Risks                  AmendmentRisks
	TalkingPoints          []string
	Summary                string
	Analyzed               bool
}

// SourceRef cites one article or event used to ground an answer.
type SourceRef struct {
	Title string
	URL   string
	Date  *time.Time
}

// Answer is a grounded response to a free-text question.
type Answer struct {
	Text       string
	Sources    []SourceRef
	Confidence float64
}
