package domain

import (
	"strings"
	"time"
)

// WatchedMatter is a tracked piece of legislation in the external
// legislative-records system, identified by its record ID.
type WatchedMatter struct {
	ID           int64
	MatterID     int // external record ID, unique
	File         string
	Type         string
	Title        string
	BodyName     string
	Status       string
	LastActionAt *time.Time
	RecordURL    string

	WatchReason  string
	AutoDetected bool
	Active       bool
	Priority     string // high, medium, low

	// Amendment-analysis fields, populated by the amendment analyzer.
	ApprovalPath           string
	QualifiedDefinition    string
	PowerProvisions        string
	InfrastructureTriggers string
	CompatibilityStandards string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatterHistory records one detected status transition on a watched matter.
type MatterHistory struct {
	ID           int64
	MatterID     int
	ExternalID   int // dedup key from the records API
	ActionAt     *time.Time
	ActionText   string
	ActionBody   string
	Result       string
	VoteInfo     string
	Milestone    bool
	DiscoveredAt time.Time
}

// MatterAttachment is one discovered document on a watched matter.
type MatterAttachment struct {
	ID           int64
	MatterID     int
	ExternalID   int
	Name         string
	Hyperlink    string
	FileType     string
	ContentText  string
	Summary      string
	Analysis     string // serialized amendment judgment
	Analyzed     bool
	DiscoveredAt time.Time
}

// MatterVote is one roll-call vote event on a watched matter.
type MatterVote struct {
	ID           int64
	MatterID     int
	ExternalID   int
	VoteAt       *time.Time
	BodyName     string
	Result       string
	Tally        string
	RollCall     string
	DiscoveredAt time.Time
}

// milestoneVerbs are the procedurally significant action words that mark a
// history row as a milestone.
var milestoneVerbs = []string{
	"introduced", "passed", "adopted", "approved", "enacted",
	"vetoed", "failed", "withdrawn", "signed", "referred",
}

// IsMilestoneAction reports whether an action text names a procedurally
// significant step.
func IsMilestoneAction(actionText string) bool {
	lower := strings.ToLower(actionText)
	for _, verb := range milestoneVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}
