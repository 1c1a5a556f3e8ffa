package domain

import "time"

// EventType enumerates the calendar event kinds the extractor may emit.
type EventType string

const (
	EventMeeting      EventType = "meeting"
	EventDeadline     EventType = "deadline"
	EventHearing      EventType = "hearing"
	EventVote         EventType = "vote"
	EventProtest      EventType = "protest"
	EventAnnouncement EventType = "announcement"
)

// EventTypes is the closed set accepted from the extractor.
var EventTypes = []EventType{
	EventMeeting, EventDeadline, EventHearing,
	EventVote, EventProtest, EventAnnouncement,
}

// EventDraft is an extractor result not yet bound to an article row.
type EventDraft struct {
	Title       string
	Type        EventType
	Start       time.Time
	End         *time.Time
	Location    string
	Description string
	County      County
	Recurring   bool
}

// Event is a calendar entry derived from an analyzed article.
// An article may spawn zero or more events.
type Event struct {
	ID          int64
	ArticleID   int64
	Title       string
	Type        EventType
	Start       time.Time
	End         *time.Time
	Location    string
	Description string
	County      County
	SourceURL   string
	Recurring   bool
	Cancelled   bool
	CreatedAt   time.Time
}
