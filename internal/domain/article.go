package domain

import "time"

// Category classifies what kind of civic development an article describes.
type Category string

const (
	CategoryPolicy        Category = "policy"
	CategoryMeeting       Category = "meeting"
	CategoryLegislation   Category = "legislation"
	CategoryEnvironmental Category = "environmental"
	CategoryCommunity     Category = "community"
	CategoryDevelopment   Category = "development"
)

// County identifies which monitored jurisdiction an item concerns.
type County string

const (
	CountyPrinceGeorges County = "prince_georges"
	CountyCharles       County = "charles"
	CountyBoth          County = "both"
	CountyStatewide     County = "statewide"
	CountyUnclear       County = "unclear"
)

// Categories and Counties enumerate the closed sets the classifier may emit.
var (
	Categories = []Category{
		CategoryPolicy, CategoryMeeting, CategoryLegislation,
		CategoryEnvironmental, CategoryCommunity, CategoryDevelopment,
	}
	Counties = []County{
		CountyPrinceGeorges, CountyCharles, CountyBoth,
		CountyStatewide, CountyUnclear,
	}
)

// DiscoveredItem is an ephemeral candidate emitted by a source adapter. It is
// either converted to an Article by the ingestion path or discarded.
type DiscoveredItem struct {
	Title       string
	URL         string
	Summary     string
	Source      string
	PublishedAt *time.Time
}

// Article is a persisted piece of monitored content, keyed by URL.
// Re-discovering an existing URL is a no-op, never an update.
type Article struct {
	ID           int64
	Title        string
	URL          string
	Summary      string
	Content      string
	Source       string
	PublishedAt  *time.Time
	DiscoveredAt time.Time
	EventDate    *time.Time

	// Classification fields, populated once Analyzed is set.
	Relevance int // 0-10 jurisdiction/topic relevance
	Priority  int // 1-10 urgency
	Category  Category
	County    County
	KeyPoints []string

	Analyzed bool
	Notified bool
}
