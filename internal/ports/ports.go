package ports

import (
	"context"
	"time"

	"HarborMonitor/internal/domain"
)

// ArticleStore persists discovered articles and their classification state.
// InsertIfNew must treat a duplicate URL as a benign no-op so overlapping
// runs racing on the same URL both succeed.
type ArticleStore interface {
	InsertIfNew(ctx context.Context, article domain.Article) (bool, error)
	Unanalyzed(ctx context.Context, limit int) ([]domain.Article, error)
	MarkAnalyzed(ctx context.Context, id int64, judgment domain.Judgment) error
	SetEventDate(ctx context.Context, id int64, eventDate time.Time) error
	Analyzed(ctx context.Context, limit int) ([]domain.Article, error)
	Search(ctx context.Context, terms []string, since time.Time, limit int) ([]domain.Article, error)
	RecentTop(ctx context.Context, since time.Time, limit int) ([]domain.Article, error)
	UnnotifiedAbovePriority(ctx context.Context, minPriority, limit int) ([]domain.Article, error)
	MarkNotified(ctx context.Context, ids []int64) error
}

// EventStore persists calendar events derived from articles.
type EventStore interface {
	Insert(ctx context.Context, event domain.Event) (int64, error)
	CountForArticle(ctx context.Context, articleID int64) (int, error)
	Upcoming(ctx context.Context, from, until time.Time, limit int) ([]domain.Event, error)
}

// MatterStore persists watched legislative matters and their child records.
// The InsertXIfNew methods dedup on the external record ID.
type MatterStore interface {
	Active(ctx context.Context) ([]domain.WatchedMatter, error)
	Exists(ctx context.Context, matterID int) (bool, error)
	Insert(ctx context.Context, matter domain.WatchedMatter) (bool, error)
	UpdateStatus(ctx context.Context, matterID int, status string, lastAction *time.Time) error
	SaveAmendmentAnalysis(ctx context.Context, matterID int, judgment domain.AmendmentJudgment) error
	InsertHistoryIfNew(ctx context.Context, history domain.MatterHistory) (bool, error)
	InsertAttachmentIfNew(ctx context.Context, attachment domain.MatterAttachment) (bool, error)
	MarkAttachmentAnalyzed(ctx context.Context, externalID int, summary, analysis string) error
	InsertVoteIfNew(ctx context.Context, vote domain.MatterVote) (bool, error)
}

// ChatRequest is one system+user exchange sent to the LLM provider.
type ChatRequest struct {
	System      string
	User        string
	ForceJSON   bool
	Temperature float64
	MaxTokens   int
}

// ChatClient pushes prompts to an LLM provider and returns the raw reply.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ContentFetcher extracts best-effort plain text from an arbitrary URL.
// Implementations never fail: a fetch or parse problem yields "".
type ContentFetcher interface {
	FetchText(ctx context.Context, url string) string
}

// Source discovers new items from one upstream provider, persists the ones
// that survive filtering, and reports how many were new.
type Source interface {
	Name() string
	Discover(ctx context.Context) (int, error)
}

// Classifier assigns a structured judgment to raw article text.
type Classifier interface {
	Analyze(ctx context.Context, title, content, source string, published *time.Time) (domain.Judgment, error)
}

// EventExtractor derives calendar events from analyzed article text.
// Best-effort enrichment: implementations return an empty slice on failure.
type EventExtractor interface {
	ExtractEvents(ctx context.Context, title, content string) ([]domain.EventDraft, error)
}

// AmendmentAnalyzer produces a structured read of legislative attachment text.
type AmendmentAnalyzer interface {
	AnalyzeAmendment(ctx context.Context, matterTitle, attachmentName, text string) (domain.AmendmentJudgment, error)
}

// Notifier streams digests to the configured alert channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when monitoring cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
