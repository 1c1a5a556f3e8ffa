package usecase

import (
	"context"
	"errors"
	"time"

	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/infrastructure/legistar"
)

// fakeArticleStore serves canned articles and records mutations.
type fakeArticleStore struct {
	unanalyzed []domain.Article
	analyzed   []domain.Article
	searchHits []domain.Article
	recentTop  []domain.Article
	unnotified []domain.Article

	judgments  map[int64]domain.Judgment
	eventDates map[int64]time.Time
	notified   []int64
	searchArgs [][]string
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{
		judgments:  map[int64]domain.Judgment{},
		eventDates: map[int64]time.Time{},
	}
}

func (f *fakeArticleStore) InsertIfNew(context.Context, domain.Article) (bool, error) {
	return false, errors.New("not used")
}

func (f *fakeArticleStore) Unanalyzed(_ context.Context, limit int) ([]domain.Article, error) {
	if len(f.unanalyzed) > limit {
		return f.unanalyzed[:limit], nil
	}
	return f.unanalyzed, nil
}

func (f *fakeArticleStore) MarkAnalyzed(_ context.Context, id int64, j domain.Judgment) error {
	f.judgments[id] = j
	return nil
}

func (f *fakeArticleStore) SetEventDate(_ context.Context, id int64, eventDate time.Time) error {
	f.eventDates[id] = eventDate
	return nil
}

func (f *fakeArticleStore) Analyzed(context.Context, int) ([]domain.Article, error) {
	return f.analyzed, nil
}

func (f *fakeArticleStore) Search(_ context.Context, terms []string, _ time.Time, _ int) ([]domain.Article, error) {
	f.searchArgs = append(f.searchArgs, terms)
	return f.searchHits, nil
}

func (f *fakeArticleStore) RecentTop(_ context.Context, _ time.Time, limit int) ([]domain.Article, error) {
	if len(f.recentTop) > limit {
		return f.recentTop[:limit], nil
	}
	return f.recentTop, nil
}

func (f *fakeArticleStore) UnnotifiedAbovePriority(context.Context, int, int) ([]domain.Article, error) {
	return f.unnotified, nil
}

func (f *fakeArticleStore) MarkNotified(_ context.Context, ids []int64) error {
	f.notified = append(f.notified, ids...)
	return nil
}

// fakeEventStore records inserted events.
type fakeEventStore struct {
	inserted []domain.Event
	counts   map[int64]int
	upcoming []domain.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{counts: map[int64]int{}}
}

func (f *fakeEventStore) Insert(_ context.Context, e domain.Event) (int64, error) {
	f.inserted = append(f.inserted, e)
	return int64(len(f.inserted)), nil
}

func (f *fakeEventStore) CountForArticle(_ context.Context, articleID int64) (int, error) {
	return f.counts[articleID], nil
}

func (f *fakeEventStore) Upcoming(context.Context, time.Time, time.Time, int) ([]domain.Event, error) {
	return f.upcoming, nil
}

// fakeMatterStore records watchlist mutations.
type fakeMatterStore struct {
	active []domain.WatchedMatter

	statusUpdates map[int]string
	histories     map[int]domain.MatterHistory
	attachments   map[int]domain.MatterAttachment
	votes         map[int]domain.MatterVote
	analyses      map[int]domain.AmendmentJudgment
	analyzedDocs  map[int]string
}

func newFakeMatterStore() *fakeMatterStore {
	return &fakeMatterStore{
		statusUpdates: map[int]string{},
		histories:     map[int]domain.MatterHistory{},
		attachments:   map[int]domain.MatterAttachment{},
		votes:         map[int]domain.MatterVote{},
		analyses:      map[int]domain.AmendmentJudgment{},
		analyzedDocs:  map[int]string{},
	}
}

func (f *fakeMatterStore) Active(context.Context) ([]domain.WatchedMatter, error) {
	return f.active, nil
}

func (f *fakeMatterStore) Exists(context.Context, int) (bool, error) { return false, nil }

func (f *fakeMatterStore) Insert(context.Context, domain.WatchedMatter) (bool, error) {
	return false, errors.New("not used")
}

func (f *fakeMatterStore) UpdateStatus(_ context.Context, matterID int, status string, _ *time.Time) error {
	f.statusUpdates[matterID] = status
	return nil
}

func (f *fakeMatterStore) SaveAmendmentAnalysis(_ context.Context, matterID int, j domain.AmendmentJudgment) error {
	f.analyses[matterID] = j
	return nil
}

func (f *fakeMatterStore) InsertHistoryIfNew(_ context.Context, h domain.MatterHistory) (bool, error) {
	if _, ok := f.histories[h.ExternalID]; ok {
		return false, nil
	}
	f.histories[h.ExternalID] = h
	return true, nil
}

func (f *fakeMatterStore) InsertAttachmentIfNew(_ context.Context, a domain.MatterAttachment) (bool, error) {
	if _, ok := f.attachments[a.ExternalID]; ok {
		return false, nil
	}
	f.attachments[a.ExternalID] = a
	return true, nil
}

func (f *fakeMatterStore) MarkAttachmentAnalyzed(_ context.Context, externalID int, summary, _ string) error {
	f.analyzedDocs[externalID] = summary
	return nil
}

func (f *fakeMatterStore) InsertVoteIfNew(_ context.Context, v domain.MatterVote) (bool, error) {
	if _, ok := f.votes[v.ExternalID]; ok {
		return false, nil
	}
	f.votes[v.ExternalID] = v
	return true, nil
}

// fakeMatterFeed serves canned API records.
type fakeMatterFeed struct {
	matters     map[int]legistar.Matter
	histories   map[int][]legistar.History
	attachments map[int][]legistar.Attachment
	votes       map[int][]legistar.Vote
}

func (f *fakeMatterFeed) Matter(_ context.Context, matterID int) (legistar.Matter, error) {
	m, ok := f.matters[matterID]
	if !ok {
		return legistar.Matter{}, errors.New("matter not found")
	}
	return m, nil
}

func (f *fakeMatterFeed) Histories(_ context.Context, matterID int) ([]legistar.History, error) {
	return f.histories[matterID], nil
}

func (f *fakeMatterFeed) Attachments(_ context.Context, matterID int) ([]legistar.Attachment, error) {
	return f.attachments[matterID], nil
}

func (f *fakeMatterFeed) Votes(_ context.Context, eventItemID int) ([]legistar.Vote, error) {
	return f.votes[eventItemID], nil
}

// fakeClassifier returns a fixed judgment or error.
type fakeClassifier struct {
	judgment domain.Judgment
	err      error
	calls    int
}

func (f *fakeClassifier) Analyze(context.Context, string, string, string, *time.Time) (domain.Judgment, error) {
	f.calls++
	if f.err != nil {
		return domain.Judgment{}, f.err
	}
	return f.judgment, nil
}

// fakeExtractor returns fixed drafts.
type fakeExtractor struct {
	drafts []domain.EventDraft
	calls  int
}

func (f *fakeExtractor) ExtractEvents(context.Context, string, string) ([]domain.EventDraft, error) {
	f.calls++
	return f.drafts, nil
}

// fakeAnalyzer returns a fixed amendment judgment.
type fakeAnalyzer struct {
	judgment domain.AmendmentJudgment
	calls    int
}

func (f *fakeAnalyzer) AnalyzeAmendment(context.Context, string, string, string) (domain.AmendmentJudgment, error) {
	f.calls++
	return f.judgment, nil
}

// fakeEngine captures the context block handed to the answering call.
type fakeEngine struct {
	reply string
	err   error
	block string
}

func (f *fakeEngine) Answer(_ context.Context, _, contextBlock string) (string, error) {
	f.block = contextBlock
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeNotifier captures published digests.
type fakeNotifier struct {
	digests []string
	err     error
}

func (f *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	if f.err != nil {
		return f.err
	}
	f.digests = append(f.digests, digest)
	return nil
}

// stubFetcher returns canned text for every URL.
type stubFetcher struct {
	text string
}

func (s stubFetcher) FetchText(context.Context, string) string { return s.text }
