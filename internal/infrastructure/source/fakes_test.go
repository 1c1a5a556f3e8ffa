package source

import (
	"context"
	"sync"
	"time"

	"HarborMonitor/internal/domain"
)

// memArticleStore is an in-memory ports.ArticleStore keyed by URL.
type memArticleStore struct {
	mu       sync.Mutex
	articles map[string]domain.Article
}

func newMemArticleStore() *memArticleStore {
	return &memArticleStore{articles: map[string]domain.Article{}}
}

func (m *memArticleStore) InsertIfNew(_ context.Context, a domain.Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[a.URL]; ok {
		return false, nil
	}
	a.ID = int64(len(m.articles) + 1)
	m.articles[a.URL] = a
	return true, nil
}

func (m *memArticleStore) Unanalyzed(context.Context, int) ([]domain.Article, error) {
	return nil, nil
}

func (m *memArticleStore) MarkAnalyzed(context.Context, int64, domain.Judgment) error {
	return nil
}

func (m *memArticleStore) SetEventDate(context.Context, int64, time.Time) error { return nil }

func (m *memArticleStore) Analyzed(context.Context, int) ([]domain.Article, error) {
	return nil, nil
}

func (m *memArticleStore) Search(context.Context, []string, time.Time, int) ([]domain.Article, error) {
	return nil, nil
}

func (m *memArticleStore) RecentTop(context.Context, time.Time, int) ([]domain.Article, error) {
	return nil, nil
}

func (m *memArticleStore) UnnotifiedAbovePriority(context.Context, int, int) ([]domain.Article, error) {
	return nil, nil
}

func (m *memArticleStore) MarkNotified(context.Context, []int64) error { return nil }

func (m *memArticleStore) byURL(url string) (domain.Article, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[url]
	return a, ok
}

func (m *memArticleStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.articles)
}

// memMatterStore records watchlist inserts.
type memMatterStore struct {
	mu      sync.Mutex
	matters map[int]domain.WatchedMatter
}

func newMemMatterStore() *memMatterStore {
	return &memMatterStore{matters: map[int]domain.WatchedMatter{}}
}

func (m *memMatterStore) Active(context.Context) ([]domain.WatchedMatter, error) { return nil, nil }

func (m *memMatterStore) Exists(_ context.Context, matterID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.matters[matterID]
	return ok, nil
}

func (m *memMatterStore) Insert(_ context.Context, matter domain.WatchedMatter) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matters[matter.MatterID]; ok {
		return false, nil
	}
	m.matters[matter.MatterID] = matter
	return true, nil
}

func (m *memMatterStore) UpdateStatus(context.Context, int, string, *time.Time) error { return nil }

func (m *memMatterStore) SaveAmendmentAnalysis(context.Context, int, domain.AmendmentJudgment) error {
	return nil
}

func (m *memMatterStore) InsertHistoryIfNew(context.Context, domain.MatterHistory) (bool, error) {
	return false, nil
}

func (m *memMatterStore) InsertAttachmentIfNew(context.Context, domain.MatterAttachment) (bool, error) {
	return false, nil
}

func (m *memMatterStore) MarkAttachmentAnalyzed(context.Context, int, string, string) error {
	return nil
}

func (m *memMatterStore) InsertVoteIfNew(context.Context, domain.MatterVote) (bool, error) {
	return false, nil
}

// stubFetcher returns canned text regardless of URL.
type stubFetcher struct {
	text string
}

func (s stubFetcher) FetchText(context.Context, string) string { return s.text }
