// Package storage persists the monitor's state in Postgres. Uniqueness
// constraints (articles.url, watched_matters.matter_id, and the child
// tables' external record IDs) are what make overlapping runs safe: every
// insert treats a conflict as a benign no-op.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const articleColumns = `id, title, url, summary, content, source, published_date,
discovered_date, event_date, relevance_score, priority_score, category, county,
key_points, analyzed, notified`

// ArticleStore persists articles in the articles table.
type ArticleStore struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*ArticleStore)(nil)

// NewArticleStore wires a sql.DB implementation.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// InsertIfNew inserts the article unless its URL already exists. The unique
// constraint carries the idempotence guarantee; a conflicting insert reports
// false with no error.
func (s *ArticleStore) InsertIfNew(ctx context.Context, a domain.Article) (bool, error) {
	query, args, err := psql.Insert("articles").
		Columns("title", "url", "summary", "content", "source",
			"published_date", "discovered_date", "analyzed", "notified").
		Values(a.Title, a.URL, a.Summary, a.Content, a.Source,
			a.PublishedAt, a.DiscoveredAt, a.Analyzed, a.Notified).
		Suffix("ON CONFLICT (url) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Unanalyzed returns the oldest articles still awaiting classification. A run
// killed mid-batch resumes naturally from this query.
func (s *ArticleStore) Unanalyzed(ctx context.Context, limit int) ([]domain.Article, error) {
	query, args, err := psql.Select(articleColumns).
		From("articles").
		Where(sq.Eq{"analyzed": false}).
		OrderBy("discovered_date ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

// Analyzed returns recently discovered analyzed articles.
func (s *ArticleStore) Analyzed(ctx context.Context, limit int) ([]domain.Article, error) {
	query, args, err := psql.Select(articleColumns).
		From("articles").
		Where(sq.Eq{"analyzed": true}).
		OrderBy("discovered_date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

// MarkAnalyzed stores the judgment and flips the analyzed flag.
func (s *ArticleStore) MarkAnalyzed(ctx context.Context, id int64, j domain.Judgment) error {
	query, args, err := psql.Update("articles").
		Set("relevance_score", j.Relevance).
		Set("priority_score", j.Priority).
		Set("category", string(j.Category)).
		Set("county", string(j.County)).
		Set("summary", j.Summary).
		Set("key_points", pq.StringArray(j.KeyPoints)).
		Set("analyzed", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark analyzed %d: %w", id, err)
	}
	return nil
}

// SetEventDate records the first derived event timestamp; later events do not
// overwrite it.
func (s *ArticleStore) SetEventDate(ctx context.Context, id int64, eventDate time.Time) error {
	query, args, err := psql.Update("articles").
		Set("event_date", eventDate).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"event_date": nil}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set event date %d: %w", id, err)
	}
	return nil
}

// Search returns analyzed articles since the cutoff whose title or content
// matches any of the terms.
func (s *ArticleStore) Search(ctx context.Context, terms []string, since time.Time, limit int) ([]domain.Article, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	match := sq.Or{}
	for _, term := range terms {
		pattern := "%" + term + "%"
		match = append(match,
			sq.ILike{"title": pattern},
			sq.ILike{"content": pattern},
		)
	}

	query, args, err := psql.Select(articleColumns).
		From("articles").
		Where(sq.And{
			sq.Eq{"analyzed": true},
			sq.GtOrEq{"discovered_date": since},
			match,
		}).
		OrderBy("priority_score DESC NULLS LAST", "discovered_date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

// RecentTop returns the highest-priority analyzed articles since the cutoff,
// used to backfill QA context.
func (s *ArticleStore) RecentTop(ctx context.Context, since time.Time, limit int) ([]domain.Article, error) {
	query, args, err := psql.Select(articleColumns).
		From("articles").
		Where(sq.And{
			sq.Eq{"analyzed": true},
			sq.GtOrEq{"discovered_date": since},
		}).
		OrderBy("priority_score DESC NULLS LAST", "relevance_score DESC NULLS LAST", "discovered_date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

// UnnotifiedAbovePriority returns analyzed, unalerted articles at or above
// the priority floor.
func (s *ArticleStore) UnnotifiedAbovePriority(ctx context.Context, minPriority, limit int) ([]domain.Article, error) {
	query, args, err := psql.Select(articleColumns).
		From("articles").
		Where(sq.And{
			sq.Eq{"analyzed": true},
			sq.Eq{"notified": false},
			sq.GtOrEq{"priority_score": minPriority},
		}).
		OrderBy("priority_score DESC", "discovered_date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

// MarkNotified flips the notified flag on the given articles.
func (s *ArticleStore) MarkNotified(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE articles SET notified = TRUE WHERE id = ANY($1)`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

func (s *ArticleStore) queryArticles(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var (
		a         domain.Article
		summary   sql.NullString
		published sql.NullTime
		eventDate sql.NullTime
		relevance sql.NullInt64
		priority  sql.NullInt64
		category  sql.NullString
		county    sql.NullString
		keyPoints pq.StringArray
	)
	err := rows.Scan(&a.ID, &a.Title, &a.URL, &summary, &a.Content, &a.Source,
		&published, &a.DiscoveredAt, &eventDate, &relevance, &priority,
		&category, &county, &keyPoints, &a.Analyzed, &a.Notified)
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}

	a.Summary = summary.String
	if published.Valid {
		t := published.Time
		a.PublishedAt = &t
	}
	if eventDate.Valid {
		t := eventDate.Time
		a.EventDate = &t
	}
	a.Relevance = int(relevance.Int64)
	a.Priority = int(priority.Int64)
	a.Category = domain.Category(category.String)
	a.County = domain.County(county.String)
	a.KeyPoints = keyPoints
	return a, nil
}
