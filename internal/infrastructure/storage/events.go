package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

const eventColumns = `id, title, event_type, start_time, end_time, location,
description, county, source_url, article_id, is_recurring, is_cancelled, created_date`

// EventStore persists calendar events in the events table.
type EventStore struct {
	db *sql.DB
}

var _ ports.EventStore = (*EventStore)(nil)

// NewEventStore wires a sql.DB implementation.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// Insert stores the event and returns its id.
func (s *EventStore) Insert(ctx context.Context, e domain.Event) (int64, error) {
	query, args, err := psql.Insert("events").
		Columns("title", "event_type", "start_time", "end_time", "location",
			"description", "county", "source_url", "article_id",
			"is_recurring", "is_cancelled", "created_date").
		Values(e.Title, string(e.Type), e.Start, e.End, e.Location,
			e.Description, string(e.County), e.SourceURL, e.ArticleID,
			e.Recurring, e.Cancelled, e.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// CountForArticle reports how many events were already derived from an
// article; a nonzero count means extraction already ran.
func (s *EventStore) CountForArticle(ctx context.Context, articleID int64) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("events").
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// Upcoming returns non-cancelled events starting within the window, soonest
// first.
func (s *EventStore) Upcoming(ctx context.Context, from, until time.Time, limit int) ([]domain.Event, error) {
	query, args, err := psql.Select(eventColumns).
		From("events").
		Where(sq.And{
			sq.GtOrEq{"start_time": from},
			sq.LtOrEq{"start_time": until},
			sq.Eq{"is_cancelled": false},
		}).
		OrderBy("start_time ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e         domain.Event
			eventType sql.NullString
			end       sql.NullTime
			location  sql.NullString
			desc      sql.NullString
			county    sql.NullString
			sourceURL sql.NullString
		)
		err := rows.Scan(&e.ID, &e.Title, &eventType, &e.Start, &end, &location,
			&desc, &county, &sourceURL, &e.ArticleID, &e.Recurring, &e.Cancelled,
			&e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = domain.EventType(eventType.String)
		if end.Valid {
			t := end.Time
			e.End = &t
		}
		e.Location = location.String
		e.Description = desc.String
		e.County = domain.County(county.String)
		e.SourceURL = sourceURL.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return events, nil
}
