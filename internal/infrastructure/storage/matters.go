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

const matterColumns = `id, matter_id, matter_file, matter_type, title, body_name,
current_status, last_action_date, matter_url, watch_reason, auto_detected,
is_active, priority, approval_path, qualified_definition, power_provisions,
infrastructure_triggers, compatibility_standards, created_date, updated_date`

// MatterStore persists watched matters and their history, attachment and
// vote child records.
type MatterStore struct {
	db *sql.DB
}

var _ ports.MatterStore = (*MatterStore)(nil)

// NewMatterStore wires a sql.DB implementation.
func NewMatterStore(db *sql.DB) *MatterStore {
	return &MatterStore{db: db}
}

// Active returns all matters still being tracked.
func (s *MatterStore) Active(ctx context.Context) ([]domain.WatchedMatter, error) {
	query, args, err := psql.Select(matterColumns).
		From("watched_matters").
		Where(sq.Eq{"is_active": true}).
		OrderBy("matter_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matters: %w", err)
	}
	defer rows.Close()

	var matters []domain.WatchedMatter
	for rows.Next() {
		m, err := scanMatter(rows)
		if err != nil {
			return nil, err
		}
		matters = append(matters, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return matters, nil
}

// Exists reports whether the external matter ID is already tracked,
// active or not.
func (s *MatterStore) Exists(ctx context.Context, matterID int) (bool, error) {
	query, args, err := psql.Select("1").
		From("watched_matters").
		Where(sq.Eq{"matter_id": matterID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check matter %d: %w", matterID, err)
	}
	return true, nil
}

// Insert adds a matter to the watchlist unless its external ID is already
// present.
func (s *MatterStore) Insert(ctx context.Context, m domain.WatchedMatter) (bool, error) {
	query, args, err := psql.Insert("watched_matters").
		Columns("matter_id", "matter_file", "matter_type", "title", "body_name",
			"current_status", "last_action_date", "matter_url", "watch_reason",
			"auto_detected", "is_active", "priority", "created_date", "updated_date").
		Values(m.MatterID, m.File, m.Type, m.Title, m.BodyName,
			m.Status, m.LastActionAt, m.RecordURL, m.WatchReason,
			m.AutoDetected, m.Active, m.Priority, m.CreatedAt, m.UpdatedAt).
		Suffix("ON CONFLICT (matter_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert matter %d: %w", m.MatterID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateStatus records a detected status transition and bumps updated_date.
// Callers must invoke it only on an actual change so an unchanged matter's
// timestamps stay untouched.
func (s *MatterStore) UpdateStatus(ctx context.Context, matterID int, status string, lastAction *time.Time) error {
	query, args, err := psql.Update("watched_matters").
		Set("current_status", status).
		Set("last_action_date", lastAction).
		Set("updated_date", sq.Expr("NOW()")).
		Where(sq.Eq{"matter_id": matterID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update status %d: %w", matterID, err)
	}
	return nil
}

// SaveAmendmentAnalysis stores the structured legal read of a matter's
// amendment text.
func (s *MatterStore) SaveAmendmentAnalysis(ctx context.Context, matterID int, j domain.AmendmentJudgment) error {
	query, args, err := psql.Update("watched_matters").
		Set("approval_path", j.ApprovalPath).
		Set("qualified_definition", j.QualifiedDefinition).
		Set("power_provisions", j.PowerProvisions).
		Set("infrastructure_triggers", j.InfrastructureTriggers).
		Set("compatibility_standards", j.CompatibilityStandards).
		Set("updated_date", sq.Expr("NOW()")).
		Where(sq.Eq{"matter_id": matterID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save amendment analysis %d: %w", matterID, err)
	}
	return nil
}

// InsertHistoryIfNew stores a matter history row, deduping on the external
// record ID.
func (s *MatterStore) InsertHistoryIfNew(ctx context.Context, h domain.MatterHistory) (bool, error) {
	query, args, err := psql.Insert("matter_histories").
		Columns("matter_id", "legistar_history_id", "action_date", "action_text",
			"action_body", "result", "vote_info", "is_milestone", "discovered_date").
		Values(h.MatterID, h.ExternalID, h.ActionAt, h.ActionText,
			h.ActionBody, h.Result, h.VoteInfo, h.Milestone, h.DiscoveredAt).
		Suffix("ON CONFLICT (legistar_history_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}
	return s.execIfNew(ctx, query, args, "history", h.ExternalID)
}

// InsertAttachmentIfNew stores an attachment row, deduping on the external
// record ID.
func (s *MatterStore) InsertAttachmentIfNew(ctx context.Context, a domain.MatterAttachment) (bool, error) {
	query, args, err := psql.Insert("matter_attachments").
		Columns("matter_id", "legistar_attachment_id", "name", "hyperlink",
			"file_type", "content_text", "ai_summary", "ai_analysis",
			"analyzed", "discovered_date").
		Values(a.MatterID, a.ExternalID, a.Name, a.Hyperlink,
			a.FileType, a.ContentText, a.Summary, a.Analysis,
			a.Analyzed, a.DiscoveredAt).
		Suffix("ON CONFLICT (legistar_attachment_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}
	return s.execIfNew(ctx, query, args, "attachment", a.ExternalID)
}

// MarkAttachmentAnalyzed stores the analyzer output against the attachment.
func (s *MatterStore) MarkAttachmentAnalyzed(ctx context.Context, externalID int, summary, analysis string) error {
	query, args, err := psql.Update("matter_attachments").
		Set("ai_summary", summary).
		Set("ai_analysis", analysis).
		Set("analyzed", true).
		Where(sq.Eq{"legistar_attachment_id": externalID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark attachment analyzed %d: %w", externalID, err)
	}
	return nil
}

// InsertVoteIfNew stores a roll-call vote row, deduping on the external
// record ID.
func (s *MatterStore) InsertVoteIfNew(ctx context.Context, v domain.MatterVote) (bool, error) {
	query, args, err := psql.Insert("matter_votes").
		Columns("matter_id", "legistar_vote_id", "vote_date", "body_name",
			"result", "tally", "roll_call", "discovered_date").
		Values(v.MatterID, v.ExternalID, v.VoteAt, v.BodyName,
			v.Result, v.Tally, v.RollCall, v.DiscoveredAt).
		Suffix("ON CONFLICT (legistar_vote_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}
	return s.execIfNew(ctx, query, args, "vote", v.ExternalID)
}

func (s *MatterStore) execIfNew(ctx context.Context, query string, args []any, kind string, externalID int) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert %s %d: %w", kind, externalID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanMatter(rows *sql.Rows) (domain.WatchedMatter, error) {
	var (
		m          domain.WatchedMatter
		lastAction sql.NullTime

		file, mtype, title, body, status sql.NullString
		url, reason, priority            sql.NullString
		approval, qualified, power       sql.NullString
		infraTriggers, compatibility     sql.NullString
	)

	err := rows.Scan(&m.ID, &m.MatterID, &file, &mtype, &title, &body,
		&status, &lastAction, &url, &reason, &m.AutoDetected, &m.Active,
		&priority, &approval, &qualified, &power, &infraTriggers,
		&compatibility, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.WatchedMatter{}, fmt.Errorf("scan matter: %w", err)
	}

	m.File = file.String
	m.Type = mtype.String
	m.Title = title.String
	m.BodyName = body.String
	m.Status = status.String
	m.RecordURL = url.String
	m.WatchReason = reason.String
	m.Priority = priority.String
	m.ApprovalPath = approval.String
	m.QualifiedDefinition = qualified.String
	m.PowerProvisions = power.String
	m.InfrastructureTriggers = infraTriggers.String
	m.CompatibilityStandards = compatibility.String
	if lastAction.Valid {
		t := lastAction.Time
		m.LastActionAt = &t
	}
	return m, nil
}
