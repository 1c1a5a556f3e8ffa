package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/infrastructure/legistar"
	"HarborMonitor/internal/ports"
)

// MatterFeed is the slice of the legislative-records API the tracker needs.
type MatterFeed interface {
	Matter(ctx context.Context, matterID int) (legistar.Matter, error)
	Histories(ctx context.Context, matterID int) ([]legistar.History, error)
	Attachments(ctx context.Context, matterID int) ([]legistar.Attachment, error)
	Votes(ctx context.Context, eventItemID int) ([]legistar.Vote, error)
}

// TrackCounts summarizes one tracking pass.
type TrackCounts struct {
	Matters       int
	StatusChanges int
	Histories     int
	Attachments   int
	Votes         int
	Analyses      int
}

// TrackMatters polls every active watched matter for status changes, new
// history actions, new attachments, and recorded votes. A matter whose
// status did not move is left completely untouched in storage, so its
// updated timestamp keeps reflecting the last real transition.
type TrackMatters struct {
	store    ports.MatterStore
	feed     MatterFeed
	fetcher  ports.ContentFetcher
	analyzer ports.AmendmentAnalyzer // nil when the LLM is disabled
	logger   *slog.Logger
}

// NewTrackMatters constructs the watchlist tracker.
func NewTrackMatters(store ports.MatterStore, feed MatterFeed,
	fetcher ports.ContentFetcher, analyzer ports.AmendmentAnalyzer,
	logger *slog.Logger) *TrackMatters {
	return &TrackMatters{
		store:    store,
		feed:     feed,
		fetcher:  fetcher,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Run executes one tracking pass over the active watchlist. A failure on one
// matter is logged and the pass continues with the rest.
func (t *TrackMatters) Run(ctx context.Context) (TrackCounts, error) {
	matters, err := t.store.Active(ctx)
	if err != nil {
		return TrackCounts{}, fmt.Errorf("load watchlist: %w", err)
	}

	var counts TrackCounts
	for _, matter := range matters {
		if ctx.Err() != nil {
			return counts, ctx.Err()
		}
		counts.Matters++
		if err := t.trackOne(ctx, matter, &counts); err != nil {
			t.logger.Error("matter tracking failed", "matter_id", matter.MatterID, "err", err)
		}
	}

	t.logger.Info("watchlist tracked",
		"matters", counts.Matters,
		"status_changes", counts.StatusChanges,
		"histories", counts.Histories,
		"attachments", counts.Attachments,
		"votes", counts.Votes)
	return counts, nil
}

func (t *TrackMatters) trackOne(ctx context.Context, watched domain.WatchedMatter, counts *TrackCounts) error {
	current, err := t.feed.Matter(ctx, watched.MatterID)
	if err != nil {
		return fmt.Errorf("fetch matter: %w", err)
	}

	histories, err := t.feed.Histories(ctx, watched.MatterID)
	if err != nil {
		return fmt.Errorf("fetch histories: %w", err)
	}

	lastAction := watched.LastActionAt
	for _, h := range histories {
		actionAt := legistar.ParseDate(h.ActionDate)
		record := domain.MatterHistory{
			MatterID:     watched.MatterID,
			ExternalID:   h.HistoryID,
			ActionAt:     actionAt,
			ActionText:   h.ActionText,
			ActionBody:   h.ActionBody,
			Result:       h.Result,
			VoteInfo:     h.VoteInfo,
			Milestone:    domain.IsMilestoneAction(h.ActionText),
			DiscoveredAt: time.Now().UTC(),
		}
		fresh, err := t.store.InsertHistoryIfNew(ctx, record)
		if err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		if !fresh {
			continue
		}
		counts.Histories++
		if record.Milestone {
			t.logger.Info("milestone action",
				"matter_id", watched.MatterID,
				"file", watched.File,
				"action", h.ActionText)
		}
		if actionAt != nil && (lastAction == nil || actionAt.After(*lastAction)) {
			lastAction = actionAt
		}
		if h.EventItemID > 0 {
			n, err := t.recordVotes(ctx, watched.MatterID, h.EventItemID)
			if err != nil {
				return err
			}
			counts.Votes += n
		}
	}

	if statusChanged(watched, current, lastAction) {
		if err := t.store.UpdateStatus(ctx, watched.MatterID, current.StatusName, lastAction); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		counts.StatusChanges++
		t.logger.Info("matter status changed",
			"matter_id", watched.MatterID,
			"file", watched.File,
			"from", watched.Status,
			"to", current.StatusName)
	}

	n, analyses, err := t.syncAttachments(ctx, watched)
	counts.Attachments += n
	counts.Analyses += analyses
	return err
}

func statusChanged(watched domain.WatchedMatter, current legistar.Matter, lastAction *time.Time) bool {
	if current.StatusName != "" && current.StatusName != watched.Status {
		return true
	}
	if lastAction == nil {
		return false
	}
	return watched.LastActionAt == nil || lastAction.After(*watched.LastActionAt)
}

func (t *TrackMatters) recordVotes(ctx context.Context, matterID, eventItemID int) (int, error) {
	votes, err := t.feed.Votes(ctx, eventItemID)
	if err != nil {
		// Vote records trail the history feed; missing ones surface next pass.
		t.logger.Warn("vote fetch failed", "matter_id", matterID, "event_item", eventItemID, "err", err)
		return 0, nil
	}
	if len(votes) == 0 {
		return 0, nil
	}

	first := votes[0]
	record := domain.MatterVote{
		MatterID:     matterID,
		ExternalID:   eventItemID,
		VoteAt:       legistar.ParseDate(first.Date),
		BodyName:     first.BodyName,
		Result:       first.Result,
		Tally:        first.Tally,
		RollCall:     rollCall(votes),
		DiscoveredAt: time.Now().UTC(),
	}
	fresh, err := t.store.InsertVoteIfNew(ctx, record)
	if err != nil {
		return 0, fmt.Errorf("insert vote: %w", err)
	}
	if !fresh {
		return 0, nil
	}
	return 1, nil
}

func rollCall(votes []legistar.Vote) string {
	lines := make([]string, 0, len(votes))
	for _, v := range votes {
		if v.PersonName == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", v.PersonName, v.ValueName))
	}
	return strings.Join(lines, "\n")
}

func (t *TrackMatters) syncAttachments(ctx context.Context, watched domain.WatchedMatter) (int, int, error) {
	attachments, err := t.feed.Attachments(ctx, watched.MatterID)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch attachments: %w", err)
	}

	inserted, analyses := 0, 0
	for _, att := range attachments {
		text := ""
		if att.Hyperlink != "" && !strings.HasSuffix(strings.ToLower(att.Hyperlink), ".pdf") {
			text = t.fetcher.FetchText(ctx, att.Hyperlink)
		}

		record := domain.MatterAttachment{
			MatterID:     watched.MatterID,
			ExternalID:   att.AttachmentID,
			Name:         att.Name,
			Hyperlink:    att.Hyperlink,
			FileType:     fileType(att.FileName),
			ContentText:  text,
			DiscoveredAt: time.Now().UTC(),
		}
		fresh, err := t.store.InsertAttachmentIfNew(ctx, record)
		if err != nil {
			return inserted, analyses, fmt.Errorf("insert attachment: %w", err)
		}
		if !fresh {
			continue
		}
		inserted++
		t.logger.Info("new attachment",
			"matter_id", watched.MatterID,
			"attachment", att.Name)

		if t.analyzer == nil || text == "" {
			continue
		}
		done, err := t.analyzeAttachment(ctx, watched, att, text)
		if err != nil {
			t.logger.Warn("attachment analysis failed",
				"matter_id", watched.MatterID, "attachment", att.Name, "err", err)
			continue
		}
		if done {
			analyses++
		}
	}
	return inserted, analyses, nil
}

// analyzeAttachment runs the amendment analyzer and persists the result.
// A stub judgment (the analyzer could not produce a real read) is dropped so
// it never overwrites matter analysis fields.
func (t *TrackMatters) analyzeAttachment(ctx context.Context, watched domain.WatchedMatter,
	att legistar.Attachment, text string) (bool, error) {
	judgment, err := t.analyzer.AnalyzeAmendment(ctx, watched.Title, att.Name, text)
	if err != nil {
		return false, err
	}
	if !judgment.Analyzed {
		return false, nil
	}

	analysis := formatAmendment(judgment)
	if err := t.store.MarkAttachmentAnalyzed(ctx, att.AttachmentID, judgment.Summary, analysis); err != nil {
		return false, err
	}
	if err := t.store.SaveAmendmentAnalysis(ctx, watched.MatterID, judgment); err != nil {
		return false, err
	}
	return true, nil
}

func formatAmendment(j domain.AmendmentJudgment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Approval path: %s\n", j.ApprovalPath)
	fmt.Fprintf(&b, "Qualified definition: %s\n", j.QualifiedDefinition)
	fmt.Fprintf(&b, "Power provisions: %s\n", j.PowerProvisions)
	fmt.Fprintf(&b, "Infrastructure triggers: %s\n", j.InfrastructureTriggers)
	fmt.Fprintf(&b, "Compatibility standards: %s\n", j.CompatibilityStandards)
	fmt.Fprintf(&b, "Risks: approval=%s power=%s infrastructure=%s compatibility=%s\n",
		j.Risks.ApprovalPath, j.Risks.Power, j.Risks.Infrastructure, j.Risks.Compatibility)
	if len(j.TalkingPoints) > 0 {
		b.WriteString("Talking points:\n")
		for _, p := range j.TalkingPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}

func fileType(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 && i < len(fileName)-1 {
		return strings.ToLower(fileName[i+1:])
	}
	return ""
}
