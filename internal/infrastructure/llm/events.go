package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"HarborMonitor/internal/analysis"
	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

const eventSystemPrompt = "You extract calendar events from Maryland civic news. " +
	"Only extract events whose date or time is explicitly stated in the text. " +
	"Never invent or guess a date. Return JSON only."

// defaultMeetingDuration is assumed for meetings whose end time is not stated.
const defaultMeetingDuration = 2 * time.Hour

// EventExtractor asks the LLM for calendar events mentioned in an article.
// It is best-effort enrichment: every failure path returns an empty list so
// the classification pipeline is never blocked.
type EventExtractor struct {
	chat    ports.ChatClient
	policy  Policy
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.EventExtractor = (*EventExtractor)(nil)

// NewEventExtractor wires the extractor.
func NewEventExtractor(chat ports.ChatClient, cfg config.LLMConfig, logger *slog.Logger) *EventExtractor {
	return &EventExtractor{
		chat:    chat,
		policy:  DefaultPolicy(cfg.MaxAttempts, time.Duration(cfg.BackoffSec)*time.Second),
		timeout: time.Duration(cfg.EventTimeoutSec) * time.Second,
		logger:  logger,
	}
}

type eventPayload struct {
	Events []struct {
		Title       string `json:"title"`
		EventType   string `json:"event_type"`
		EventDate   string `json:"event_date"`
		EndDate     string `json:"end_date"`
		Location    string `json:"location"`
		Description string `json:"description"`
		County      string `json:"county"`
		IsRecurring bool   `json:"is_recurring"`
	} `json:"events"`
}

// ExtractEvents returns the calendar events explicitly dated in the text.
func (e *EventExtractor) ExtractEvents(ctx context.Context, title, content string) ([]domain.EventDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body := truncateStr(content, maxPromptContentChars)
	user := fmt.Sprintf(`Extract calendar events from this article.

Title: %s
Content: %s

Return JSON: {"events": [...]}. Each event has these exact keys:
- title: short event name
- event_type: one of [meeting, deadline, hearing, vote, protest, announcement]
- event_date: ISO 8601 start timestamp, required, only if explicitly stated in the text
- end_date: ISO 8601 end timestamp or "" when not stated
- location: venue or "" when not stated
- description: one sentence
- county: one of [prince_georges, charles, both, statewide, unclear]
- is_recurring: true only when the text describes a repeating pattern

If the article states no explicit date or time, return {"events": []}.`, title, body)

	raw, err := CallWithPolicy(ctx, e.policy, func(ctx context.Context) (string, error) {
		return e.chat.Complete(ctx, ports.ChatRequest{
			System:      eventSystemPrompt,
			User:        user,
			ForceJSON:   true,
			Temperature: 0.1,
			MaxTokens:   1024,
		})
	})
	if err != nil {
		e.logger.Warn("event extraction failed", "title", truncateStr(title, 60), "error", err)
		return []domain.EventDraft{}, nil
	}

	var payload eventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		e.logger.Warn("event extraction reply unparseable", "title", truncateStr(title, 60), "error", err)
		return []domain.EventDraft{}, nil
	}

	drafts := make([]domain.EventDraft, 0, len(payload.Events))
	for _, ev := range payload.Events {
		start, ok := parseEventTime(ev.EventDate)
		if !ok {
			continue
		}

		draft := domain.EventDraft{
			Title:       ev.Title,
			Type:        analysis.CoerceEventType(ev.EventType),
			Start:       start,
			Location:    ev.Location,
			Description: ev.Description,
			County:      analysis.CoerceCounty(ev.County),
			Recurring:   ev.IsRecurring,
		}
		if end, ok := parseEventTime(ev.EndDate); ok && end.After(start) {
			draft.End = &end
		} else if draft.Type == domain.EventMeeting || draft.Type == domain.EventHearing {
			end := start.Add(defaultMeetingDuration)
			draft.End = &end
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func parseEventTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
