package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/infrastructure/legistar"
	"HarborMonitor/internal/keyword"
	"HarborMonitor/internal/ports"
)

// Legistar pulls meetings, agenda items, and legislation from the county
// records API. It also auto-detects matters worth tracking and registers
// them on the watchlist.
type Legistar struct {
	cfg       config.LegistarConfig
	client    *legistar.Client
	filter    *keyword.Filter
	autoWatch []string
	fetcher   ports.ContentFetcher
	store     ports.ArticleStore
	matters   ports.MatterStore
	logger    *slog.Logger
}

var _ ports.Source = (*Legistar)(nil)

// NewLegistar wires the records-API adapter.
func NewLegistar(cfg config.LegistarConfig, client *legistar.Client, filter *keyword.Filter,
	autoWatch []string, fetcher ports.ContentFetcher, store ports.ArticleStore,
	matters ports.MatterStore, logger *slog.Logger) *Legistar {

	return &Legistar{
		cfg:       cfg,
		client:    client,
		filter:    filter,
		autoWatch: autoWatch,
		fetcher:   fetcher,
		store:     store,
		matters:   matters,
		logger:    logger,
	}
}

// Name identifies the adapter in logs and pipeline summaries.
func (l *Legistar) Name() string { return "legistar" }

// Discover scans recent meetings (with agenda items for relevant bodies) and
// recently modified legislation. Endpoint failures are contained so a broken
// events feed never blocks the matters scan.
func (l *Legistar) Discover(ctx context.Context) (int, error) {
	ing := newIngestor(l.store)
	var added int

	n, err := l.scanEvents(ctx, ing)
	if err != nil {
		l.logger.Error("events scan failed", "error", err)
	}
	added += n

	n, err = l.scanMatters(ctx, ing)
	if err != nil {
		l.logger.Error("matters scan failed", "error", err)
	}
	added += n

	return added, nil
}

func (l *Legistar) scanEvents(ctx context.Context, ing *ingestor) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -l.cfg.EventLookbackDays)
	events, err := l.client.RecentEvents(ctx, cutoff, l.cfg.PageSize)
	if err != nil {
		return 0, err
	}
	l.logger.Debug("fetched events", "count", len(events))

	var added int
	for _, event := range events {
		n, err := l.processEvent(ctx, ing, event)
		if err != nil {
			l.logger.Error("event failed", "event_id", event.EventID, "error", err)
			continue
		}
		added += n
	}
	return added, nil
}

func (l *Legistar) processEvent(ctx context.Context, ing *ingestor, event legistar.Event) (int, error) {
	eventText := event.BodyName + " " + event.Comment
	eventHit := l.filter.Passes(eventText, "", l.cfg.Source)
	eventDate := legistar.DateOnly(event.Date)

	var added int

	// Agenda items are only fetched for relevant bodies to bound API calls.
	if eventHit || l.bodyIsRelevant(event.BodyName) {
		items, err := l.client.EventItems(ctx, event.EventID)
		if err != nil {
			l.logger.Warn("agenda items unavailable", "event_id", event.EventID, "error", err)
			items = nil
		}

		for _, item := range items {
			if !l.filter.Passes(item.Title, item.MatterName, l.cfg.Source) {
				continue
			}

			itemURL := l.agendaItemURL(event, item)
			title := fmt.Sprintf("[%s - %s] %s", event.BodyName, eventDate, firstNonEmpty(item.Title, item.MatterName))
			content := fmt.Sprintf("Meeting: %s\nDate: %s\nAgenda Item: %s\nMatter: %s",
				event.BodyName, eventDate, item.Title, item.MatterName)
			if item.MatterID != 0 {
				if detail := l.fetcher.FetchText(ctx, itemURL); detail != "" {
					content = content + "\n\n" + detail
				}
			}

			inserted, err := ing.add(ctx, domain.DiscoveredItem{
				Title:  title,
				URL:    itemURL,
				Source: l.cfg.Source,
			}, content)
			if err != nil {
				l.logger.Error("agenda item failed", "event_id", event.EventID, "error", err)
				continue
			}
			if inserted {
				added++
				logNew(l.logger, "agenda item", title)
			}
		}
	}

	// Store the meeting itself when it matches keywords.
	if eventHit && event.InSiteURL != "" {
		title := fmt.Sprintf("[Meeting] %s - %s", event.BodyName, eventDate)
		if event.Comment != "" {
			title = fmt.Sprintf("%s: %s", title, truncate(event.Comment, 200))
		}
		content := fmt.Sprintf("Meeting: %s\nDate: %s\nComment: %s", event.BodyName, eventDate, event.Comment)
		if event.AgendaFile != "" {
			content += "\nAgenda: " + event.AgendaFile
		}

		inserted, err := ing.add(ctx, domain.DiscoveredItem{
			Title:  title,
			URL:    event.InSiteURL,
			Source: l.cfg.Source,
		}, content)
		if err != nil {
			return added, err
		}
		if inserted {
			added++
			logNew(l.logger, "meeting", title)
		}
	}

	return added, nil
}

func (l *Legistar) scanMatters(ctx context.Context, ing *ingestor) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -l.cfg.MatterLookbackDays)
	matters, err := l.client.RecentMatters(ctx, cutoff, l.cfg.PageSize)
	if err != nil {
		return 0, err
	}
	l.logger.Debug("fetched matters", "count", len(matters))

	var added int
	for _, matter := range matters {
		matterText := matter.Title + " " + matter.Name + " " + matter.File
		l.autoDetectWatch(ctx, matter, matterText)

		if !l.filter.Passes(matterText, "", l.cfg.Source) {
			continue
		}

		matterURL := l.client.MatterDetailURL(matter.MatterID)
		title := fmt.Sprintf("[%s] %s: %s", matter.TypeName, matter.File,
			firstNonEmpty(matter.Name, truncate(matter.Title, 200)))
		content := fmt.Sprintf("Type: %s\nFile: %s\nBody: %s\nStatus: %s\nTitle: %s",
			matter.TypeName, matter.File, matter.BodyName, matter.StatusName, matter.Title)
		if detail := l.fetcher.FetchText(ctx, matterURL); detail != "" {
			content = content + "\n\n" + detail
		}

		inserted, err := ing.add(ctx, domain.DiscoveredItem{
			Title:  title,
			URL:    matterURL,
			Source: l.cfg.Source,
		}, content)
		if err != nil {
			l.logger.Error("matter failed", "matter_id", matter.MatterID, "error", err)
			continue
		}
		if inserted {
			added++
			logNew(l.logger, "legislation", title)
		}
	}
	return added, nil
}

// autoDetectWatch registers a matter on the watchlist when it matches the
// dedicated auto-detect vocabulary and is not already tracked.
func (l *Legistar) autoDetectWatch(ctx context.Context, matter legistar.Matter, matterText string) {
	if l.matters == nil || !keyword.MatchAny(matterText, l.autoWatch) {
		return
	}

	exists, err := l.matters.Exists(ctx, matter.MatterID)
	if err != nil {
		l.logger.Error("watchlist lookup failed", "matter_id", matter.MatterID, "error", err)
		return
	}
	if exists {
		return
	}

	now := time.Now()
	inserted, err := l.matters.Insert(ctx, domain.WatchedMatter{
		MatterID:     matter.MatterID,
		File:         matter.File,
		Type:         matter.TypeName,
		Title:        firstNonEmpty(matter.Name, matter.Title),
		BodyName:     matter.BodyName,
		Status:       matter.StatusName,
		RecordURL:    l.client.MatterDetailURL(matter.MatterID),
		WatchReason:  "Auto-detected: matches watchlist keywords",
		AutoDetected: true,
		Active:       true,
		Priority:     "high",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		l.logger.Error("watchlist insert failed", "matter_id", matter.MatterID, "error", err)
		return
	}
	if inserted {
		l.logger.Info("auto-detected watched matter", "matter_id", matter.MatterID, "file", matter.File)
	}
}

func (l *Legistar) bodyIsRelevant(bodyName string) bool {
	lower := strings.ToLower(bodyName)
	for _, term := range l.cfg.BodyTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// agendaItemURL builds the canonical detail URL for an agenda item,
// preferring the legislation page when the item references a matter.
func (l *Legistar) agendaItemURL(event legistar.Event, item legistar.EventItem) string {
	if item.MatterID != 0 {
		return l.client.MatterDetailURL(item.MatterID)
	}
	if event.InSiteURL != "" {
		return fmt.Sprintf("%s#item-%d", event.InSiteURL, item.EventItemID)
	}
	return fmt.Sprintf("%s/events/%d#item-%d", l.cfg.BaseURL, event.EventID, item.EventItemID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
