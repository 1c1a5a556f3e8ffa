// Package legistar is a typed client for the Legistar web API, the paginated
// JSON service publishing county meetings, legislation, and vote records.
package legistar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"HarborMonitor/internal/config"
)

// Event is one scheduled meeting of a county body.
type Event struct {
	EventID    int    `json:"EventId"`
	BodyName   string `json:"EventBodyName"`
	Date       string `json:"EventDate"`
	Comment    string `json:"EventComment"`
	InSiteURL  string `json:"EventInSiteURL"`
	AgendaFile string `json:"EventAgendaFile"`
}

// EventItem is one agenda line within an event.
type EventItem struct {
	EventItemID int    `json:"EventItemId"`
	Title       string `json:"EventItemTitle"`
	MatterID    int    `json:"EventItemMatterId"`
	MatterName  string `json:"EventItemMatterName"`
}

// Matter is one piece of legislation.
type Matter struct {
	MatterID   int    `json:"MatterId"`
	File       string `json:"MatterFile"`
	Name       string `json:"MatterName"`
	Title      string `json:"MatterTitle"`
	TypeName   string `json:"MatterTypeName"`
	BodyName   string `json:"MatterBodyName"`
	StatusName string `json:"MatterStatusName"`
}

// History is one recorded action on a matter.
type History struct {
	HistoryID   int    `json:"MatterHistoryId"`
	EventItemID int    `json:"MatterHistoryEventItemId"`
	ActionDate  string `json:"MatterHistoryActionDate"`
	ActionText  string `json:"MatterHistoryActionText"`
	ActionBody  string `json:"MatterHistoryActionBodyName"`
	Result      string `json:"MatterHistoryPassedFlagName"`
	VoteInfo    string `json:"MatterHistoryEventItemConsent"`
}

// Attachment is one document attached to a matter.
type Attachment struct {
	AttachmentID int    `json:"MatterAttachmentId"`
	Name         string `json:"MatterAttachmentName"`
	Hyperlink    string `json:"MatterAttachmentHyperlink"`
	FileName     string `json:"MatterAttachmentFileName"`
}

// Vote is one roll-call entry on an event item touching a matter.
type Vote struct {
	VoteID     int    `json:"EventItemVoteId"`
	Date       string `json:"EventItemActionDate"`
	BodyName   string `json:"EventItemBodyName"`
	Result     string `json:"EventItemPassedFlagName"`
	Tally      string `json:"EventItemTally"`
	PersonName string `json:"VotePersonName"`
	ValueName  string `json:"VoteValueName"`
}

// Client speaks the Legistar OData-style query dialect ($top/$filter/$orderby).
type Client struct {
	baseURL    string
	webBaseURL string
	http       *http.Client
}

// New builds a client against the configured county endpoint.
func New(cfg config.LegistarConfig, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		webBaseURL: cfg.WebBaseURL,
		http:       client,
	}
}

// RecentEvents returns meetings dated on or after the cutoff, newest first.
func (c *Client) RecentEvents(ctx context.Context, cutoff time.Time, pageSize int) ([]Event, error) {
	params := url.Values{}
	params.Set("$top", strconv.Itoa(pageSize))
	params.Set("$orderby", "EventDate desc")
	params.Set("$filter", fmt.Sprintf("EventDate ge datetime'%s'", cutoff.Format("2006-01-02")))

	var events []Event
	if err := c.get(ctx, "/events", params, &events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	return events, nil
}

// EventItems returns the agenda items for one meeting.
func (c *Client) EventItems(ctx context.Context, eventID int) ([]EventItem, error) {
	var items []EventItem
	if err := c.get(ctx, fmt.Sprintf("/events/%d/eventitems", eventID), nil, &items); err != nil {
		return nil, fmt.Errorf("fetch event items: %w", err)
	}
	return items, nil
}

// RecentMatters returns legislation modified on or after the cutoff.
func (c *Client) RecentMatters(ctx context.Context, cutoff time.Time, pageSize int) ([]Matter, error) {
	params := url.Values{}
	params.Set("$top", strconv.Itoa(pageSize))
	params.Set("$orderby", "MatterLastModifiedUtc desc")
	params.Set("$filter", fmt.Sprintf("MatterLastModifiedUtc ge datetime'%sT00:00:00'", cutoff.Format("2006-01-02")))

	var matters []Matter
	if err := c.get(ctx, "/matters", params, &matters); err != nil {
		return nil, fmt.Errorf("fetch matters: %w", err)
	}
	return matters, nil
}

// Matter returns one legislation record by ID.
func (c *Client) Matter(ctx context.Context, matterID int) (Matter, error) {
	var matter Matter
	if err := c.get(ctx, fmt.Sprintf("/matters/%d", matterID), nil, &matter); err != nil {
		return Matter{}, fmt.Errorf("fetch matter %d: %w", matterID, err)
	}
	return matter, nil
}

// Histories returns the action history of a matter.
func (c *Client) Histories(ctx context.Context, matterID int) ([]History, error) {
	var histories []History
	if err := c.get(ctx, fmt.Sprintf("/matters/%d/histories", matterID), nil, &histories); err != nil {
		return nil, fmt.Errorf("fetch histories for matter %d: %w", matterID, err)
	}
	return histories, nil
}

// Attachments returns the documents attached to a matter.
func (c *Client) Attachments(ctx context.Context, matterID int) ([]Attachment, error) {
	var attachments []Attachment
	if err := c.get(ctx, fmt.Sprintf("/matters/%d/attachments", matterID), nil, &attachments); err != nil {
		return nil, fmt.Errorf("fetch attachments for matter %d: %w", matterID, err)
	}
	return attachments, nil
}

// Votes returns the roll-call records for an event item.
func (c *Client) Votes(ctx context.Context, eventItemID int) ([]Vote, error) {
	var votes []Vote
	if err := c.get(ctx, fmt.Sprintf("/eventitems/%d/votes", eventItemID), nil, &votes); err != nil {
		return nil, fmt.Errorf("fetch votes for item %d: %w", eventItemID, err)
	}
	return votes, nil
}

// MatterDetailURL is the canonical public page for one matter.
func (c *Client) MatterDetailURL(matterID int) string {
	return fmt.Sprintf("%s/LegislationDetail.aspx?ID=%d", c.webBaseURL, matterID)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("legistar returned %s for %s", resp.Status, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ParseDate interprets the API's local timestamp format ("2006-01-02T15:04:05").
func ParseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// DateOnly returns the leading yyyy-mm-dd portion of an API timestamp.
func DateOnly(raw string) string {
	if len(raw) >= 10 {
		return raw[:10]
	}
	return raw
}
