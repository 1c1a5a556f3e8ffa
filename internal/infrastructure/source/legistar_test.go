package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/infrastructure/legistar"
	"HarborMonitor/internal/logging"
)

func legistarServer(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Now().Format("2006-01-02") + "T10:00:00"
	mux := http.NewServeMux()

	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"EventId":        101,
				"EventBodyName":  "County Council",
				"EventDate":      now,
				"EventComment":   "",
				"EventInSiteURL": "http://records.example.com/meetings/101",
			},
		})
	})
	mux.HandleFunc("/events/101/eventitems", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"EventItemId":         7,
				"EventItemTitle":      "CR-98-2025 data center zoning review",
				"EventItemMatterId":   555,
				"EventItemMatterName": "Data center zoning text amendment",
			},
			{
				"EventItemId":    8,
				"EventItemTitle": "Approval of prior minutes",
			},
		})
	})
	mux.HandleFunc("/matters", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"MatterId":         555,
				"MatterFile":       "CR-98-2025",
				"MatterName":       "Data center zoning text amendment",
				"MatterTitle":      "A resolution amending the AR zone",
				"MatterTypeName":   "Resolution",
				"MatterBodyName":   "County Council",
				"MatterStatusName": "In Committee",
			},
			{
				"MatterId":         556,
				"MatterFile":       "CB-12-2026",
				"MatterName":       "Sidewalk repair appropriation",
				"MatterTitle":      "Appropriation for sidewalk repairs",
				"MatterTypeName":   "Bill",
				"MatterBodyName":   "County Council",
				"MatterStatusName": "Introduced",
			},
		})
	})

	return httptest.NewServer(mux)
}

func TestLegistarDiscoverStoresAgendaItemsAndMatters(t *testing.T) {
	t.Parallel()

	server := legistarServer(t)
	defer server.Close()

	cfg := config.LegistarConfig{
		BaseURL:            server.URL,
		WebBaseURL:         "http://records.example.com",
		Source:             "PG County Legistar",
		PageSize:           200,
		EventLookbackDays:  30,
		MatterLookbackDays: 60,
		BodyTerms:          []string{"council", "planning", "zoning"},
	}
	client := legistar.New(cfg, server.Client())

	store := newMemArticleStore()
	matters := newMemMatterStore()
	src := NewLegistar(cfg, client, testFilter(), []string{"data center"},
		stubFetcher{}, store, matters, logging.New("error"))

	added, err := src.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	// The agenda item and the matter resolve to the same detail URL, so only
	// one article lands.
	if added != 1 {
		t.Fatalf("expected 1 new item, got %d", added)
	}

	item, ok := store.byURL("http://records.example.com/LegislationDetail.aspx?ID=555")
	if !ok {
		t.Fatal("expected the agenda item stored under the matter detail URL")
	}
	if item.Source != "PG County Legistar" {
		t.Fatalf("unexpected source: %q", item.Source)
	}

	if _, ok := store.byURL("http://records.example.com/meetings/101"); ok {
		t.Fatal("meeting without keyword hit must not be stored")
	}
}

func TestLegistarAutoDetectsWatchedMatter(t *testing.T) {
	t.Parallel()

	server := legistarServer(t)
	defer server.Close()

	cfg := config.LegistarConfig{
		BaseURL:            server.URL,
		WebBaseURL:         "http://records.example.com",
		Source:             "PG County Legistar",
		PageSize:           200,
		EventLookbackDays:  30,
		MatterLookbackDays: 60,
	}
	client := legistar.New(cfg, server.Client())

	store := newMemArticleStore()
	matters := newMemMatterStore()
	src := NewLegistar(cfg, client, testFilter(), []string{"data center"},
		stubFetcher{}, store, matters, logging.New("error"))

	if _, err := src.Discover(context.Background()); err != nil {
		t.Fatalf("Discover error: %v", err)
	}

	watched, ok := matters.matters[555]
	if !ok {
		t.Fatal("expected matter 555 on the watchlist")
	}
	if !watched.AutoDetected || !watched.Active {
		t.Fatal("auto-detected matter must be active and flagged")
	}
	if watched.Priority != "high" {
		t.Fatalf("unexpected priority: %q", watched.Priority)
	}
	if _, ok := matters.matters[556]; ok {
		t.Fatal("sidewalk matter must not be auto-watched")
	}

	// A second pass must not duplicate the watch entry.
	before := len(matters.matters)
	if _, err := src.Discover(context.Background()); err != nil {
		t.Fatalf("second Discover error: %v", err)
	}
	if len(matters.matters) != before {
		t.Fatal("second pass must not add watchlist entries")
	}
}
