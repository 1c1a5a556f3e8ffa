package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/keyword"
	"HarborMonitor/internal/logging"
)

func testFilter(broadSources ...string) *keyword.Filter {
	return keyword.New(config.KeywordConfig{
		GeoSpecific: []string{"eagle harbor", "CR-98-2025"},
		Geographic:  []string{"prince george", "maryland"},
		Contextual:  []string{"data center", "zoning", "planning board"},
	}, broadSources)
}

func feedXML(pubDate string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>Test Feed</title>
  <item>
    <title>Council debates data center zoning in Prince George's</title>
    <link>http://example.com/zoning-debate</link>
    <description>A contextual and geographic match.</description>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>Local bakery wins award</title>
    <link>http://example.com/bakery</link>
    <description>No policy signal at all.</description>
    <pubDate>%s</pubDate>
  </item>
</channel></rss>`, pubDate, pubDate)
}

func TestRSSDiscoverFiltersAndStores(t *testing.T) {
	t.Parallel()

	pub := time.Now().Add(-24 * time.Hour).Format(time.RFC1123Z)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML(pub)))
	}))
	defer server.Close()

	store := newMemArticleStore()
	feeds := []config.FeedConfig{{URL: server.URL, Source: "Test Feed"}}
	rss := NewRSS(feeds, testFilter(), stubFetcher{text: "full article text"},
		store, server.Client(), 30, logging.New("error"))

	added, err := rss.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 new item, got %d", added)
	}

	art, ok := store.byURL("http://example.com/zoning-debate")
	if !ok {
		t.Fatal("expected the zoning article to be stored")
	}
	if art.Content != "full article text" {
		t.Fatalf("unexpected content: %q", art.Content)
	}
	if art.Analyzed {
		t.Fatal("new article must start unanalyzed")
	}
	if _, ok := store.byURL("http://example.com/bakery"); ok {
		t.Fatal("irrelevant item must not be stored")
	}
}

func TestRSSDiscoverIdempotent(t *testing.T) {
	t.Parallel()

	pub := time.Now().Add(-24 * time.Hour).Format(time.RFC1123Z)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedXML(pub)))
	}))
	defer server.Close()

	store := newMemArticleStore()
	feeds := []config.FeedConfig{{URL: server.URL, Source: "Test Feed"}}
	rss := NewRSS(feeds, testFilter(), stubFetcher{}, store, server.Client(), 30, logging.New("error"))

	first, err := rss.Discover(context.Background())
	if err != nil {
		t.Fatalf("first Discover error: %v", err)
	}
	second, err := rss.Discover(context.Background())
	if err != nil {
		t.Fatalf("second Discover error: %v", err)
	}

	if first != 1 || second != 0 {
		t.Fatalf("expected 1 then 0 new items, got %d then %d", first, second)
	}
	if store.count() != 1 {
		t.Fatalf("expected 1 stored article, got %d", store.count())
	}
}

func TestRSSDiscoverSkipsStaleEntries(t *testing.T) {
	t.Parallel()

	stale := time.Now().AddDate(0, 0, -90).Format(time.RFC1123Z)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedXML(stale)))
	}))
	defer server.Close()

	store := newMemArticleStore()
	feeds := []config.FeedConfig{{URL: server.URL, Source: "Test Feed"}}
	rss := NewRSS(feeds, testFilter(), stubFetcher{}, store, server.Client(), 30, logging.New("error"))

	added, err := rss.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if added != 0 {
		t.Fatalf("expected stale entries to be skipped, got %d", added)
	}
}

func TestRSSBroadSourceNeedsGeography(t *testing.T) {
	t.Parallel()

	pub := time.Now().Add(-24 * time.Hour).Format(time.RFC1123Z)
	xml := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>National Feed</title>
  <item>
    <title>Data center boom strains grids nationwide</title>
    <link>http://example.com/national</link>
    <description>Contextual term only, no geography.</description>
    <pubDate>%s</pubDate>
  </item>
</channel></rss>`, pub)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(xml))
	}))
	defer server.Close()

	store := newMemArticleStore()
	feeds := []config.FeedConfig{{URL: server.URL, Source: "National Feed", Broad: true}}
	rss := NewRSS(feeds, testFilter("National Feed"), stubFetcher{}, store,
		server.Client(), 30, logging.New("error"))

	added, err := rss.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if added != 0 {
		t.Fatalf("broad-tier item without geography must be dropped, got %d", added)
	}
}
