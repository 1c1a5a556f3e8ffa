package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/ports"
)

// bodySelectors is the prioritized list of containers likely to hold the
// article body. Tried in order; first match wins.
var bodySelectors = []string{
	"article",
	"div.article-body",
	"div.story-body",
	"div.entry-content",
	"div.post-content",
	"div[role=article]",
	"main",
}

// Fetcher retrieves a best-effort plain-text article body from arbitrary
// HTML. It never returns an error: callers treat missing body text as
// degraded but non-fatal, so failures log and yield "".
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxChars  int
	logger    *slog.Logger
}

var _ ports.ContentFetcher = (*Fetcher)(nil)

// New wires an HTTP client bounded by the configured timeout.
func New(cfg config.FetchConfig, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second}
	}
	maxChars := cfg.MaxContentChars
	if maxChars <= 0 {
		maxChars = 5000
	}
	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		maxChars:  maxChars,
		logger:    logger,
	}
}

// FetchText downloads the URL and extracts the main article text, truncated
// to the configured character budget. Empty string on any failure.
func (f *Fetcher) FetchText(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		f.warn("build request", pageURL, err)
		return ""
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.warn("request page", pageURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.warn("unexpected status", pageURL, nil, "status", resp.Status)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		f.warn("parse document", pageURL, err)
		return ""
	}

	return ExtractText(doc, f.maxChars)
}

// ExtractText pulls readable text out of a parsed document: chrome elements
// stripped, semantic body container preferred, paragraph concatenation as a
// last resort.
func ExtractText(doc *goquery.Document, maxChars int) string {
	doc.Find("script, style, nav, header, footer, aside").Remove()

	var text string
	for _, sel := range bodySelectors {
		if body := doc.Find(sel).First(); body.Length() > 0 {
			text = body.Text()
			break
		}
	}

	if strings.TrimSpace(text) == "" {
		var parts []string
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			if t := strings.TrimSpace(p.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		text = strings.Join(parts, " ")
	}

	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxChars {
		// Back the cut off to a rune boundary so the stored text stays
		// valid UTF-8.
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

func (f *Fetcher) warn(msg, url string, err error, args ...any) {
	if f.logger == nil {
		return
	}
	fields := []any{"url", url}
	if err != nil {
		fields = append(fields, "error", err)
	}
	fields = append(fields, args...)
	f.logger.Warn("could not scrape: "+msg, fields...)
}
