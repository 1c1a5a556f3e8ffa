package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/keyword"
	"HarborMonitor/internal/ports"
)

// postContainerClasses marks listing elements likely to be news posts when
// no semantic <article> tags exist.
var postContainerClasses = []string{"post", "entry", "news-item"}

// skipLinkFragments excludes taxonomy and pagination links from the
// same-domain fallback.
var skipLinkFragments = []string{"/category/", "/page/", "/tag/", "/meetings/"}

// meetingLinkTerms identify agenda and minutes links on the meetings page.
var meetingLinkTerms = []string{"agenda", "minutes", "meeting"}

// Board scrapes the planning-board website: news and press-release listing
// pages plus the meetings page with agenda/minutes documents.
type Board struct {
	cfg     config.BoardConfig
	client  *http.Client
	filter  *keyword.Filter
	fetcher ports.ContentFetcher
	store   ports.ArticleStore
	logger  *slog.Logger
}

var _ ports.Source = (*Board)(nil)

// NewBoard wires the website scraper.
func NewBoard(cfg config.BoardConfig, filter *keyword.Filter, fetcher ports.ContentFetcher,
	store ports.ArticleStore, client *http.Client, logger *slog.Logger) *Board {

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Board{
		cfg:     cfg,
		client:  client,
		filter:  filter,
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// Name identifies the adapter in logs and pipeline summaries.
func (b *Board) Name() string { return "board" }

// Discover scans the listing pages and the meetings page. Per-page failures
// are contained.
func (b *Board) Discover(ctx context.Context) (int, error) {
	ing := newIngestor(b.store)
	var added int

	for _, path := range b.cfg.ListingPaths {
		n, err := b.scanListing(ctx, ing, b.cfg.BaseURL+path)
		if err != nil {
			b.logger.Error("listing page failed", "url", path, "error", err)
			continue
		}
		added += n
	}

	n, err := b.scanMeetings(ctx, ing)
	if err != nil {
		b.logger.Error("meetings page failed", "error", err)
	}
	added += n

	return added, nil
}

func (b *Board) scanListing(ctx context.Context, ing *ingestor, pageURL string) (int, error) {
	doc, err := b.fetchDocument(ctx, pageURL)
	if err != nil {
		return 0, err
	}

	posts := b.findPosts(doc, pageURL)
	limit := b.cfg.MaxPosts
	if limit <= 0 {
		limit = 25
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}

	var added int
	for _, post := range posts {
		if !strings.HasPrefix(post.url, "http") {
			continue
		}
		if len(post.title) < 10 {
			continue
		}
		if !b.filter.Passes(post.title, post.excerpt, b.cfg.Source) {
			continue
		}

		content := b.fetcher.FetchText(ctx, post.url)
		inserted, err := ing.add(ctx, domain.DiscoveredItem{
			Title:   post.title,
			URL:     post.url,
			Summary: post.excerpt,
			Source:  b.cfg.Source,
		}, content)
		if err != nil {
			b.logger.Error("post failed", "url", post.url, "error", err)
			continue
		}
		if inserted {
			added++
			logNew(b.logger, b.cfg.Source, post.title)
		}
	}
	return added, nil
}

type boardPost struct {
	title   string
	url     string
	excerpt string
}

// findPosts prefers semantic post containers, then class-hinted divs, and
// finally falls back to same-domain link harvesting.
func (b *Board) findPosts(doc *goquery.Document, pageURL string) []boardPost {
	var posts []boardPost

	collect := func(_ int, sel *goquery.Selection) {
		link := sel
		if goquery.NodeName(sel) != "a" {
			link = sel.Find("a[href]").First()
		}
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		title := strings.TrimSpace(sel.Find("h1, h2, h3, h4").First().Text())
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}
		excerpt := strings.TrimSpace(sel.Find("p").First().Text())

		posts = append(posts, boardPost{title: title, url: href, excerpt: excerpt})
	}

	if articles := doc.Find("article"); articles.Length() > 0 {
		articles.Each(collect)
		return posts
	}

	for _, class := range postContainerClasses {
		doc.Find(fmt.Sprintf("div[class*=%q]", class)).Each(collect)
	}
	if len(posts) > 0 {
		return posts
	}

	seen := map[string]struct{}{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, b.cfg.BaseURL) || href == pageURL {
			return
		}
		for _, frag := range skipLinkFragments {
			if strings.Contains(href, frag) {
				return
			}
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		posts = append(posts, boardPost{title: strings.TrimSpace(a.Text()), url: href})
	})
	return posts
}

func (b *Board) scanMeetings(ctx context.Context, ing *ingestor) (int, error) {
	doc, err := b.fetchDocument(ctx, b.cfg.BaseURL+b.cfg.MeetingsPath)
	if err != nil {
		return 0, err
	}

	var added int
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		linkText := strings.TrimSpace(a.Text())
		titleAttr, _ := a.Attr("title")

		if !isMeetingLink(linkText, href) {
			return
		}
		if !b.filter.Passes(linkText, titleAttr, b.cfg.AgendaSource) {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = b.cfg.BaseURL + href
		}

		var content string
		if !strings.HasSuffix(href, ".pdf") {
			content = b.fetcher.FetchText(ctx, href)
		}
		if content == "" {
			content = linkText
		}

		inserted, err := ing.add(ctx, domain.DiscoveredItem{
			Title:   "[PB Agenda] " + linkText,
			URL:     href,
			Summary: linkText,
			Source:  b.cfg.AgendaSource,
		}, content)
		if err != nil {
			b.logger.Error("agenda link failed", "url", href, "error", err)
			return
		}
		if inserted {
			added++
			logNew(b.logger, b.cfg.AgendaSource, linkText)
		}
	})
	return added, nil
}

func isMeetingLink(linkText, href string) bool {
	lower := strings.ToLower(linkText)
	for _, term := range meetingLinkTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return strings.HasSuffix(href, ".pdf")
}

func (b *Board) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board site returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}
