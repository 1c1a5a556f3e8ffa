package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

// AnswerEngine turns a question plus an assembled context block into prose.
type AnswerEngine interface {
	Answer(ctx context.Context, question, contextBlock string) (string, error)
}

// qaStopwords are question words that carry no retrieval signal.
var qaStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "what": true, "when": true,
	"where": true, "who": true, "why": true, "how": true, "which": true,
	"do": true, "does": true, "did": true, "has": true, "have": true,
	"had": true, "will": true, "would": true, "can": true, "could": true,
	"should": true, "about": true, "there": true, "this": true, "that": true,
	"these": true, "those": true, "with": true, "from": true, "for": true,
	"and": true, "or": true, "not": true, "any": true, "in": true, "on": true,
	"at": true, "to": true, "of": true, "it": true, "its": true,
}

// Ask answers free-text resident questions grounded in stored articles and
// events. Context is assembled deterministically; only the final phrasing is
// delegated to the engine.
type Ask struct {
	articles ports.ArticleStore
	events   ports.EventStore
	engine   AnswerEngine // nil when the LLM is disabled
	cfg      config.QAConfig
	logger   *slog.Logger
}

// NewAsk constructs the question-answering workflow.
func NewAsk(articles ports.ArticleStore, events ports.EventStore,
	engine AnswerEngine, cfg config.QAConfig, logger *slog.Logger) *Ask {
	return &Ask{
		articles: articles,
		events:   events,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run answers one question. With no engine configured it reports that the
// capability is offline rather than failing.
func (a *Ask) Run(ctx context.Context, question string) (domain.Answer, error) {
	if a.engine == nil {
		return domain.Answer{
			Text:       "Question answering is not available: no language model is configured.",
			Confidence: 0,
		}, nil
	}

	articles, events, err := a.gather(ctx, question)
	if err != nil {
		return domain.Answer{}, err
	}

	block, sources := buildContext(articles, events)
	text, err := a.engine.Answer(ctx, question, block)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("answer question: %w", err)
	}

	return domain.Answer{
		Text:       text,
		Sources:    sources,
		Confidence: confidence(len(articles), len(events)),
	}, nil
}

// gather picks grounding material: keyword-matched articles first, recent
// high-priority articles as backfill, and upcoming events when the question
// sounds schedule-shaped.
func (a *Ask) gather(ctx context.Context, question string) ([]domain.Article, []domain.Event, error) {
	terms := a.searchTerms(question)
	since := time.Now().AddDate(0, 0, -a.cfg.LookbackDays)

	var articles []domain.Article
	if len(terms) > 0 {
		matched, err := a.articles.Search(ctx, terms, since, a.cfg.MaxArticles)
		if err != nil {
			return nil, nil, fmt.Errorf("search articles: %w", err)
		}
		articles = matched
	}

	if len(articles) < a.cfg.MaxArticles {
		recent, err := a.articles.RecentTop(ctx, since, a.cfg.MaxArticles)
		if err != nil {
			return nil, nil, fmt.Errorf("load recent: %w", err)
		}
		seen := make(map[int64]bool, len(articles))
		for _, art := range articles {
			seen[art.ID] = true
		}
		for _, art := range recent {
			if len(articles) >= a.cfg.MaxArticles {
				break
			}
			if !seen[art.ID] {
				articles = append(articles, art)
			}
		}
	}

	var events []domain.Event
	if a.wantsEvents(question) {
		now := time.Now()
		upcoming, err := a.events.Upcoming(ctx, now, now.AddDate(0, 0, 90), a.cfg.MaxEvents)
		if err != nil {
			return nil, nil, fmt.Errorf("load events: %w", err)
		}
		events = upcoming
	}

	a.logger.Info("question context assembled",
		"terms", len(terms), "articles", len(articles), "events", len(events))
	return articles, events, nil
}

// searchTerms extracts retrieval terms: known domain phrases found verbatim
// in the question, plus remaining significant words.
func (a *Ask) searchTerms(question string) []string {
	lower := strings.ToLower(question)

	var terms []string
	covered := lower
	for _, phrase := range a.cfg.DomainPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			terms = append(terms, phrase)
			covered = strings.ReplaceAll(covered, strings.ToLower(phrase), " ")
		}
	}

	for _, word := range strings.FieldsFunc(covered, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(word) < 3 || qaStopwords[word] {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

func (a *Ask) wantsEvents(question string) bool {
	lower := strings.ToLower(question)
	for _, hint := range a.cfg.EventTermHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func buildContext(articles []domain.Article, events []domain.Event) (string, []domain.SourceRef) {
	var b strings.Builder
	sources := make([]domain.SourceRef, 0, len(articles))

	if len(articles) > 0 {
		b.WriteString("RECENT COVERAGE:\n")
		for i, art := range articles {
			date := "unknown date"
			if art.PublishedAt != nil {
				date = art.PublishedAt.Format("2006-01-02")
			}
			fmt.Fprintf(&b, "[%d] %s (%s, %s)\n", i+1, art.Title, art.Source, date)
			if art.Summary != "" {
				fmt.Fprintf(&b, "    %s\n", art.Summary)
			}
			for _, point := range art.KeyPoints {
				fmt.Fprintf(&b, "    - %s\n", point)
			}
			sources = append(sources, domain.SourceRef{
				Title: art.Title,
				URL:   art.URL,
				Date:  art.PublishedAt,
			})
		}
	}

	if len(events) > 0 {
		b.WriteString("\nUPCOMING EVENTS:\n")
		for _, ev := range events {
			fmt.Fprintf(&b, "- %s on %s", ev.Title, ev.Start.Format("2006-01-02 15:04"))
			if ev.Location != "" {
				fmt.Fprintf(&b, " at %s", ev.Location)
			}
			b.WriteString("\n")
		}
	}

	return b.String(), sources
}

// confidence scales with how much grounding material was found; it never
// reaches certainty and bottoms out near zero with an empty context.
func confidence(articles, events int) float64 {
	c := 0.2 + 0.075*float64(articles) + 0.05*float64(events)
	if c > 0.95 {
		return 0.95
	}
	return c
}
