// Package app wires configuration to adapters and use cases.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"HarborMonitor/internal/analysis"
	"HarborMonitor/internal/config"
	"HarborMonitor/internal/infrastructure/fetch"
	"HarborMonitor/internal/infrastructure/legistar"
	"HarborMonitor/internal/infrastructure/llm"
	"HarborMonitor/internal/infrastructure/scheduler"
	"HarborMonitor/internal/infrastructure/source"
	"HarborMonitor/internal/infrastructure/storage"
	"HarborMonitor/internal/infrastructure/telegram"
	"HarborMonitor/internal/keyword"
	"HarborMonitor/internal/logging"
	"HarborMonitor/internal/ports"
	"HarborMonitor/internal/usecase"
)

// Application holds the wired use cases behind the CLI commands.
type Application struct {
	cfg config.Config
	db  *sql.DB

	Discovery *usecase.Discovery
	Classify  *usecase.Classify
	Events    *usecase.ExtractEvents
	Tracker   *usecase.TrackMatters
	Ask       *usecase.Ask
	Notify    *usecase.Notify
	Cycle     *usecase.Cycle
}

// New connects to storage and builds the full dependency graph. Without an
// LLM key every analyzer runs in its degraded deterministic mode.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}

	articles := storage.NewArticleStore(db)
	events := storage.NewEventStore(db)
	matters := storage.NewMatterStore(db)

	fetcher := fetch.New(cfg.Fetch, nil, logging.Component(baseLogger, "fetch"))
	records := legistar.New(cfg.Legistar, nil)

	broadSources := make([]string, 0)
	for _, feed := range cfg.Feeds {
		if feed.Broad {
			broadSources = append(broadSources, feed.Source)
		}
	}
	filter := keyword.New(cfg.Keywords, broadSources)

	sources := []ports.Source{
		source.NewRSS(cfg.Feeds, filter, fetcher, articles, nil,
			cfg.FeedLookbackDays, logging.Component(baseLogger, "source.rss")),
		source.NewBoard(cfg.Board, filter, fetcher, articles, nil,
			logging.Component(baseLogger, "source.board")),
		source.NewLegistar(cfg.Legistar, records, filter, cfg.Keywords.AutoWatch,
			fetcher, articles, matters, logging.Component(baseLogger, "source.legistar")),
	}

	var (
		classifier ports.Classifier
		extractor  ports.EventExtractor
		amendments ports.AmendmentAnalyzer
		engine     usecase.AnswerEngine
	)
	if cfg.LLM.Enabled() {
		chat := llm.NewClient(cfg.LLM, nil)
		classifier = llm.NewClassifier(chat, cfg.LLM, logging.Component(baseLogger, "llm.classifier"))
		extractor = llm.NewEventExtractor(chat, cfg.LLM, logging.Component(baseLogger, "llm.events"))
		amendments = llm.NewAmendmentAnalyzer(chat, cfg.LLM, logging.Component(baseLogger, "llm.amendment"))
		engine = llm.NewQA(chat, cfg.LLM, logging.Component(baseLogger, "llm.qa"))
	} else {
		baseLogger.Warn("llm disabled, running heuristic-only analysis")
	}

	var notifier ports.Notifier
	if cfg.Notify.Telegram.BotToken != "" && cfg.Notify.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}

	heuristic := analysis.NewHeuristic(cfg.Keywords)

	discovery := usecase.NewDiscovery(sources, logging.Component(baseLogger, "discovery"))
	classify := usecase.NewClassify(articles, classifier, heuristic,
		logging.Component(baseLogger, "classify"))
	extractEvents := usecase.NewExtractEvents(articles, events, extractor,
		logging.Component(baseLogger, "events"))
	tracker := usecase.NewTrackMatters(matters, records, fetcher, amendments,
		logging.Component(baseLogger, "watchlist"))
	ask := usecase.NewAsk(articles, events, engine, cfg.QA,
		logging.Component(baseLogger, "qa"))
	notify := usecase.NewNotify(articles, notifier, cfg.Notify,
		logging.Component(baseLogger, "notify"))
	cycle := usecase.NewCycle(discovery, classify, extractEvents, tracker, notify,
		logging.Component(baseLogger, "cycle"))

	return &Application{
		cfg:       cfg,
		db:        db,
		Discovery: discovery,
		Classify:  classify,
		Events:    extractEvents,
		Tracker:   tracker,
		Ask:       ask,
		Notify:    notify,
		Cycle:     cycle,
	}, nil
}

// RunForever starts the scheduler and blocks until the context is cancelled.
func (a *Application) RunForever(ctx context.Context) error {
	interval := time.Duration(a.cfg.Scheduler.IntervalMinutes) * time.Minute
	driver := scheduler.NewTickerScheduler(interval, a.cfg.Scheduler.Location())
	runner := usecase.NewRunner(driver, a.Cycle)

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return runner.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
