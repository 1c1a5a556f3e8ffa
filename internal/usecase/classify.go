package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"HarborMonitor/internal/analysis"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

const defaultClassifyBatch = 50

// Classify assigns judgments to stored articles that have not yet been
// analyzed. The LLM classifier is the primary strategy; when it is absent or
// a call fails after retries, the deterministic heuristic takes over so the
// batch always completes.
type Classify struct {
	store     ports.ArticleStore
	primary   ports.Classifier // nil when the LLM is disabled
	heuristic *analysis.Heuristic
	logger    *slog.Logger
}

// NewClassify constructs the classification workflow.
func NewClassify(store ports.ArticleStore, primary ports.Classifier,
	heuristic *analysis.Heuristic, logger *slog.Logger) *Classify {
	return &Classify{
		store:     store,
		primary:   primary,
		heuristic: heuristic,
		logger:    logger,
	}
}

// Run classifies up to limit pending articles, oldest first. It returns how
// many were analyzed; a storage failure aborts the batch.
func (c *Classify) Run(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultClassifyBatch
	}

	articles, err := c.store.Unanalyzed(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("load unanalyzed: %w", err)
	}

	done := 0
	for _, article := range articles {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}

		judgment := c.judge(ctx, article)
		if err := c.store.MarkAnalyzed(ctx, article.ID, judgment); err != nil {
			return done, fmt.Errorf("mark analyzed: %w", err)
		}
		done++
		c.logger.Info("article analyzed",
			"id", article.ID,
			"source", article.Source,
			"relevance", judgment.Relevance,
			"priority", judgment.Priority,
			"category", judgment.Category)
	}
	return done, nil
}

func (c *Classify) judge(ctx context.Context, article domain.Article) domain.Judgment {
	if c.primary != nil {
		judgment, err := c.primary.Analyze(ctx, article.Title, article.Content,
			article.Source, article.PublishedAt)
		if err == nil {
			return judgment
		}
		c.logger.Warn("classifier fell back to heuristic", "id", article.ID, "err", err)
	}
	return c.heuristic.AnalyzeArticle(article.Title, article.Content,
		article.Source, article.PublishedAt)
}
