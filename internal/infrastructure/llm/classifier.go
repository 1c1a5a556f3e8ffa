package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"HarborMonitor/internal/analysis"
	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

const (
	classifierSystemPrompt = "You are an expert analyst for Maryland data center policy and development. " +
		"Analyze articles and return JSON only."

	maxPromptContentChars = 2000
)

// Classifier is the LLM-backed article analyzer. A failed call or malformed
// reply surfaces as an error so the caller can fall back to the heuristic.
type Classifier struct {
	chat    ports.ChatClient
	policy  Policy
	timeout time.Duration
	temp    float64
	logger  *slog.Logger
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier wires the analyzer with its retry policy and call budget.
func NewClassifier(chat ports.ChatClient, cfg config.LLMConfig, logger *slog.Logger) *Classifier {
	return &Classifier{
		chat:    chat,
		policy:  DefaultPolicy(cfg.MaxAttempts, time.Duration(cfg.BackoffSec)*time.Second),
		timeout: time.Duration(cfg.AnalysisTimeoutSec) * time.Second,
		temp:    cfg.Temperature,
		logger:  logger,
	}
}

type judgmentPayload struct {
	RelevanceScore int      `json:"relevance_score"`
	PriorityScore  int      `json:"priority_score"`
	Category       string   `json:"category"`
	County         string   `json:"county"`
	Summary        string   `json:"summary"`
	KeyPoints      []string `json:"key_points"`
}

// Analyze classifies one article through the rubric prompt, then clamps and
// normalizes the reply at the boundary.
func (c *Classifier) Analyze(ctx context.Context, title, content, source string, published *time.Time) (domain.Judgment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user := c.buildPrompt(title, content, source, published)

	raw, err := CallWithPolicy(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.chat.Complete(ctx, ports.ChatRequest{
			System:      classifierSystemPrompt,
			User:        user,
			ForceJSON:   true,
			Temperature: c.temp,
			MaxTokens:   1024,
		})
	})
	if err != nil {
		return domain.Judgment{}, fmt.Errorf("classify %q: %w", truncateStr(title, 60), err)
	}

	var payload judgmentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Judgment{}, fmt.Errorf("classify %q: parse reply: %w", truncateStr(title, 60), err)
	}

	judgment := analysis.ValidateJudgment(domain.Judgment{
		Relevance: payload.RelevanceScore,
		Priority:  payload.PriorityScore,
		Category:  domain.Category(payload.Category),
		County:    domain.County(payload.County),
		Summary:   payload.Summary,
		KeyPoints: payload.KeyPoints,
	}, title)

	c.logger.Debug("classified article", "title", truncateStr(title, 60),
		"relevance", judgment.Relevance, "priority", judgment.Priority)
	return judgment, nil
}

func (c *Classifier) buildPrompt(title, content, source string, published *time.Time) string {
	body := truncateStr(content, maxPromptContentChars)
	publishedText := "unknown"
	if published != nil {
		publishedText = published.Format("2006-01-02")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this article about Prince George's or Charles County, Maryland:\n\n")
	fmt.Fprintf(&b, "Title: %s\nSource: %s\nPublished: %s\nContent: %s\n\n", title, source, publishedText, body)
	b.WriteString(`Analyze for data center relevance and provide JSON with these exact keys:
1. relevance_score (0-10): How relevant is this to data center development in the monitored counties?
   0-2 unrelated, 3-5 tangential, 6-8 directly relevant, 9-10 core policy action.
2. priority_score (1-10): How urgent/important is this?
   1-4 background, 5-6 notable, 7-8 action pending, 9-10 imminent vote or decision.
3. category: One of [policy, meeting, legislation, environmental, community, development]
4. county: One of [prince_georges, charles, both, statewide, unclear]
5. summary: 2-3 sentence summary
6. key_points: List of 3-5 key takeaways

Focus on:
- Zoning changes (AR zone, RE zone, qualified data centers)
- Legislative amendments and resolutions (CR-98-2025, EO 42-2025)
- Planning Board actions
- Environmental impacts (power, cooling water, Patuxent River)
- Community meetings and Task Force activities`)
	return b.String()
}

// truncateStr cuts s to at most n bytes, backing off to a rune boundary so
// prompts and log fields never carry invalid UTF-8.
func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
