package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"HarborMonitor/internal/analysis"
	"HarborMonitor/internal/config"
	"HarborMonitor/internal/domain"
	"HarborMonitor/internal/ports"
)

const amendmentSystemPrompt = "You are a land-use attorney reviewing Maryland zoning amendment drafts " +
	"for residents of Prince George's and Charles Counties. Return JSON only."

// amendmentContentChars is larger than the article budget: attachment text is
// the primary evidence and the analysis is higher-stakes.
const amendmentContentChars = 8000

// AmendmentAnalyzer reads legislative attachment text (zoning amendment
// drafts) and produces the structured judgment the watchlist stores. On any
// failure it returns a placeholder stub instead of an error so a failed
// analysis never corrupts already-stored matter data.
type AmendmentAnalyzer struct {
	chat    ports.ChatClient
	policy  Policy
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.AmendmentAnalyzer = (*AmendmentAnalyzer)(nil)

// NewAmendmentAnalyzer wires the analyzer with its longer call budget.
func NewAmendmentAnalyzer(chat ports.ChatClient, cfg config.LLMConfig, logger *slog.Logger) *AmendmentAnalyzer {
	return &AmendmentAnalyzer{
		chat:    chat,
		policy:  DefaultPolicy(cfg.MaxAttempts, time.Duration(cfg.BackoffSec)*time.Second),
		timeout: time.Duration(cfg.AmendmentTimeoutSec) * time.Second,
		logger:  logger,
	}
}

type amendmentPayload struct {
	ApprovalPath           string `json:"approval_path"`
	QualifiedDefinition    string `json:"qualified_definition"`
	PowerProvisions        string `json:"power_provisions"`
	InfrastructureTriggers string `json:"infrastructure_triggers"`
	CompatibilityStandards string `json:"compatibility_standards"`
	Risks                  struct {
		ApprovalPath   string `json:"approval_path"`
		Power          string `json:"power"`
		Infrastructure string `json:"infrastructure"`
		Compatibility  string `json:"compatibility"`
	} `json:"risks"`
	TalkingPoints []string `json:"talking_points"`
	Summary       string   `json:"summary"`
}

// AnalyzeAmendment extracts the approval path, defined terms, and risk
// ratings from attachment text.
func (a *AmendmentAnalyzer) AnalyzeAmendment(ctx context.Context, matterTitle, attachmentName, text string) (domain.AmendmentJudgment, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body := truncateStr(text, amendmentContentChars)
	user := fmt.Sprintf(`Analyze this zoning amendment document.

Matter: %s
Document: %s
Text: %s

Return JSON with these exact keys:
- approval_path: how data centers would be approved (by right, special exception, conditional use, or unclear)
- qualified_definition: the document's definition of "qualified data center" (size/tier thresholds), or "" if absent
- power_provisions: any on-site power generation or grid provisions, or ""
- infrastructure_triggers: conditions that trigger infrastructure review, or ""
- compatibility_standards: setback, noise, screening, or siting standards, or ""
- risks: object with keys approval_path, power, infrastructure, compatibility, each HIGH, MEDIUM, or LOW
  (HIGH = weakest protections for residents)
- talking_points: 3-5 plain-language points residents can raise at a hearing
- summary: 2-3 sentence summary of what the document changes`, matterTitle, attachmentName, body)

	raw, err := CallWithPolicy(ctx, a.policy, func(ctx context.Context) (string, error) {
		return a.chat.Complete(ctx, ports.ChatRequest{
			System:      amendmentSystemPrompt,
			User:        user,
			ForceJSON:   true,
			Temperature: 0.2,
			MaxTokens:   2048,
		})
	})
	if err != nil {
		a.logger.Warn("amendment analysis failed", "matter", truncateStr(matterTitle, 60), "error", err)
		return StubAmendmentJudgment(), nil
	}

	var payload amendmentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		a.logger.Warn("amendment reply unparseable", "matter", truncateStr(matterTitle, 60), "error", err)
		return StubAmendmentJudgment(), nil
	}

	judgment := domain.AmendmentJudgment{
		ApprovalPath:           fallbackStr(payload.ApprovalPath, "unclear"),
		QualifiedDefinition:    payload.QualifiedDefinition,
		PowerProvisions:        payload.PowerProvisions,
		InfrastructureTriggers: payload.InfrastructureTriggers,
		CompatibilityStandards: payload.CompatibilityStandards,
		Risks: domain.AmendmentRisks{
			ApprovalPath:   analysis.CoerceRisk(payload.Risks.ApprovalPath),
			Power:          analysis.CoerceRisk(payload.Risks.Power),
			Infrastructure: analysis.CoerceRisk(payload.Risks.Infrastructure),
			Compatibility:  analysis.CoerceRisk(payload.Risks.Compatibility),
		},
		TalkingPoints: payload.TalkingPoints,
		Summary:       fallbackStr(payload.Summary, matterTitle),
		Analyzed:      true,
	}
	if judgment.TalkingPoints == nil {
		judgment.TalkingPoints = []string{}
	}
	return judgment, nil
}

// StubAmendmentJudgment is the placeholder stored when analysis fails.
func StubAmendmentJudgment() domain.AmendmentJudgment {
	return domain.AmendmentJudgment{
		ApprovalPath: "unclear",
		Summary:      "not analyzed",
		Risks: domain.AmendmentRisks{
			ApprovalPath:   domain.RiskUnclear,
			Power:          domain.RiskUnclear,
			Infrastructure: domain.RiskUnclear,
			Compatibility:  domain.RiskUnclear,
		},
		TalkingPoints: []string{},
		Analyzed:      false,
	}
}

func fallbackStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
