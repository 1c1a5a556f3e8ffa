package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"HarborMonitor/internal/config"
	"HarborMonitor/internal/ports"
)

// ErrAnswerUnavailable marks a question that could not be answered because
// the provider failed after retries. An answer cannot be sensibly faked, so
// this is the one analyzer error that propagates to callers.
var ErrAnswerUnavailable = errors.New("answer unavailable")

const qaSystemPrompt = "You are an assistant for residents following data center policy in " +
	"Prince George's and Charles Counties, Maryland. Answer ONLY from the supplied context. " +
	"Cite sources by name and date. If the context is insufficient to answer, say so explicitly " +
	"and do not speculate."

// QA performs the grounded answering call. Context assembly and confidence
// calibration live in the usecase layer; this type owns the prompt, retry,
// and timeout discipline.
type QA struct {
	chat    ports.ChatClient
	policy  Policy
	timeout time.Duration
	logger  *slog.Logger
}

// NewQA wires the question-answering call.
func NewQA(chat ports.ChatClient, cfg config.LLMConfig, logger *slog.Logger) *QA {
	return &QA{
		chat:    chat,
		policy:  DefaultPolicy(cfg.MaxAttempts, time.Duration(cfg.BackoffSec)*time.Second),
		timeout: time.Duration(cfg.QATimeoutSec) * time.Second,
		logger:  logger,
	}
}

// Answer sends the question with its grounding context. Timeouts surface as
// ErrTimeout; exhausted provider retries surface as ErrAnswerUnavailable.
func (q *QA) Answer(ctx context.Context, question, contextBlock string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	user := fmt.Sprintf(`Context:

%s

Question: %s

Answer from the context above. Cite the articles or events you used by name and date.`,
		contextBlock, question)

	reply, err := CallWithPolicy(ctx, q.policy, func(ctx context.Context) (string, error) {
		return q.chat.Complete(ctx, ports.ChatRequest{
			System:      qaSystemPrompt,
			User:        user,
			Temperature: 0.5,
			MaxTokens:   2048,
		})
	})
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return "", fmt.Errorf("answer question: %w", ErrTimeout)
		}
		q.logger.Error("qa call failed", "error", err)
		return "", fmt.Errorf("answer question: %w: %v", ErrAnswerUnavailable, err)
	}
	return reply, nil
}
