package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/answerdesk/orchestrator/internal/agents"
	"github.com/answerdesk/orchestrator/internal/metrics"
)

// GenerateAnswer asks the generator for a candidate answer. Generator
// unavailability is reported through the result status, never as an activity
// error, so Temporal does not retry a collaborator that already said no.
func (a *Activities) GenerateAnswer(ctx context.Context, input GenerateAnswerInput) (*GenerateAnswerResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("GenerateAnswer: starting",
		"question_length", len(input.Question),
		"history_len", len(input.History),
	)

	start := time.Now()
	resp, err := a.generator.Generate(ctx, agents.GenerateRequest{
		Question:  input.Question,
		Context:   input.Context,
		CharLimit: input.CharLimit,
		History:   input.History,
	})
	metrics.AgentCallDuration.WithLabelValues("answer_generator").
		Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.AgentCalls.WithLabelValues("answer_generator", "unreachable").Inc()
		logger.Warn("GenerateAnswer: generator unreachable", "error", err)
		return &GenerateAnswerResult{
			Status: agents.StatusFailed,
			Error:  err.Error(),
		}, nil
	}

	if resp.Status != agents.StatusCompleted {
		metrics.AgentCalls.WithLabelValues("answer_generator", "failed").Inc()
		return &GenerateAnswerResult{Status: agents.StatusFailed, Error: resp.Error}, nil
	}

	metrics.AgentCalls.WithLabelValues("answer_generator", "ok").Inc()
	logger.Info("GenerateAnswer: complete",
		"answer_length", len(resp.Text),
		"citation_urls", len(resp.CitationURLs),
	)
	return &GenerateAnswerResult{
		Text:         resp.Text,
		CitationURLs: resp.CitationURLs,
		Status:       agents.StatusCompleted,
	}, nil
}

// CheckAnswer runs the fact-check verdict on a cleaned answer. A checker
// that cannot be reached is an activity error; a rejection is a normal
// result.
func (a *Activities) CheckAnswer(ctx context.Context, input CheckAnswerInput) (*CheckAnswerResult, error) {
	logger := activity.GetLogger(ctx)

	start := time.Now()
	verdict, err := a.checker.CheckAnswer(ctx, input.Question, input.Answer)
	metrics.AgentCallDuration.WithLabelValues("answer_checker").
		Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.AgentCalls.WithLabelValues("answer_checker", "unreachable").Inc()
		return nil, fmt.Errorf("answer check: %w", err)
	}
	metrics.AgentCalls.WithLabelValues("answer_checker", "ok").Inc()

	logger.Info("CheckAnswer: complete", "valid", verdict.Valid)
	return &CheckAnswerResult{Valid: verdict.Valid, Feedback: verdict.Feedback}, nil
}
