package activities

import (
	"context"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/answerdesk/orchestrator/internal/columns"
	"github.com/answerdesk/orchestrator/internal/metrics"
)

// ClassifyColumns asks the classifier backend to map sheet headers onto
// roles. A backend failure is not fatal: keyword and positional fallback
// still produce a mapping when the headers allow it.
func (a *Activities) ClassifyColumns(ctx context.Context, input ClassifyColumnsInput) (*ClassifyColumnsResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("ClassifyColumns: starting", "headers", input.Headers)

	start := time.Now()
	raw, err := a.classifier.ClassifyColumns(ctx, input.Headers, input.SampleRows)
	metrics.AgentCallDuration.WithLabelValues("column_classifier").
		Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.AgentCalls.WithLabelValues("column_classifier", "unreachable").Inc()
		logger.Warn("ClassifyColumns: backend failed, using fallback", "error", err)
		fb := columns.Fallback(input.Headers)
		if !fb.Usable() {
			metrics.SheetsSkipped.Inc()
		}
		return &ClassifyColumnsResult{Mapping: fb, UsedFallback: true}, nil
	}
	metrics.AgentCalls.WithLabelValues("column_classifier", "ok").Inc()

	mapping := columns.Resolve(raw, input.Headers)
	if !mapping.Usable() {
		metrics.SheetsSkipped.Inc()
	}
	logger.Info("ClassifyColumns: complete",
		"question", mapping.Question,
		"answer", mapping.Answer,
		"docs", mapping.Docs,
	)
	return &ClassifyColumnsResult{Mapping: mapping, RawResponse: raw}, nil
}
