package activities

import (
	"context"

	"github.com/lib/pq"
	"go.temporal.io/sdk/activity"

	"github.com/answerdesk/orchestrator/internal/db"
	"github.com/answerdesk/orchestrator/internal/metrics"
)

// RecordOutcome persists one finished workflow. Best effort: with no store
// configured it logs and returns.
func (a *Activities) RecordOutcome(ctx context.Context, input RecordOutcomeInput) error {
	logger := activity.GetLogger(ctx)

	metrics.WorkflowsCompleted.WithLabelValues("question", input.Status, input.FailureKind).Inc()
	metrics.AttemptsPerQuestion.Observe(float64(input.Attempts))

	if a.store == nil {
		logger.Debug("RecordOutcome: no store configured, skipping",
			"workflow_id", input.WorkflowID)
		return nil
	}

	err := a.store.RecordOutcome(ctx, db.Outcome{
		WorkflowID:  input.WorkflowID,
		Question:    input.Question,
		Status:      input.Status,
		FailureKind: input.FailureKind,
		Answer:      input.Answer,
		Links:       pq.StringArray(input.Links),
		Attempts:    input.Attempts,
	})
	if err != nil {
		logger.Warn("RecordOutcome: persist failed", "error", err)
		return err
	}
	return nil
}
