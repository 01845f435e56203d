// Package registry wires workflows and activities onto Temporal workers.
package registry

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/answerdesk/orchestrator/internal/activities"
	"github.com/answerdesk/orchestrator/internal/workflows"
)

// Registry registers everything a question worker runs.
type Registry struct {
	acts   *activities.Activities
	logger *zap.Logger
}

func New(acts *activities.Activities, logger *zap.Logger) *Registry {
	return &Registry{acts: acts, logger: logger}
}

// RegisterWorkflows registers the question and sheet workflows.
func (r *Registry) RegisterWorkflows(w worker.Worker) {
	w.RegisterWorkflow(workflows.QuestionWorkflow)
	w.RegisterWorkflow(workflows.SheetWorkflow)
	r.logger.Info("Registered workflows")
}

// RegisterActivities registers the activity methods under the names the
// workflows invoke them by.
func (r *Registry) RegisterActivities(w worker.Worker) {
	w.RegisterActivityWithOptions(r.acts.GenerateAnswer, activity.RegisterOptions{Name: workflows.GenerateAnswerActivity})
	w.RegisterActivityWithOptions(r.acts.CheckAnswer, activity.RegisterOptions{Name: workflows.CheckAnswerActivity})
	w.RegisterActivityWithOptions(r.acts.CheckLinks, activity.RegisterOptions{Name: workflows.CheckLinksActivity})
	w.RegisterActivityWithOptions(r.acts.ClassifyColumns, activity.RegisterOptions{Name: workflows.ClassifyColumnsActivity})
	w.RegisterActivityWithOptions(r.acts.RecordOutcome, activity.RegisterOptions{Name: workflows.RecordOutcomeActivity})
	r.logger.Info("Registered activities")
}
