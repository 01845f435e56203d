// Package activities implements the Temporal activities behind the question
// answering workflows. All network and database I/O lives here; the
// workflows stay deterministic.
package activities

import (
	"go.uber.org/zap"

	"github.com/answerdesk/orchestrator/internal/agents"
	"github.com/answerdesk/orchestrator/internal/db"
	"github.com/answerdesk/orchestrator/internal/links"
)

// Activities bundles the collaborator clients the activities call.
type Activities struct {
	generator  agents.AnswerGenerator
	checker    agents.AnswerChecker
	classifier agents.ColumnClassifierBackend
	validator  *links.Validator
	store      *db.Store
	logger     *zap.Logger
}

// NewActivities creates a new activities instance with dependencies. The
// store is optional; a nil store disables outcome persistence.
func NewActivities(
	generator agents.AnswerGenerator,
	checker agents.AnswerChecker,
	classifier agents.ColumnClassifierBackend,
	validator *links.Validator,
	store *db.Store,
	logger *zap.Logger,
) *Activities {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activities{
		generator:  generator,
		checker:    checker,
		classifier: classifier,
		validator:  validator,
		store:      store,
		logger:     logger,
	}
}
