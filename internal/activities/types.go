package activities

import (
	"github.com/answerdesk/orchestrator/internal/agents"
	"github.com/answerdesk/orchestrator/internal/columns"
)

// GenerateAnswerInput is the input for the GenerateAnswer activity.
type GenerateAnswerInput struct {
	Question  string                   `json:"question"`
	Context   string                   `json:"context,omitempty"`
	CharLimit int                      `json:"char_limit,omitempty"`
	History   []agents.AttemptFeedback `json:"history,omitempty"`
}

// GenerateAnswerResult carries the candidate answer. A failed status means
// the generator could not produce anything; callers must not retry.
type GenerateAnswerResult struct {
	Text         string                `json:"text"`
	CitationURLs []string              `json:"citation_urls,omitempty"`
	Status       agents.GenerateStatus `json:"status"`
	Error        string                `json:"error,omitempty"`
}

// CheckAnswerInput is the input for the CheckAnswer activity.
type CheckAnswerInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CheckAnswerResult is the fact-check verdict.
type CheckAnswerResult struct {
	Valid    bool   `json:"valid"`
	Feedback string `json:"feedback,omitempty"`
}

// CheckLinksInput is the input for the CheckLinks activity.
type CheckLinksInput struct {
	URLs []string `json:"urls"`
}

// CheckLinksResult partitions the candidate URLs.
type CheckLinksResult struct {
	AllValid bool              `json:"all_valid"`
	Valid    []string          `json:"valid,omitempty"`
	Feedback string            `json:"feedback,omitempty"`
	Statuses map[string]string `json:"statuses,omitempty"`
}

// ClassifyColumnsInput is the input for the ClassifyColumns activity.
type ClassifyColumnsInput struct {
	Headers    []string   `json:"headers"`
	SampleRows [][]string `json:"sample_rows,omitempty"`
}

// ClassifyColumnsResult is the resolved column mapping plus the raw
// classifier reply for debugging.
type ClassifyColumnsResult struct {
	Mapping      columns.Mapping `json:"mapping"`
	RawResponse  string          `json:"raw_response,omitempty"`
	UsedFallback bool            `json:"used_fallback,omitempty"`
}

// RecordOutcomeInput is the input for the RecordOutcome activity.
type RecordOutcomeInput struct {
	WorkflowID  string   `json:"workflow_id"`
	Question    string   `json:"question"`
	Status      string   `json:"status"`
	FailureKind string   `json:"failure_kind,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	Links       []string `json:"links,omitempty"`
	Attempts    int      `json:"attempts"`
}
