// Package agents holds the clients for the three external capabilities the
// workflow depends on: answer generation, answer checking, and column
// classification. Collaborator responses are decoded into explicit schemas;
// any shape mismatch is an error, never a best-effort scrape.
package agents

import "context"

// GenerateStatus mirrors the generator run status contract.
type GenerateStatus string

const (
	StatusCompleted GenerateStatus = "completed"
	StatusFailed    GenerateStatus = "failed"
)

// AttemptFeedback describes one rejected attempt, fed back to the generator
// so the next attempt can improve.
type AttemptFeedback struct {
	Attempt    int    `json:"attempt"`
	Answer     string `json:"answer"`
	Reason     string `json:"reason"`
	RejectedBy string `json:"rejected_by"`
}

// GenerateRequest asks for a candidate answer.
type GenerateRequest struct {
	Question  string            `json:"question"`
	Context   string            `json:"context"`
	CharLimit int               `json:"char_limit"`
	History   []AttemptFeedback `json:"history,omitempty"`
}

// GenerateResponse carries the generated text plus any citation URLs the
// generator attached out-of-band. Status failed with empty text means the
// generator could not produce anything; the workflow treats that as a hard
// stop.
type GenerateResponse struct {
	Text         string         `json:"text"`
	CitationURLs []string       `json:"citation_urls"`
	Status       GenerateStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
}

// Verdict is the answer checker's decision.
type Verdict struct {
	Valid    bool   `json:"valid"`
	Feedback string `json:"feedback"`
}

// AnswerGenerator produces candidate answers.
type AnswerGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// AnswerChecker validates a cleaned answer against the question.
type AnswerChecker interface {
	CheckAnswer(ctx context.Context, question, answer string) (Verdict, error)
}

// ColumnClassifierBackend classifies sheet columns, replying in the fixed
// three-line textual contract parsed by the columns package.
type ColumnClassifierBackend interface {
	ClassifyColumns(ctx context.Context, headers []string, samples [][]string) (string, error)
}
