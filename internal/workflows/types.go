// Package workflows contains the Temporal workflows that drive question
// answering: a bounded-retry loop for a single question and a fan-out
// workflow for spreadsheet batches. Workflow code stays deterministic;
// everything that touches the network runs in activities.
package workflows

// Activity names, matching the method names on activities.Activities.
const (
	GenerateAnswerActivity  = "GenerateAnswer"
	CheckAnswerActivity     = "CheckAnswer"
	CheckLinksActivity      = "CheckLinks"
	ClassifyColumnsActivity = "ClassifyColumns"
	RecordOutcomeActivity   = "RecordOutcome"
)

// Failure kinds reported on unsuccessful question workflows.
const (
	FailureGeneratorUnavailable = "generator_unavailable"
	FailureAttemptsExhausted    = "attempts_exhausted"
	FailureInternal             = "internal_error"
)

// Rejection sources recorded in attempt history.
const (
	RejectedByLengthCheck   = "length_check"
	RejectedByAnswerChecker = "answer_checker"
	RejectedByLinkChecker   = "link_checker"
)

// DefaultMaxAttempts bounds the generate/check/validate loop when the
// caller does not set a limit.
const DefaultMaxAttempts = 10

// QuestionInput starts one question workflow.
type QuestionInput struct {
	Question    string `json:"question"`
	Context     string `json:"context,omitempty"`
	CharLimit   int    `json:"char_limit,omitempty"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
}

// QuestionResult is the terminal state of a question workflow. The workflow
// always returns a result with a nil error; failure lives in the fields so
// callers and batch parents see a uniform shape.
type QuestionResult struct {
	Success      bool     `json:"success"`
	Answer       string   `json:"answer,omitempty"`
	Links        []string `json:"links,omitempty"`
	Attempts     int      `json:"attempts"`
	FailureKind  string   `json:"failure_kind,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// SheetRow is one spreadsheet row keyed by header.
type SheetRow struct {
	Index int               `json:"index"`
	Cells map[string]string `json:"cells"`
}

// SheetInput starts one sheet workflow.
type SheetInput struct {
	SheetName   string     `json:"sheet_name"`
	Headers     []string   `json:"headers"`
	Rows        []SheetRow `json:"rows"`
	Context     string     `json:"context,omitempty"`
	CharLimit   int        `json:"char_limit,omitempty"`
	MaxAttempts int        `json:"max_attempts,omitempty"`
	// MaxParallel caps concurrent per-row child workflows. Zero means the
	// default of 4.
	MaxParallel int `json:"max_parallel,omitempty"`
}

// SheetRowResult pairs a row with its question outcome.
type SheetRowResult struct {
	Index    int            `json:"index"`
	Question string         `json:"question"`
	Result   QuestionResult `json:"result"`
	Skipped  bool           `json:"skipped"`
	SkipNote string         `json:"skip_note,omitempty"`
}

// SheetResult summarizes a processed sheet.
type SheetResult struct {
	SheetName string           `json:"sheet_name"`
	Skipped   bool             `json:"skipped"`
	SkipNote  string           `json:"skip_note,omitempty"`
	Rows      []SheetRowResult `json:"rows,omitempty"`
	Answered  int              `json:"answered"`
	Failed    int              `json:"failed"`
}
