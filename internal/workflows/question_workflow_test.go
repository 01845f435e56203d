package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/answerdesk/orchestrator/internal/activities"
	"github.com/answerdesk/orchestrator/internal/agents"
)

// questionEnv wires a test environment with stubbed collaborator activities.
type questionEnv struct {
	env *testsuite.TestWorkflowEnvironment

	genCalls   int
	genInputs  []activities.GenerateAnswerInput
	checkCalls int
	linkCalls  int
	linkInputs []activities.CheckLinksInput

	generate func(n int, in activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error)
	check    func(n int, in activities.CheckAnswerInput) (*activities.CheckAnswerResult, error)
	links    func(n int, in activities.CheckLinksInput) (*activities.CheckLinksResult, error)
}

func newQuestionEnv(t *testing.T) *questionEnv {
	t.Helper()
	suite := &testsuite.WorkflowTestSuite{}
	q := &questionEnv{env: suite.NewTestWorkflowEnvironment()}

	q.generate = func(int, activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		return &activities.GenerateAnswerResult{
			Text:   "See https://example.com/docs",
			Status: agents.StatusCompleted,
		}, nil
	}
	q.check = func(int, activities.CheckAnswerInput) (*activities.CheckAnswerResult, error) {
		return &activities.CheckAnswerResult{Valid: true}, nil
	}
	q.links = func(_ int, in activities.CheckLinksInput) (*activities.CheckLinksResult, error) {
		return &activities.CheckLinksResult{AllValid: true, Valid: in.URLs}, nil
	}

	q.env.RegisterWorkflow(QuestionWorkflow)
	q.env.RegisterActivityWithOptions(func(ctx context.Context, in activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		q.genCalls++
		q.genInputs = append(q.genInputs, in)
		return q.generate(q.genCalls, in)
	}, activity.RegisterOptions{Name: GenerateAnswerActivity})
	q.env.RegisterActivityWithOptions(func(ctx context.Context, in activities.CheckAnswerInput) (*activities.CheckAnswerResult, error) {
		q.checkCalls++
		return q.check(q.checkCalls, in)
	}, activity.RegisterOptions{Name: CheckAnswerActivity})
	q.env.RegisterActivityWithOptions(func(ctx context.Context, in activities.CheckLinksInput) (*activities.CheckLinksResult, error) {
		q.linkCalls++
		q.linkInputs = append(q.linkInputs, in)
		return q.links(q.linkCalls, in)
	}, activity.RegisterOptions{Name: CheckLinksActivity})
	q.env.RegisterActivityWithOptions(func(ctx context.Context, in activities.RecordOutcomeInput) error {
		return nil
	}, activity.RegisterOptions{Name: RecordOutcomeActivity})

	return q
}

func (q *questionEnv) run(t *testing.T, input QuestionInput) QuestionResult {
	t.Helper()
	q.env.ExecuteWorkflow(QuestionWorkflow, input)
	require.True(t, q.env.IsWorkflowCompleted())
	require.NoError(t, q.env.GetWorkflowError())

	var out QuestionResult
	require.NoError(t, q.env.GetWorkflowResult(&out))
	return out
}

func TestQuestionWorkflowSucceedsFirstAttempt(t *testing.T) {
	q := newQuestionEnv(t)
	q.generate = func(int, activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		return &activities.GenerateAnswerResult{
			Text:   "Use the export API. Details: https://example.com/docs/export",
			Status: agents.StatusCompleted,
		}, nil
	}

	out := q.run(t, QuestionInput{Question: "How do I export?"})

	assert.True(t, out.Success)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, []string{"https://example.com/docs/export"}, out.Links)
	assert.Equal(t, "Use the export API. Details:", out.Answer)
	assert.Equal(t, 1, q.genCalls)
	assert.Equal(t, 1, q.checkCalls)
	assert.Equal(t, 1, q.linkCalls)
}

func TestQuestionWorkflowMergesOutOfBandCitations(t *testing.T) {
	q := newQuestionEnv(t)
	q.generate = func(int, activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		return &activities.GenerateAnswerResult{
			Text:         "See https://example.com/a",
			CitationURLs: []string{"https://example.com/a", "https://example.com/b"},
			Status:       agents.StatusCompleted,
		}, nil
	}

	out := q.run(t, QuestionInput{Question: "q"})

	require.True(t, out.Success)
	require.Len(t, q.linkInputs, 1)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, q.linkInputs[0].URLs)
}

func TestQuestionWorkflowGeneratorUnavailableStopsImmediately(t *testing.T) {
	q := newQuestionEnv(t)
	q.generate = func(int, activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		return &activities.GenerateAnswerResult{
			Status: agents.StatusFailed,
			Error:  "model overloaded",
		}, nil
	}

	out := q.run(t, QuestionInput{Question: "q", MaxAttempts: 5})

	assert.False(t, out.Success)
	assert.Equal(t, FailureGeneratorUnavailable, out.FailureKind)
	assert.Equal(t, "model overloaded", out.ErrorMessage)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1, q.genCalls, "a failed generator must not be called again")
	assert.Equal(t, 0, q.checkCalls)
	assert.Equal(t, 0, q.linkCalls)
}

func TestQuestionWorkflowFeedsRejectionBackToGenerator(t *testing.T) {
	q := newQuestionEnv(t)
	q.check = func(n int, in activities.CheckAnswerInput) (*activities.CheckAnswerResult, error) {
		if n == 1 {
			return &activities.CheckAnswerResult{Valid: false, Feedback: "INVALID: figures are wrong"}, nil
		}
		return &activities.CheckAnswerResult{Valid: true}, nil
	}

	out := q.run(t, QuestionInput{Question: "q"})

	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 2, q.genCalls)
	assert.Equal(t, 1, q.linkCalls)

	require.Len(t, q.genInputs, 2)
	assert.Empty(t, q.genInputs[0].History)
	require.Len(t, q.genInputs[1].History, 1)
	fb := q.genInputs[1].History[0]
	assert.Equal(t, 1, fb.Attempt)
	assert.Equal(t, RejectedByAnswerChecker, fb.RejectedBy)
	assert.Contains(t, fb.Reason, "figures are wrong")
}

func TestQuestionWorkflowAccumulatedLinksRescueAttempt(t *testing.T) {
	q := newQuestionEnv(t)
	// The validator reports the attempt as not passing on its own while
	// still surfacing one reachable URL; the accumulator turns that into a
	// success with the full accumulated set.
	q.links = func(_ int, in activities.CheckLinksInput) (*activities.CheckLinksResult, error) {
		return &activities.CheckLinksResult{
			AllValid: false,
			Valid:    []string{"https://example.com/proven"},
			Feedback: "Found 1 valid links (removed 1 invalid)",
		}, nil
	}

	out := q.run(t, QuestionInput{Question: "q"})

	assert.True(t, out.Success)
	assert.Equal(t, []string{"https://example.com/proven"}, out.Links)
	assert.Equal(t, 1, out.Attempts)
}

func TestQuestionWorkflowTrimsSentencePunctuationBeforeLinkCheck(t *testing.T) {
	q := newQuestionEnv(t)
	q.generate = func(int, activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		return &activities.GenerateAnswerResult{
			Text:   "AI is useful [1]. See https://example.com/doc.",
			Status: agents.StatusCompleted,
		}, nil
	}

	out := q.run(t, QuestionInput{Question: "q"})

	require.True(t, out.Success)
	require.Len(t, q.linkInputs, 1)
	assert.Equal(t, []string{"https://example.com/doc"}, q.linkInputs[0].URLs,
		"a sentence-final URL must be probed without its trailing period")
}

func TestQuestionWorkflowUnionsLinksAcrossAttempts(t *testing.T) {
	q := newQuestionEnv(t)
	q.generate = func(n int, in activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		if n == 1 {
			return &activities.GenerateAnswerResult{
				Text:   "See https://example.com/first",
				Status: agents.StatusCompleted,
			}, nil
		}
		// The regenerated answer re-cites the first attempt's URL alongside
		// a new one.
		return &activities.GenerateAnswerResult{
			Text:   "See https://example.com/first and https://example.com/second",
			Status: agents.StatusCompleted,
		}, nil
	}
	q.links = func(n int, in activities.CheckLinksInput) (*activities.CheckLinksResult, error) {
		if n == 1 {
			return &activities.CheckLinksResult{
				AllValid: false,
				Feedback: "no valid documentation URLs found after validation",
			}, nil
		}
		return &activities.CheckLinksResult{AllValid: true, Valid: in.URLs}, nil
	}

	out := q.run(t, QuestionInput{Question: "q"})

	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, []string{"https://example.com/first", "https://example.com/second"}, out.Links,
		"the final link list is the union of every attempt's proven links")
}

func TestQuestionWorkflowDefaultAttemptBudget(t *testing.T) {
	q := newQuestionEnv(t)
	q.check = func(int, activities.CheckAnswerInput) (*activities.CheckAnswerResult, error) {
		return &activities.CheckAnswerResult{Valid: false, Feedback: "INVALID: never good enough"}, nil
	}

	out := q.run(t, QuestionInput{Question: "q"})

	assert.False(t, out.Success)
	assert.Equal(t, FailureAttemptsExhausted, out.FailureKind)
	assert.Equal(t, 10, out.Attempts)
	assert.Equal(t, 10, q.genCalls)
}

func TestQuestionWorkflowLinkRejectionCarriesProbeStatuses(t *testing.T) {
	q := newQuestionEnv(t)
	q.generate = func(int, activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		return &activities.GenerateAnswerResult{
			Text:   "See https://dead.example.com/doc",
			Status: agents.StatusCompleted,
		}, nil
	}
	q.links = func(n int, in activities.CheckLinksInput) (*activities.CheckLinksResult, error) {
		if n == 1 {
			return &activities.CheckLinksResult{
				AllValid: false,
				Feedback: "no valid documentation URLs found after validation",
				Statuses: map[string]string{"https://dead.example.com/doc": "HTTP 404"},
			}, nil
		}
		return &activities.CheckLinksResult{AllValid: true, Valid: in.URLs}, nil
	}

	out := q.run(t, QuestionInput{Question: "q"})

	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Attempts)

	require.Len(t, q.genInputs, 2)
	require.Len(t, q.genInputs[1].History, 1)
	fb := q.genInputs[1].History[0]
	assert.Equal(t, RejectedByLinkChecker, fb.RejectedBy)
	assert.Contains(t, fb.Reason, "https://dead.example.com/doc (HTTP 404)")
}

func TestQuestionWorkflowCharLimitSkipsCollaborators(t *testing.T) {
	q := newQuestionEnv(t)
	q.generate = func(n int, in activities.GenerateAnswerInput) (*activities.GenerateAnswerResult, error) {
		if n == 1 {
			return &activities.GenerateAnswerResult{
				Text:   "This answer is far too long for the configured limit and must be rejected before any checking.",
				Status: agents.StatusCompleted,
			}, nil
		}
		return &activities.GenerateAnswerResult{
			Text:   "Short. https://example.com/d",
			Status: agents.StatusCompleted,
		}, nil
	}

	out := q.run(t, QuestionInput{Question: "q", CharLimit: 40})

	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 1, q.checkCalls, "over-limit attempt must not reach the checker")
	require.Len(t, q.genInputs, 2)
	require.Len(t, q.genInputs[1].History, 1)
	assert.Equal(t, RejectedByLengthCheck, q.genInputs[1].History[0].RejectedBy)
}

func TestQuestionWorkflowExhaustsAttempts(t *testing.T) {
	q := newQuestionEnv(t)
	q.check = func(int, activities.CheckAnswerInput) (*activities.CheckAnswerResult, error) {
		return &activities.CheckAnswerResult{Valid: false, Feedback: "INVALID: never good enough"}, nil
	}

	out := q.run(t, QuestionInput{Question: "q", MaxAttempts: 2})

	assert.False(t, out.Success)
	assert.Equal(t, FailureAttemptsExhausted, out.FailureKind)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 2, q.genCalls)
	assert.Contains(t, out.ErrorMessage, RejectedByAnswerChecker)
	assert.Contains(t, out.ErrorMessage, "never good enough")
}

func TestQuestionWorkflowCollaboratorErrorIsTerminal(t *testing.T) {
	q := newQuestionEnv(t)
	q.check = func(int, activities.CheckAnswerInput) (*activities.CheckAnswerResult, error) {
		return nil, errors.New("checker exploded")
	}

	out := q.run(t, QuestionInput{Question: "q", MaxAttempts: 3})

	assert.False(t, out.Success)
	assert.Equal(t, FailureInternal, out.FailureKind)
	assert.Contains(t, out.ErrorMessage, "checker exploded")
	assert.Equal(t, 1, q.genCalls, "collaborator errors are not retried")
}
