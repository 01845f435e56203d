package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/answerdesk/orchestrator/internal/activities"
	"github.com/answerdesk/orchestrator/internal/agents"
	"github.com/answerdesk/orchestrator/internal/extract"
	"github.com/answerdesk/orchestrator/internal/links"
)

// QuestionWorkflow answers one question with a bounded retry loop:
// generate, clean, fact-check, validate documentation links. Rejected
// attempts feed their feedback into the next generation. Valid links found
// along the way accumulate, so a later attempt can succeed on the strength
// of links an earlier attempt already proved reachable.
//
// The workflow itself never fails: every terminal state is a QuestionResult
// with a nil error.
func QuestionWorkflow(ctx workflow.Context, input QuestionInput) (QuestionResult, error) {
	logger := workflow.GetLogger(ctx)

	maxAttempts := input.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	logger.Info("Starting QuestionWorkflow",
		"question_length", len(input.Question),
		"max_attempts", maxAttempts,
	)

	// The loop owns retrying; a failed activity call must not be retried
	// underneath it.
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var history []agents.AttemptFeedback
	accumulated := links.NewAccumulator()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		logger.Info("Question attempt starting", "attempt", attempt)

		var gen activities.GenerateAnswerResult
		err := workflow.ExecuteActivity(ctx, GenerateAnswerActivity, activities.GenerateAnswerInput{
			Question:  input.Question,
			Context:   input.Context,
			CharLimit: input.CharLimit,
			History:   history,
		}).Get(ctx, &gen)
		if err != nil {
			return finish(ctx, input, QuestionResult{
				Attempts:     attempt,
				FailureKind:  FailureInternal,
				ErrorMessage: err.Error(),
			})
		}

		// A generator that cannot produce an answer now will not produce
		// one on a retry with the same prompt. Stop immediately.
		if gen.Status != agents.StatusCompleted {
			logger.Warn("Generator unavailable, stopping", "error", gen.Error)
			return finish(ctx, input, QuestionResult{
				Attempts:     attempt,
				FailureKind:  FailureGeneratorUnavailable,
				ErrorMessage: gen.Error,
			})
		}

		answer, _ := extract.Extract(gen.Text)
		// The validation set is the punctuation-trimmed flavor; probing a
		// sentence-final URL with its period attached would 404 a good link.
		urls := mergeURLs(extract.CitedURLs(gen.Text), gen.CitationURLs)

		if input.CharLimit > 0 && len(answer) > input.CharLimit {
			reason := fmt.Sprintf("answer is %d characters, limit is %d", len(answer), input.CharLimit)
			logger.Info("Attempt rejected by length check", "attempt", attempt, "reason", reason)
			history = append(history, agents.AttemptFeedback{
				Attempt:    attempt,
				Answer:     answer,
				Reason:     reason,
				RejectedBy: RejectedByLengthCheck,
			})
			continue
		}

		var verdict activities.CheckAnswerResult
		err = workflow.ExecuteActivity(ctx, CheckAnswerActivity, activities.CheckAnswerInput{
			Question: input.Question,
			Answer:   answer,
		}).Get(ctx, &verdict)
		if err != nil {
			return finish(ctx, input, QuestionResult{
				Attempts:     attempt,
				FailureKind:  FailureInternal,
				ErrorMessage: err.Error(),
			})
		}
		if !verdict.Valid {
			logger.Info("Attempt rejected by answer checker", "attempt", attempt)
			history = append(history, agents.AttemptFeedback{
				Attempt:    attempt,
				Answer:     answer,
				Reason:     verdict.Feedback,
				RejectedBy: RejectedByAnswerChecker,
			})
			continue
		}

		var linkRes activities.CheckLinksResult
		err = workflow.ExecuteActivity(ctx, CheckLinksActivity, activities.CheckLinksInput{
			URLs: urls,
		}).Get(ctx, &linkRes)
		if err != nil {
			return finish(ctx, input, QuestionResult{
				Attempts:     attempt,
				FailureKind:  FailureInternal,
				ErrorMessage: err.Error(),
			})
		}

		accumulated.Add(linkRes.Valid)

		// The answer passed fact-checking. It stands if this attempt's links
		// validated, or if any earlier attempt already contributed reachable
		// links.
		if linkRes.AllValid || !accumulated.IsEmpty() {
			result := QuestionResult{
				Success:  true,
				Answer:   answer,
				Links:    accumulated.Links(),
				Attempts: attempt,
			}
			logger.Info("QuestionWorkflow succeeded",
				"attempt", attempt,
				"links", len(result.Links),
			)
			return finish(ctx, input, result)
		}

		reason := linkRejectionReason(linkRes, urls)
		logger.Info("Attempt rejected by link checker", "attempt", attempt, "reason", reason)
		history = append(history, agents.AttemptFeedback{
			Attempt:    attempt,
			Answer:     answer,
			Reason:     reason,
			RejectedBy: RejectedByLinkChecker,
		})
	}

	result := QuestionResult{
		Attempts:    maxAttempts,
		FailureKind: FailureAttemptsExhausted,
	}
	if len(history) > 0 {
		last := history[len(history)-1]
		result.ErrorMessage = fmt.Sprintf("last rejection (%s): %s", last.RejectedBy, last.Reason)
	}
	logger.Warn("QuestionWorkflow exhausted attempts", "max_attempts", maxAttempts)
	return finish(ctx, input, result)
}

// finish schedules outcome persistence without waiting on it and returns
// the terminal result.
func finish(ctx workflow.Context, input QuestionInput, result QuestionResult) (QuestionResult, error) {
	status := "failed"
	if result.Success {
		status = "success"
	}

	detached, _ := workflow.NewDisconnectedContext(ctx)
	detached = workflow.WithActivityOptions(detached, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
	workflow.ExecuteActivity(detached, RecordOutcomeActivity, activities.RecordOutcomeInput{
		WorkflowID:  workflow.GetInfo(ctx).WorkflowExecution.ID,
		Question:    input.Question,
		Status:      status,
		FailureKind: result.FailureKind,
		Answer:      result.Answer,
		Links:       result.Links,
		Attempts:    result.Attempts,
	})

	return result, nil
}

// linkRejectionReason folds the validator feedback and the per-URL probe
// statuses into one line the generator can act on.
func linkRejectionReason(res activities.CheckLinksResult, urls []string) string {
	var bad []string
	for _, u := range urls {
		if st, ok := res.Statuses[u]; ok && st != "HTTP 200" {
			bad = append(bad, fmt.Sprintf("%s (%s)", u, st))
		}
	}
	if len(bad) == 0 {
		return res.Feedback
	}
	return fmt.Sprintf("%s: %s", res.Feedback, strings.Join(bad, ", "))
}

// mergeURLs appends extras not already present, preserving order.
func mergeURLs(urls, extras []string) []string {
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		seen[u] = true
	}
	for _, u := range extras {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}
