package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/answerdesk/orchestrator/internal/activities"
)

const defaultSheetParallelism = 4

// SheetWorkflow processes one spreadsheet: classify the columns, then run a
// child QuestionWorkflow for every row that still needs an answer. Rows run
// in bounded parallel batches; one bad row never stops the sheet.
func SheetWorkflow(ctx workflow.Context, input SheetInput) (SheetResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting SheetWorkflow",
		"sheet", input.SheetName,
		"rows", len(input.Rows),
	)

	result := SheetResult{SheetName: input.SheetName}

	if len(input.Headers) == 0 {
		result.Skipped = true
		result.SkipNote = "sheet has no header row"
		return result, nil
	}

	aCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})

	var classified activities.ClassifyColumnsResult
	err := workflow.ExecuteActivity(aCtx, ClassifyColumnsActivity, activities.ClassifyColumnsInput{
		Headers:    input.Headers,
		SampleRows: sampleRows(input.Headers, input.Rows, 3),
	}).Get(aCtx, &classified)
	if err != nil {
		result.Skipped = true
		result.SkipNote = fmt.Sprintf("column classification failed: %v", err)
		logger.Warn("SheetWorkflow: classification failed", "error", err)
		return result, nil
	}

	mapping := classified.Mapping
	if !mapping.Usable() {
		result.Skipped = true
		result.SkipNote = "no usable question and answer columns"
		logger.Warn("SheetWorkflow: skipping sheet",
			"sheet", input.SheetName,
			"mapping_question", mapping.Question,
			"mapping_answer", mapping.Answer,
		)
		return result, nil
	}

	logger.Info("SheetWorkflow: columns resolved",
		"question", mapping.Question,
		"answer", mapping.Answer,
		"docs", mapping.Docs,
		"used_fallback", classified.UsedFallback,
	)

	parallel := input.MaxParallel
	if parallel <= 0 {
		parallel = defaultSheetParallelism
	}

	parentID := workflow.GetInfo(ctx).WorkflowExecution.ID

	for start := 0; start < len(input.Rows); start += parallel {
		end := start + parallel
		if end > len(input.Rows) {
			end = len(input.Rows)
		}

		type pending struct {
			row    SheetRowResult
			future workflow.ChildWorkflowFuture
		}
		batch := make([]pending, 0, end-start)

		for _, row := range input.Rows[start:end] {
			question := strings.TrimSpace(row.Cells[mapping.Question])
			existing := strings.TrimSpace(row.Cells[mapping.Answer])

			rr := SheetRowResult{Index: row.Index, Question: question}
			switch {
			case question == "":
				rr.Skipped = true
				rr.SkipNote = "empty question cell"
			case existing != "":
				rr.Skipped = true
				rr.SkipNote = "answer already present"
			default:
				childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
					WorkflowID: fmt.Sprintf("%s-row-%d", parentID, row.Index),
				})
				batch = append(batch, pending{
					row: rr,
					future: workflow.ExecuteChildWorkflow(childCtx, QuestionWorkflow, QuestionInput{
						Question:    question,
						Context:     input.Context,
						CharLimit:   input.CharLimit,
						MaxAttempts: input.MaxAttempts,
					}),
				})
				continue
			}
			result.Rows = append(result.Rows, rr)
		}

		for _, p := range batch {
			rr := p.row
			var qr QuestionResult
			if err := p.future.Get(ctx, &qr); err != nil {
				qr = QuestionResult{
					FailureKind:  FailureInternal,
					ErrorMessage: err.Error(),
				}
			}
			rr.Result = qr
			if qr.Success {
				result.Answered++
			} else {
				result.Failed++
			}
			result.Rows = append(result.Rows, rr)
		}
	}

	logger.Info("SheetWorkflow complete",
		"sheet", input.SheetName,
		"answered", result.Answered,
		"failed", result.Failed,
	)
	return result, nil
}

// sampleRows returns up to n rows of cell values in header order for the
// classifier prompt.
func sampleRows(headers []string, rows []SheetRow, n int) [][]string {
	if len(rows) < n {
		n = len(rows)
	}
	out := make([][]string, 0, n)
	for _, row := range rows[:n] {
		vals := make([]string, len(headers))
		for i, h := range headers {
			vals[i] = row.Cells[h]
		}
		out = append(out, vals)
	}
	return out
}
