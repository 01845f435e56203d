package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/answerdesk/orchestrator/internal/links"
	"github.com/answerdesk/orchestrator/internal/metrics"
)

// CheckLinks probes the candidate documentation URLs. Probe failures are
// per-URL data, not activity errors.
func (a *Activities) CheckLinks(ctx context.Context, input CheckLinksInput) (*CheckLinksResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("CheckLinks: starting", "url_count", len(input.URLs))

	res := a.validator.Validate(ctx, input.URLs)

	for _, status := range res.Statuses {
		if status == "HTTP 200" {
			metrics.LinkProbes.WithLabelValues("ok").Inc()
		} else {
			metrics.LinkProbes.WithLabelValues("rejected").Inc()
		}
	}
	if !res.AllValid {
		reason := "invalid_links"
		if res.Feedback == links.FeedbackNoURLs {
			reason = "no_urls"
		}
		metrics.LinkValidationRejections.WithLabelValues(reason).Inc()
	}

	logger.Info("CheckLinks: complete",
		"all_valid", res.AllValid,
		"valid_count", len(res.Valid),
	)
	return &CheckLinksResult{
		AllValid: res.AllValid,
		Valid:    res.Valid,
		Feedback: res.Feedback,
		Statuses: res.Statuses,
	}, nil
}
