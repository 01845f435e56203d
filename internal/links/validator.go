// Package links validates documentation URLs cited by generated answers and
// accumulates the confirmed ones across retry attempts.
package links

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FeedbackNoURLs is the fixed rejection for answers carrying no citations.
const FeedbackNoURLs = "no documentation URLs provided"

// Result is the outcome of validating one attempt's candidate URLs.
type Result struct {
	// AllValid reports whether the attempt passed link validation. The
	// policy is lenient: one reachable URL is enough, unreachable ones are
	// dropped and noted in Feedback.
	AllValid bool
	Valid    []string
	Feedback string
	// Statuses records the per-URL probe outcome, e.g. "HTTP 404" or
	// "Error: connection refused".
	Statuses map[string]string
}

// Validator partitions candidate URLs into reachable and unreachable using
// a Prober. Pure decision logic; all I/O goes through the prober.
type Validator struct {
	prober Prober
	logger *zap.Logger
}

func NewValidator(prober Prober, logger *zap.Logger) *Validator {
	return &Validator{prober: prober, logger: logger}
}

// Validate probes every candidate URL. Zero candidates is a hard failure:
// an answer with no citable links can never pass on its own (accumulation
// at the workflow level may still rescue it).
func (v *Validator) Validate(ctx context.Context, urls []string) Result {
	if len(urls) == 0 {
		v.logger.Info("Link validation rejected: no candidate URLs")
		return Result{AllValid: false, Feedback: FeedbackNoURLs}
	}

	res := Result{Statuses: make(map[string]string, len(urls))}
	invalid := 0

	for _, url := range urls {
		status, err := v.prober.Probe(ctx, url)
		switch {
		case err != nil:
			res.Statuses[url] = fmt.Sprintf("Error: %v", err)
			invalid++
			v.logger.Info("Link probe failed", zap.String("url", url), zap.Error(err))
		case status == 200:
			res.Statuses[url] = "HTTP 200"
			res.Valid = append(res.Valid, url)
			v.logger.Info("Link probe ok", zap.String("url", url))
		default:
			res.Statuses[url] = fmt.Sprintf("HTTP %d", status)
			invalid++
			v.logger.Info("Link probe rejected", zap.String("url", url), zap.Int("status", status))
		}
	}

	if len(res.Valid) == 0 {
		res.Feedback = "no valid documentation URLs found after validation"
		return res
	}

	res.AllValid = true
	if invalid > 0 {
		res.Feedback = fmt.Sprintf("Found %d valid links (removed %d invalid)", len(res.Valid), invalid)
	} else {
		res.Feedback = fmt.Sprintf("All %d links are valid", len(res.Valid))
	}
	return res
}
