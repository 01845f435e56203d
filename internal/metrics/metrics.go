// Package metrics exposes Prometheus metrics for the answer orchestration
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workflow metrics
	WorkflowsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answerdesk_workflows_completed_total",
			Help: "Total number of workflows completed",
		},
		[]string{"workflow_type", "status", "failure_kind"},
	)

	AttemptsPerQuestion = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "answerdesk_attempts_per_question",
			Help:    "Generation attempts consumed per question workflow",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 15},
		},
	)

	// Agent metrics
	AgentCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answerdesk_agent_calls_total",
			Help: "Total number of agent calls",
		},
		[]string{"agent_id", "status"},
	)

	AgentCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "answerdesk_agent_call_duration_ms",
			Help:    "Agent call duration in milliseconds",
			Buckets: []float64{100, 500, 1000, 2000, 5000, 10000, 30000, 120000},
		},
		[]string{"agent_id"},
	)

	// Link checker metrics
	LinkProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answerdesk_link_probes_total",
			Help: "Total number of documentation link probes",
		},
		[]string{"result"},
	)

	LinkValidationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answerdesk_link_validation_rejections_total",
			Help: "Attempts rejected by link validation",
		},
		[]string{"reason"},
	)

	// Sheet metrics
	SheetsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "answerdesk_sheets_skipped_total",
			Help: "Sheets skipped because no usable column mapping was found",
		},
	)
)
