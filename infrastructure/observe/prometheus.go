// Package observe provides Prometheus instrumentation for evaluation runs.
package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for analysis request counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
)

// EvalMetrics tracks model request volume, latency, and cache behavior
// during an evaluation run.
type EvalMetrics struct {
	analysisRequests *prometheus.CounterVec
	analysisLatency  *prometheus.HistogramVec
	samplesEvaluated prometheus.Counter
	samplesSkipped   prometheus.Counter
}

// NewEvalMetrics registers the run metrics with the given registerer. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewEvalMetrics(reg prometheus.Registerer) *EvalMetrics {
	factory := promauto.With(reg)
	return &EvalMetrics{
		analysisRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notelens_analysis_requests_total",
				Help: "Analysis requests per model and outcome.",
			},
			[]string{"model", "outcome"},
		),
		analysisLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "notelens_analysis_duration_seconds",
				Help: "Wall-clock duration of a single video analysis.",
				// Video analysis spans seconds to minutes; the default
				// buckets top out far too low.
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 120, 300},
			},
			[]string{"model"},
		),
		samplesEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "notelens_samples_evaluated_total",
			Help: "Dataset samples processed by the run.",
		}),
		samplesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "notelens_samples_skipped_total",
			Help: "Dataset samples skipped for missing reference notes.",
		}),
	}
}

// RecordAnalysis records one completed analysis request.
func (m *EvalMetrics) RecordAnalysis(model, outcome string, duration time.Duration) {
	m.analysisRequests.WithLabelValues(model, outcome).Inc()
	if outcome != OutcomeCached {
		m.analysisLatency.WithLabelValues(model).Observe(duration.Seconds())
	}
}

// RecordSample records one processed dataset sample.
func (m *EvalMetrics) RecordSample() { m.samplesEvaluated.Inc() }

// RecordSkip records a sample skipped for lacking a reference note.
func (m *EvalMetrics) RecordSkip() { m.samplesSkipped.Inc() }
