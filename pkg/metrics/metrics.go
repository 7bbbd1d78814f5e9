// Package metrics registers the Prometheus collectors of the session backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EngineInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarizer_engine_invocations_total",
		Help: "Engine invocations by subcommand and outcome",
	}, []string{"subcommand", "outcome"})

	EngineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "summarizer_engine_duration_seconds",
		Help:    "Wall time of engine invocations",
		Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"subcommand"})

	IterationsAdvanced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summarizer_iterations_advanced_total",
		Help: "Iterations appended after successful feedback rounds",
	})

	FeedbackRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarizer_feedback_rounds_total",
		Help: "RecordFeedback calls by outcome",
	}, []string{"outcome"})

	TemplateColdStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarizer_template_cold_starts_total",
		Help: "Template cold starts by variant and outcome",
	}, []string{"variant", "outcome"})

	TemplateCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summarizer_template_cache_lookups_total",
		Help: "Template cache lookups by result",
	}, []string{"result"})
)

// Outcome labels
const (
	OutcomeSuccess       = "success"
	OutcomeFailed        = "failed"
	OutcomeInvalidResult = "invalid_result"
	OutcomeTimeout       = "timeout"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer returns a server exposing /metrics on addr. The caller owns its lifecycle.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
