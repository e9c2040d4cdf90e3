// Package metrics exposes Prometheus collectors for the frame pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stages, used as the "stage" label.
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StagePublish = "publish"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	stageFailures   *prometheus.CounterVec
	cleanupFailures prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "framegrab_requests_total",
			Help: "Processed videos by outcome.",
		}, []string{"outcome"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "framegrab_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		stageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "framegrab_stage_failures_total",
			Help: "Pipeline stage failures.",
		}, []string{"stage"}),
		cleanupFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "framegrab_cleanup_failures_total",
			Help: "Transient files that could not be removed.",
		}),
	}
}

// ObserveStage records the duration of one stage and whether it failed.
func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageFailures.WithLabelValues(stage).Inc()
	}
}

// RequestDone counts a finished operation as "success" or "error".
func (m *Metrics) RequestDone(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// CleanupFailed counts one failed transient-file removal.
func (m *Metrics) CleanupFailed() {
	if m == nil {
		return
	}
	m.cleanupFailures.Inc()
}

// Handler serves the collectors in g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
