// Package metrics holds the Prometheus collectors for the knowledge
// pipeline. Every method is safe to call on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tlav"

// Outcome labels for scored responses.
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeError     = "error"
)

// Metrics holds all collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	responses     *prometheus.CounterVec
	tracesApplied prometheus.Counter
	tracesSkipped prometheus.Counter
	assessments   *prometheus.CounterVec
	reports       *prometheus.CounterVec
	mastery       prometheus.Histogram
}

// New creates the collectors on a fresh registry. Process and Go runtime
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "responses_processed_total",
				Help:      "Total number of student responses scored",
			},
			[]string{"outcome"},
		),
		tracesApplied: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "traces_applied_total",
				Help:      "Total number of traces applied to student profiles",
			},
		),
		tracesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "traces_skipped_total",
				Help:      "Total number of error or empty traces not applied",
			},
		),
		assessments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_processed_total",
				Help:      "Total number of assessments decomposed",
			},
			[]string{"status"},
		),
		reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_generated_total",
				Help:      "Total number of assessment reports generated",
			},
			[]string{"status"},
		),
		mastery: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "posterior_mastery",
				Help:      "Posterior mastery values produced by knowledge updates",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
			},
		),
	}

	registry.MustRegister(m.responses, m.tracesApplied, m.tracesSkipped, m.assessments, m.reports, m.mastery)
	if withRuntime {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ResponseScored counts a scored response by outcome.
func (m *Metrics) ResponseScored(outcome string) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(outcome).Inc()
}

// MasteryObserved records a posterior mastery value.
func (m *Metrics) MasteryObserved(v float64) {
	if m == nil {
		return
	}
	m.mastery.Observe(v)
}

// TraceApplied counts a trace applied to a profile.
func (m *Metrics) TraceApplied() {
	if m == nil {
		return
	}
	m.tracesApplied.Inc()
}

// TraceSkipped counts a trace that was not applied.
func (m *Metrics) TraceSkipped() {
	if m == nil {
		return
	}
	m.tracesSkipped.Inc()
}

// AssessmentProcessed counts a processed assessment.
func (m *Metrics) AssessmentProcessed(ok bool) {
	if m == nil {
		return
	}
	m.assessments.WithLabelValues(status(ok)).Inc()
}

// ReportGenerated counts a generated report.
func (m *Metrics) ReportGenerated(ok bool) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(status(ok)).Inc()
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
