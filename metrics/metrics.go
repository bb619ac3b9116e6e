package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess   = "success"
	OutcomeEmpty     = "empty_input"
	OutcomeUpstream  = "upstream_error"
	OutcomeMalformed = "malformed_response"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Metrics is nil-safe so collaborators can run without a registry.
type Metrics struct {
	advisories  *prometheus.CounterVec
	advisoryDur prometheus.Histogram
	submissions *prometheus.CounterVec
	liveForms   prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		advisories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "advisory_requests_total",
			Help: "Advisory requests by outcome.",
		}, []string{"outcome"}),
		advisoryDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "advisory_request_duration_seconds",
			Help:    "Duration of calls to the completion service.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_submissions_total",
			Help: "Project quote submissions by outcome.",
		}, []string{"outcome"}),
		liveForms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quote_forms_live",
			Help: "Quote forms currently held in memory.",
		}),
	}
	reg.MustRegister(m.advisories, m.advisoryDur, m.submissions, m.liveForms)
	return m
}

func (m *Metrics) ObserveAdvisory(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.advisories.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.advisoryDur.Observe(d.Seconds())
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetLiveForms(n int) {
	if m == nil {
		return
	}
	m.liveForms.Set(float64(n))
}
