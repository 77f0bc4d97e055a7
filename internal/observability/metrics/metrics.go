package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes recorded by LeadMetrics.
const (
	OutcomeCreated     = "created"
	OutcomeInvalid     = "invalid"
	OutcomeBadRequest  = "bad_request"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

// LeadMetrics exposes counters/histograms for lead intake and diagnostics.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	storeLatency     *prometheus.HistogramVec
	probesTotal      *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mastry",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead form submissions by outcome",
		}, []string{"outcome"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mastry",
			Subsystem: "leads",
			Name:      "store_latency_seconds",
			Help:      "Latency of lead inserts into the document store",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "outcome"}),
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mastry",
			Subsystem: "diagnostics",
			Name:      "probes_total",
			Help:      "Database diagnostics probes by resulting status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.storeLatency, m.probesTotal)
	return m
}

func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveStoreLatency(backend, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(backend, outcome).Observe(seconds)
}

func (m *LeadMetrics) ObserveProbe(status string) {
	if m == nil {
		return
	}
	m.probesTotal.WithLabelValues(status).Inc()
}
