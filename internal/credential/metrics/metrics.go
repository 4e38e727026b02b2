// Package metrics exposes Prometheus instrumentation for the credential
// verification lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SubmissionsTotal prometheus.Counter
	TransitionsTotal *prometheus.CounterVec
	FailuresTotal    *prometheus.CounterVec
}

// New registers credential metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lexara_credential_submissions_total",
			Help: "Credential submissions accepted into the pending state.",
		}),
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lexara_credential_transitions_total",
			Help: "Credential lifecycle transitions by target status.",
		}, []string{"to"}),
		FailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lexara_credential_failures_total",
			Help: "Failed credential operations by reason.",
		}, []string{"reason"}),
	}
}

// RecordTransition counts a completed lifecycle transition.
func (m *Metrics) RecordTransition(to string) {
	m.TransitionsTotal.WithLabelValues(to).Inc()
}

// RecordFailure counts a failed operation.
func (m *Metrics) RecordFailure(reason string) {
	m.FailuresTotal.WithLabelValues(reason).Inc()
}
