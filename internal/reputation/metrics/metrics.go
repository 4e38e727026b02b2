// Package metrics provides Prometheus metrics for the reputation event log.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all event log metrics.
type Metrics struct {
	EventsAppendedTotal *prometheus.CounterVec // appended events by event type
	AppendFailuresTotal *prometheus.CounterVec // failed appends by failure reason
	AppendDurationSecs  prometheus.Histogram   // append latency including anchoring
	QueryDurationSecs   prometheus.Histogram   // event query latency
	ScoreInvalidations  prometheus.Counter     // synchronous score cache invalidations
}

// New creates a Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsAppendedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lexara_reputation_events_appended_total",
			Help: "Total reputation events appended by event type",
		}, []string{"type"}),

		AppendFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lexara_reputation_append_failures_total",
			Help: "Total failed appends by reason (validation, anchor, storage)",
		}, []string{"reason"}),

		AppendDurationSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexara_reputation_append_duration_seconds",
			Help:    "Duration of append operations including anchoring",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		QueryDurationSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexara_reputation_query_duration_seconds",
			Help:    "Duration of event log queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		ScoreInvalidations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lexara_reputation_score_invalidations_total",
			Help: "Total synchronous score cache invalidations after append",
		}),
	}
}

// RecordAppend records a successful append for the given event type.
func (m *Metrics) RecordAppend(eventType string) {
	m.EventsAppendedTotal.WithLabelValues(eventType).Inc()
}

// RecordAppendFailure records a failed append for the given reason.
func (m *Metrics) RecordAppendFailure(reason string) {
	m.AppendFailuresTotal.WithLabelValues(reason).Inc()
}
