package workspace

import (
	"time"

	"github.com/branchguard/branchguard/internal/history"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	factory := promauto.With(registerer)

	return &metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "branchguard",
			Subsystem: "workspace",
			Name:      "operations_total",
			Help:      "Mutating repository operations by outcome.",
		}, []string{"operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "branchguard",
			Subsystem: "workspace",
			Name:      "operation_duration_seconds",
			Help:      "Time spent holding the repository lock per operation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), //nolint:mnd //10ms..20s
		}, []string{"operation"}),
	}
}

func (m *metrics) observe(op history.Operation, outcome history.Outcome, started time.Time) {
	m.operations.WithLabelValues(string(op), string(outcome)).Inc()
	m.duration.WithLabelValues(string(op)).Observe(time.Since(started).Seconds())
}
