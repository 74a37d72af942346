package watcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	mergeInProgress prometheus.Gauge
	changes         prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	factory := promauto.With(registerer)

	return &metrics{
		mergeInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "branchguard",
			Subsystem: "repository",
			Name:      "merge_in_progress",
			Help:      "1 while the repository has an unfinished merge.",
		}),
		changes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "branchguard",
			Subsystem: "repository",
			Name:      "state_changes_total",
			Help:      "Branch or merge state changes observed on disk.",
		}),
	}
}
