package exemplar

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesTotal is the number of exemplars currently held.
	EntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "voicaj",
			Subsystem: "exemplar",
			Name:      "entries",
			Help:      "Number of exemplars currently held in the store",
		},
	)

	// LookupsTotal counts similarity lookups.
	// Labels: match (exact, overlap, keyword, none)
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicaj",
			Subsystem: "exemplar",
			Name:      "lookups_total",
			Help:      "Total number of similarity lookups by match kind",
		},
		[]string{"match"},
	)

	// PersistTotal counts persistence attempts.
	// Labels: result (success, error)
	PersistTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voicaj",
			Subsystem: "exemplar",
			Name:      "persist_total",
			Help:      "Total number of store writes by result",
		},
		[]string{"result"},
	)

	// EvictionsTotal counts exemplars removed by the retention policy.
	EvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voicaj",
			Subsystem: "exemplar",
			Name:      "evictions_total",
			Help:      "Total number of exemplars evicted by the retention policy",
		},
	)
)
