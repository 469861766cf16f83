package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HotPoolLoadTotal tracks hot-pool construction, split by whether it
	// was read from the mirror key or rebuilt from the content index.
	HotPoolLoadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_hot_pool_load_total",
			Help: "Total number of hot pool loads by source",
		},
		[]string{"source"}, // "cached", "rebuilt"
	)

	HotPoolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_hot_pool_size",
			Help: "Number of entries currently in the hot pool mirror",
		},
	)

	// RecallDuration tracks similarity recall latency by outcome.
	RecallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_recall_duration_seconds",
			Help:    "Duration of similarity recall lookups",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"outcome"}, // "hit", "empty", "error"
	)

	// LedgerMergeTotal tracks merge protocol invocations by shard engine
	// and outcome.
	LedgerMergeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_ledger_merge_total",
			Help: "Total number of ledger merge operations",
		},
		[]string{"shard", "outcome"}, // shard: v1/v2; outcome: merged, empty_ledger, error
	)

	LedgerDrainTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_ledger_drain_total",
			Help: "Total number of ledger drain (read) operations",
		},
		[]string{"shard", "outcome"}, // outcome: pending, reseeded
	)

	// IngestDebounceDroppedTotal tracks behavior events dropped because a
	// debounce marker was already set.
	IngestDebounceDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_ingest_debounce_dropped_total",
			Help: "Total number of behavior events dropped by the debounce guard",
		},
		[]string{"operation"},
	)

	IngestEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_ingest_enqueued_total",
			Help: "Total number of behavior events enqueued to the task stream",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(HotPoolLoadTotal)
	prometheus.MustRegister(HotPoolSize)
	prometheus.MustRegister(RecallDuration)
	prometheus.MustRegister(LedgerMergeTotal)
	prometheus.MustRegister(LedgerDrainTotal)
	prometheus.MustRegister(IngestDebounceDroppedTotal)
	prometheus.MustRegister(IngestEnqueuedTotal)
}
