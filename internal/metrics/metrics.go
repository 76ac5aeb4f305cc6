// Package metrics exposes Prometheus collectors for dataset loads, index
// builds and recommendation queries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetRows reports row counts at each stage of the last load.
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommender_dataset_rows",
			Help: "Rows seen at each stage of the most recent dataset load",
		},
		[]string{"stage"},
	)

	// DatasetLoadsTotal counts dataset loads by outcome.
	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_dataset_loads_total",
			Help: "Total number of dataset loads",
		},
		[]string{"outcome"},
	)

	// IndexBuildsTotal counts similarity index constructions.
	IndexBuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_index_builds_total",
			Help: "Total number of similarity index builds",
		},
	)

	// IndexBuildDuration tracks how long index construction takes.
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_index_build_duration_seconds",
			Help:    "Duration of similarity index builds in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	// IndexCacheHitsTotal counts cache lookups that reused an index.
	IndexCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_index_cache_hits_total",
			Help: "Total number of index cache hits",
		},
	)

	// IndexCacheMissesTotal counts cache lookups that had to build.
	IndexCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_index_cache_misses_total",
			Help: "Total number of index cache misses",
		},
	)

	// RecommendationsTotal counts queries by outcome (hit, empty).
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_queries_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"outcome"},
	)

	// RecommendationDuration tracks query latency.
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)
)

// RecordDatasetRows publishes the row counts of one load.
func RecordDatasetRows(raw, sampled, clean int) {
	DatasetRows.WithLabelValues("raw").Set(float64(raw))
	DatasetRows.WithLabelValues("sampled").Set(float64(sampled))
	DatasetRows.WithLabelValues("clean").Set(float64(clean))
}

// RecordLoad counts a dataset load.
func RecordLoad(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	DatasetLoadsTotal.WithLabelValues(outcome).Inc()
}

// RecordIndexBuild records one index construction.
func RecordIndexBuild(d time.Duration) {
	IndexBuildsTotal.Inc()
	IndexBuildDuration.Observe(d.Seconds())
}

// RecordCacheLookup counts an index cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		IndexCacheHitsTotal.Inc()
		return
	}
	IndexCacheMissesTotal.Inc()
}

// RecordQuery records a recommendation query and how many results it gave.
func RecordQuery(results int, d time.Duration) {
	outcome := "hit"
	if results == 0 {
		outcome = "empty"
	}
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(d.Seconds())
}
