// Package metrics provides the centralized Prometheus metrics registry for
// the prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quiniela",
		Name:      "predictions_total",
		Help:      "Total number of match predictions produced",
	})
	PredictionsDegradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quiniela",
		Name:      "predictions_degraded_total",
		Help:      "Predictions produced with missing optional inputs",
	})
	FeatureCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quiniela",
		Name:      "feature_cache_hits_total",
		Help:      "Feature vector cache hits",
	})
	FeatureCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quiniela",
		Name:      "feature_cache_misses_total",
		Help:      "Feature vector cache misses",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quiniela",
		Name:      "prediction_duration_seconds",
		Help:      "Latency of the full per-match prediction pipeline",
		Buckets:   prometheus.DefBuckets,
	})
)

// Registry returns the global metrics registry, creating and registering
// all metrics on first use.
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			PredictionsTotal,
			PredictionsDegradedTotal,
			ModelsSkippedTotal,
			SlipsBuiltTotal,
			BetStructuresTotal,
			TrainingRunsTotal,
			FeatureCacheHitsTotal,
			FeatureCacheMissesTotal,
			ActiveModels,
			LastTrainingRows,
			PredictionDuration,
			TrainingDuration,
		)
	})
	return registry
}

// Handler returns an HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}
