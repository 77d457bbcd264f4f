// Package metrics defines model-bank and training metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Training counter vectors
var (
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiniela",
		Name:      "training_runs_total",
		Help:      "Training runs, by outcome",
	}, []string{"outcome"})

	ModelsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quiniela",
		Name:      "models_skipped_total",
		Help:      "Model evaluations skipped due to failure, timeout, or coverage",
	})
)

// Training gauges
var (
	ActiveModels = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quiniela",
		Name:      "active_models",
		Help:      "Number of classifiers in the active model version",
	})

	LastTrainingRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "quiniela",
		Name:      "last_training_rows",
		Help:      "Row count of the most recent successful training run",
	})
)

// Training histograms
var (
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quiniela",
		Name:      "training_duration_seconds",
		Help:      "Latency of model bank training runs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
)
