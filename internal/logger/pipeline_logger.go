// Package logger provides pipeline-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// PipelineLogger provides dedicated logging for the prediction pipeline.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogPrediction logs a completed match prediction.
func (pl *PipelineLogger) LogPrediction(matchID string, predicted string, confidence float64, modelsEvaluated, modelsSkipped int, cacheHit bool, latencyMs float64) {
	pl.WithFields(logrus.Fields{
		"match_id":         matchID,
		"predicted":        predicted,
		"confidence":       confidence,
		"models_evaluated": modelsEvaluated,
		"models_skipped":   modelsSkipped,
		"cache_hit":        cacheHit,
		"latency_ms":       latencyMs,
	}).Info("Match prediction completed")
}

// LogDegradedInput logs optional sources missing at feature-build time.
func (pl *PipelineLogger) LogDegradedInput(matchID string, missingSources []models.FeatureSource) {
	pl.WithFields(logrus.Fields{
		"match_id":        matchID,
		"missing_sources": missingSources,
	}).Debug("Feature vector built with degraded inputs")
}

// LogSlipBuilt logs a finished slip and its bet structure.
func (pl *PipelineLogger) LogSlipBuilt(slipID, round string, primaryCount, secondaryCount int, strategy string, combinations int64, totalCost string) {
	pl.WithFields(logrus.Fields{
		"slip_id":      slipID,
		"round":        round,
		"primary":      primaryCount,
		"secondary":    secondaryCount,
		"strategy":     strategy,
		"combinations": combinations,
		"total_cost":   totalCost,
	}).Info("Slip and bet structure built")
}

// LogTrainingRun logs a model bank training run.
func (pl *PipelineLogger) LogTrainingRun(version string, rows, trained, failed int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"version":     version,
		"rows":        rows,
		"trained":     trained,
		"failed":      failed,
		"duration_ms": durationMs,
	}).Info("Training run finished")
}

// LogTrainingFailure logs a failed training run; the previous version stays
// active.
func (pl *PipelineLogger) LogTrainingFailure(reason string) {
	pl.WithFields(logrus.Fields{
		"reason": reason,
	}).Error("Training run failed, previous model version remains active")
}
