package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("bogus", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerFormatters(t *testing.T) {
	log := NewLogger("info", "production")
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("info", "development")
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestPipelineLoggerPrediction(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogPrediction("match_001", "1", 0.62, 4, 1, false, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "match_001", logEntry["match_id"])
	assert.Equal(t, "1", logEntry["predicted"])
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, float64(4), logEntry["models_evaluated"])
}

func TestPipelineLoggerDegradedInput(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogDegradedInput("match_001", []models.FeatureSource{models.SourceMarket, models.SourceContext})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "match_001", logEntry["match_id"])
	assert.Equal(t, "debug", logEntry["level"])
	missing, ok := logEntry["missing_sources"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, missing, string(models.SourceMarket))
}

func TestPipelineLoggerSlipBuilt(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogSlipBuilt("slip_001", "2025-W36", 10, 5, "reduced", 81, "6.75")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "slip_001", logEntry["slip_id"])
	assert.Equal(t, "reduced", logEntry["strategy"])
	assert.Equal(t, float64(81), logEntry["combinations"])
	assert.Equal(t, "6.75", logEntry["total_cost"])
}

func TestPipelineLoggerTrainingRun(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogTrainingRun("v_001", 500, 4, 0, 842.0)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "v_001", logEntry["version"])
	assert.Equal(t, float64(500), logEntry["rows"])
}

func TestPipelineLoggerTrainingFailure(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogTrainingFailure("insufficient training rows")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "insufficient training rows", logEntry["reason"])
	assert.Equal(t, "error", logEntry["level"])
}
