//go:build e2e

package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/betting"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/config"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/datasource"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/ensemble"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	applogger "github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/logger"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/metrics"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/modelbank"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/selection"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/service"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/test/helpers"
)

const e2eConfig = `
app:
  name: quiniela-predictor
  environment: development
  log_level: error
prediction:
  family_priors:
    poisson: 0.25
    linear: 0.30
    prototype: 0.15
    market: 0.30
betting:
  prizes:
    10: 15.0
    11: 25.0
    12: 80.0
    13: 500.0
    14: 15000.0
training:
  min_rows: 50
  holdout_fraction: 0.2
`

// TestFullRoundPipeline drives the whole stack the way the CLI does: load
// config, load a dataset file, train, and build a complete round.
func TestFullRoundPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	cfg, err := config.LoadAndValidate(helpers.WriteConfig(t, e2eConfig))
	require.NoError(t, err)

	log := applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	builder := features.NewBuilder()

	dataset, err := datasource.Load(helpers.WriteRound(t, helpers.SampleRound()), builder, log)
	require.NoError(t, err)

	bank := modelbank.NewBank(log, modelbank.DefaultFactory,
		time.Duration(cfg.Prediction.ModelTimeoutMillis)*time.Millisecond)
	bank.SetHoldoutFraction(cfg.Training.HoldoutFraction)
	combiner := ensemble.NewCombiner(log, ensemble.Config{
		FamilyPriors: cfg.Prediction.FamilyPriors,
		Epsilon:      cfg.Prediction.TieEpsilon,
	})
	cache := service.NewVectorCache(
		time.Duration(cfg.Prediction.CacheTTLSeconds)*time.Second,
		cfg.Prediction.CacheMaxSize)

	sources := service.Sources{
		Form: dataset, Advanced: dataset, Market: dataset, Context: dataset, Training: dataset,
	}
	predictor := service.NewPredictionService(log, sources, builder, bank, combiner, cache)
	trainer := service.NewTrainingService(log, dataset, bank, combiner, cfg.Training.MinRows)
	selector := selection.NewOptimizer(log, selection.Config{
		Now:          time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC),
		PrimaryCap:   cfg.Selection.PrimaryCap,
		SecondaryCap: cfg.Selection.SecondaryCap,
	})
	structurer := betting.NewOptimizer(log, betting.Config{
		Prizes:           betting.PrizeTable(cfg.Betting.Prizes),
		GapPenalty:       cfg.Betting.GapPenalty,
		UncertaintyFloor: cfg.Betting.UncertaintyFloor,
		MaxMultiplicity:  cfg.Betting.MaxMultiplicity,
	})
	slips := service.NewSlipService(log, selector, predictor, structurer)

	ctx := context.Background()

	report, err := trainer.Run(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Models)

	candidate := dataset.CandidateByExternalID(1)
	require.NotNil(t, candidate)
	prediction, err := predictor.Predict(ctx, candidate, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, prediction.Probabilities.Sum(), 1e-6)

	budget := models.CombinationBudget{
		MaxSpend:   decimal.NewFromFloat(12.00),
		BasePrice:  decimal.NewFromFloat(cfg.Betting.BasePrice),
		BonusPrice: decimal.NewFromFloat(cfg.Betting.BonusPrice),
		WithBonus:  true,
	}
	result, err := slips.BuildRound(ctx, dataset.Candidates(), budget, time.Now())
	require.NoError(t, err)
	assert.Len(t, result.Slip.Slots, models.SlipSize)
	assert.True(t, result.Structure.TotalCost.LessThanOrEqual(budget.MaxSpend))

	// The prometheus registry exposes pipeline counters over HTTP.
	server := httptest.NewServer(metrics.Handler())
	defer server.Close()
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
