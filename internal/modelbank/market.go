package modelbank

import (
	"context"
	"fmt"
	"math"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// MarketModel reads the bookmaker's overround-free implied probabilities.
// It only works when market signals exist for the match; the bank skips it
// otherwise and the combiner zeroes its availability weight.
type MarketModel struct {
	validationSplit
	id string
	// sharpness calibrates how literally closing prices are taken; 1 keeps
	// them as-is, above 1 sharpens the favourite.
	sharpness float64
	trained   bool
}

// NewMarketModel creates an untrained market-implied model.
func NewMarketModel() *MarketModel {
	return &MarketModel{id: "market_implied", sharpness: 1.0}
}

func (m *MarketModel) ID() string     { return m.id }
func (m *MarketModel) Family() string { return FamilyMarket }

func (m *MarketModel) Features() []string {
	return []string{
		features.FeatMarketHome,
		features.FeatMarketDraw,
		features.FeatMarketAway,
	}
}

func (m *MarketModel) RequiredSources() []models.FeatureSource {
	return []models.FeatureSource{models.SourceMarket}
}

// Predict normalizes the implied triple, applying the calibrated sharpening
// exponent.
func (m *MarketModel) Predict(ctx context.Context, vector *models.FeatureVector) (ModelOutput, error) {
	if err := ctx.Err(); err != nil {
		return ModelOutput{}, err
	}
	if vector.SourceMissing(models.SourceMarket) {
		return ModelOutput{}, &models.DataUnavailableError{
			Component: "modelbank",
			Entity:    fmt.Sprintf("market signal for model %s", m.id),
		}
	}
	vals, err := vector.Subset(m.Features())
	if err != nil {
		return ModelOutput{}, err
	}
	var probs models.ProbabilityTriple
	for i, v := range vals {
		probs[i] = math.Pow(v, m.sharpness)
	}
	return output(m, probs), nil
}

// Train calibrates the sharpening exponent over a small grid against
// observed outcomes. Rows without market data are ignored; the model needs
// a minimum of covered rows to accept the fit.
func (m *MarketModel) Train(ctx context.Context, rows []TrainingRow) (ModelReport, error) {
	covered := make([]TrainingRow, 0, len(rows))
	for _, row := range rows {
		if !row.Vector.SourceMissing(models.SourceMarket) {
			covered = append(covered, row)
		}
	}
	fit := func(train []TrainingRow) error {
		if len(train) == 0 {
			return fmt.Errorf("no market-covered training rows")
		}
		m.trained = true
		bestSharp, bestLoss := m.sharpness, 0.0
		first := true
		for sharp := 0.8; sharp <= 1.6; sharp += 0.1 {
			m.sharpness = sharp
			_, loss := evaluate(ctx, m, train)
			if first || loss < bestLoss {
				bestSharp, bestLoss = sharp, loss
				first = false
			}
		}
		m.sharpness = bestSharp
		return nil
	}
	return report(ctx, m, covered, fit)
}

// FeatureImportance is nil; the model is a passthrough of market prices.
func (m *MarketModel) FeatureImportance() map[string]float64 { return nil }
