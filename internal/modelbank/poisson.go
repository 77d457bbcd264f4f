package modelbank

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// maxGoals bounds the score matrix. Mass beyond it is negligible at league
// scoring rates.
const maxGoals = 10

// PoissonModel predicts outcomes from independent Poisson goal processes for
// each side, parameterized by scoring and conceding rates. The home boost is
// calibrated during training against observed outcome frequencies.
type PoissonModel struct {
	validationSplit
	id        string
	homeBoost float64
	trained   bool
}

// NewPoissonModel creates an untrained Poisson goal model.
func NewPoissonModel() *PoissonModel {
	return &PoissonModel{id: "poisson_goals", homeBoost: 1.15}
}

func (m *PoissonModel) ID() string     { return m.id }
func (m *PoissonModel) Family() string { return FamilyPoisson }

func (m *PoissonModel) Features() []string {
	return []string{
		features.FeatHomeGoalsPG,
		features.FeatAwayGoalsPG,
		features.FeatHomeConcededPG,
		features.FeatAwayConcededPG,
	}
}

func (m *PoissonModel) RequiredSources() []models.FeatureSource { return nil }

// Predict builds the score matrix from expected goals and folds it into the
// three outcomes.
func (m *PoissonModel) Predict(ctx context.Context, vector *models.FeatureVector) (ModelOutput, error) {
	if err := ctx.Err(); err != nil {
		return ModelOutput{}, err
	}
	vals, err := vector.Subset(m.Features())
	if err != nil {
		return ModelOutput{}, err
	}
	homeGoals, awayGoals, homeConceded, awayConceded := vals[0], vals[1], vals[2], vals[3]

	lambdaHome := ((homeGoals + awayConceded) / 2) * m.homeBoost
	lambdaAway := (awayGoals + homeConceded) / 2
	if lambdaHome <= 0 {
		lambdaHome = 0.2
	}
	if lambdaAway <= 0 {
		lambdaAway = 0.2
	}

	home := distuv.Poisson{Lambda: lambdaHome}
	away := distuv.Poisson{Lambda: lambdaAway}

	var probs models.ProbabilityTriple
	for h := 0; h <= maxGoals; h++ {
		ph := home.Prob(float64(h))
		for a := 0; a <= maxGoals; a++ {
			p := ph * away.Prob(float64(a))
			switch {
			case h > a:
				probs[0] += p
			case h == a:
				probs[1] += p
			default:
				probs[2] += p
			}
		}
	}
	return output(m, probs), nil
}

// Train calibrates the home boost by minimizing holdout log loss over a
// small grid. Goal rates themselves come from the feature vector at predict
// time, so there is nothing else to fit.
func (m *PoissonModel) Train(ctx context.Context, rows []TrainingRow) (ModelReport, error) {
	fit := func(train []TrainingRow) error {
		if len(train) == 0 {
			return fmt.Errorf("no training rows")
		}
		bestBoost, bestLoss := m.homeBoost, 0.0
		first := true
		for boost := 1.0; boost <= 1.5; boost += 0.05 {
			m.homeBoost = boost
			_, loss := evaluate(ctx, m, train)
			if first || loss < bestLoss {
				bestBoost, bestLoss = boost, loss
				first = false
			}
		}
		m.homeBoost = bestBoost
		m.trained = true
		return nil
	}
	return report(ctx, m, rows, fit)
}

// FeatureImportance is nil: the goal model has no per-feature weighting to
// explain.
func (m *PoissonModel) FeatureImportance() map[string]float64 { return nil }
