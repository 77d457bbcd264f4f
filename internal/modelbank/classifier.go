// Package modelbank holds the heterogeneous set of probabilistic match
// outcome classifiers and the versioned snapshots they are served from.
package modelbank

import (
	"context"
	"math"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// Algorithm family names. Families are deliberately heterogeneous; diversity
// reduces correlated error across the ensemble.
const (
	FamilyPoisson   = "poisson"
	FamilyLinear    = "linear"
	FamilyPrototype = "prototype"
	FamilyMarket    = "market"
)

// ModelOutput is one classifier's calibrated distribution for a match.
type ModelOutput struct {
	ModelID       string                   `json:"model_id"`
	Family        string                   `json:"family"`
	Probabilities models.ProbabilityTriple `json:"probabilities"`
	Confidence    float64                  `json:"confidence"`
}

// TrainingRow pairs a feature vector with the observed outcome.
type TrainingRow struct {
	Vector *models.FeatureVector
	Result models.Outcome
}

// ModelReport summarizes one classifier's internal validation.
type ModelReport struct {
	ModelID     string  `json:"model_id"`
	Family      string  `json:"family"`
	TrainRows   int     `json:"train_rows"`
	HoldoutRows int     `json:"holdout_rows"`
	Accuracy    float64 `json:"accuracy"`
	LogLoss     float64 `json:"log_loss"`
}

// ProbabilisticClassifier is the capability interface every algorithm family
// implements. Adding a family never touches the ensemble combiner.
type ProbabilisticClassifier interface {
	// ID uniquely names this classifier instance.
	ID() string
	// Family names the algorithm family.
	Family() string
	// Features declares the feature subset and order the model consumes.
	Features() []string
	// RequiredSources lists optional input sources the model cannot work
	// without. Empty for models that run on basic features alone.
	RequiredSources() []models.FeatureSource
	// Predict returns a calibrated 3-way distribution for the vector.
	Predict(ctx context.Context, vector *models.FeatureVector) (ModelOutput, error)
	// Train fits the model on labeled rows and runs its own internal
	// validation. Training instances are never shared with inference.
	Train(ctx context.Context, rows []TrainingRow) (ModelReport, error)
	// FeatureImportance returns per-feature importance scores, or nil for
	// families that cannot explain themselves.
	FeatureImportance() map[string]float64
}

// output assembles a ModelOutput from a classifier and a raw triple,
// normalizing and deriving confidence as the max probability.
func output(c ProbabilisticClassifier, probs models.ProbabilityTriple) ModelOutput {
	norm := probs.Normalized()
	conf, _ := norm.Max()
	return ModelOutput{
		ModelID:       c.ID(),
		Family:        c.Family(),
		Probabilities: norm,
		Confidence:    conf,
	}
}

// softmax converts scores into a probability triple.
func softmax(scores [3]float64) models.ProbabilityTriple {
	max := math.Max(scores[0], math.Max(scores[1], scores[2]))
	var exp [3]float64
	var sum float64
	for i, s := range scores {
		exp[i] = math.Exp(s - max)
		sum += exp[i]
	}
	return models.ProbabilityTriple{exp[0] / sum, exp[1] / sum, exp[2] / sum}
}
