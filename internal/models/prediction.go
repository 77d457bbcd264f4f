package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ProbabilityTriple holds probabilities for 1/X/2 in canonical order.
type ProbabilityTriple [3]float64

// Sum returns the total probability mass.
func (p ProbabilityTriple) Sum() float64 {
	return p[0] + p[1] + p[2]
}

// Max returns the largest probability and its canonical index.
func (p ProbabilityTriple) Max() (float64, int) {
	best, idx := p[0], 0
	for i := 1; i < 3; i++ {
		if p[i] > best {
			best, idx = p[i], i
		}
	}
	return best, idx
}

// SecondMax returns the second-largest probability.
func (p ProbabilityTriple) SecondMax() float64 {
	_, top := p.Max()
	second := math.Inf(-1)
	for i := 0; i < 3; i++ {
		if i != top && p[i] > second {
			second = p[i]
		}
	}
	return second
}

// Normalized returns the triple rescaled to sum to 1. A zero triple is
// returned unchanged.
func (p ProbabilityTriple) Normalized() ProbabilityTriple {
	sum := p.Sum()
	if sum <= 0 {
		return p
	}
	return ProbabilityTriple{p[0] / sum, p[1] / sum, p[2] / sum}
}

// ModelContribution records one ensemble member's input to a prediction.
type ModelContribution struct {
	ModelID       string            `json:"model_id"`
	Family        string            `json:"family"`
	Probabilities ProbabilityTriple `json:"probabilities"`
	Confidence    float64           `json:"confidence"`
	Weight        float64           `json:"weight"`
}

// FeatureContribution names a feature and its importance score.
type FeatureContribution struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// Prediction is the combined, calibrated outcome distribution for a match.
type Prediction struct {
	ID             uuid.UUID             `json:"id"`
	MatchID        uuid.UUID             `json:"match_id"`
	Probabilities  ProbabilityTriple     `json:"probabilities"`
	PredictedClass Outcome               `json:"predicted_class"`
	Confidence     float64               `json:"confidence" validate:"gte=0,lte=1"`
	Contributions  []ModelContribution   `json:"contributions,omitempty"`
	ModelsAgreeing int                   `json:"models_agreeing"`
	TopFeatures    []FeatureContribution `json:"top_features,omitempty"`
	Explanation    string                `json:"explanation"`
	Degraded       bool                  `json:"degraded"`
	ModelVersion   uuid.UUID             `json:"model_version"`
	PredictedAt    time.Time             `json:"predicted_at"`
}

// MeetsThreshold checks if the confidence meets the given threshold.
func (p *Prediction) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}

// ProbabilityOf returns the probability of a single outcome.
func (p *Prediction) ProbabilityOf(o Outcome) float64 {
	return p.Probabilities[o.Index()]
}
