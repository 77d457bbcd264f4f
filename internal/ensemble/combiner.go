// Package ensemble merges per-model outcome distributions into one final
// calibrated prediction per match.
package ensemble

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/modelbank"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

const component = "ensemble"

// DefaultEpsilon is the probability gap under which two classes are treated
// as tied and resolved by majority vote.
const DefaultEpsilon = 0.02

// topFeatureCount bounds how many contributing features go into the
// explanation.
const topFeatureCount = 5

// DefaultFamilyPriors weight the algorithm families before per-instance
// confidence is applied. Mirrors long-run family accuracy.
var DefaultFamilyPriors = map[string]float64{
	modelbank.FamilyPoisson:   0.25,
	modelbank.FamilyLinear:    0.30,
	modelbank.FamilyPrototype: 0.15,
	modelbank.FamilyMarket:    0.30,
}

// Config tunes the combiner.
type Config struct {
	FamilyPriors map[string]float64
	Epsilon      float64
}

// Combiner merges model bank outputs. When a trained stacking meta-model is
// set it takes precedence; the weighted average is the mandatory fallback
// and always produces a usable result.
type Combiner struct {
	logger  *logrus.Logger
	priors  map[string]float64
	epsilon float64
	// stacker is installed by training while inference reads it, so swaps
	// must be atomic like the bank's snapshot swap.
	stacker atomic.Pointer[Stacker]
}

// NewCombiner creates a combiner with the given configuration.
func NewCombiner(logger *logrus.Logger, cfg Config) *Combiner {
	priors := cfg.FamilyPriors
	if len(priors) == 0 {
		priors = DefaultFamilyPriors
	}
	epsilon := cfg.Epsilon
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Combiner{logger: logger, priors: priors, epsilon: epsilon}
}

// SetStacker atomically installs a trained stacking meta-model. Passing nil
// reverts to the weighted-average path.
func (c *Combiner) SetStacker(s *Stacker) { c.stacker.Store(s) }

// Combine produces the final prediction for one match. Zero evaluable
// models is a ModelUnavailableError; the combiner never fabricates a
// distribution.
func (c *Combiner) Combine(matchID uuid.UUID, vector *models.FeatureVector, snapshot *modelbank.Snapshot, outputs map[string]modelbank.ModelOutput, skipped []modelbank.SkippedModel) (*models.Prediction, error) {
	if len(outputs) == 0 {
		reasons := make(map[string]string, len(skipped))
		for _, s := range skipped {
			reasons[s.ModelID] = s.Reason
		}
		return nil, &models.ModelUnavailableError{Component: component, Reasons: reasons}
	}

	contributions := c.weigh(vector, snapshot, outputs)

	var probs models.ProbabilityTriple
	usedStacker := false
	if stacker := c.stacker.Load(); stacker != nil && stacker.Trained() {
		if stacked, err := stacker.Predict(vector, outputs); err == nil {
			probs = stacked
			usedStacker = true
		} else if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"component": component,
				"error":     err.Error(),
			}).Debug("Stacking meta-model unusable for this match, falling back to weighted average")
		}
	}
	if !usedStacker {
		probs = weightedAverage(contributions)
	}
	probs = probs.Normalized()

	confidence, topIdx := probs.Max()
	predicted := models.OutcomeAt(topIdx)
	predicted, confidence = c.breakTies(probs, predicted, confidence, outputs)

	agreeing := modelsAgreeing(outputs, predicted)
	topFeatures := topContributingFeatures(snapshot)

	prediction := &models.Prediction{
		ID:             uuid.New(),
		MatchID:        matchID,
		Probabilities:  probs,
		PredictedClass: predicted,
		Confidence:     confidence,
		Contributions:  contributions,
		ModelsAgreeing: agreeing,
		TopFeatures:    topFeatures,
		Explanation:    explanation(predicted, agreeing, len(outputs), topFeatures, usedStacker),
		Degraded:       vector.Degraded || len(skipped) > 0,
		PredictedAt:    time.Now(),
	}
	if snapshot != nil {
		prediction.ModelVersion = snapshot.Version
	}
	return prediction, nil
}

// weigh computes each model's normalized weight: family prior × instance
// confidence × data-availability multiplier.
func (c *Combiner) weigh(vector *models.FeatureVector, snapshot *modelbank.Snapshot, outputs map[string]modelbank.ModelOutput) []models.ModelContribution {
	ids := make([]string, 0, len(outputs))
	for id := range outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	contributions := make([]models.ModelContribution, 0, len(ids))
	total := 0.0
	for _, id := range ids {
		out := outputs[id]
		prior, ok := c.priors[out.Family]
		if !ok {
			prior = 0.1
		}
		weight := prior * out.Confidence * availability(vector, snapshot, id)
		contributions = append(contributions, models.ModelContribution{
			ModelID:       out.ModelID,
			Family:        out.Family,
			Probabilities: out.Probabilities,
			Confidence:    out.Confidence,
			Weight:        weight,
		})
		total += weight
	}
	if total <= 0 {
		// Every weight zeroed out; fall back to equal weighting so the
		// combiner still degrades gracefully instead of failing.
		for i := range contributions {
			contributions[i].Weight = 1.0 / float64(len(contributions))
		}
		return contributions
	}
	for i := range contributions {
		contributions[i].Weight /= total
	}
	return contributions
}

// availability is zero when the model depends on an optional source absent
// for this match, one otherwise.
func availability(vector *models.FeatureVector, snapshot *modelbank.Snapshot, modelID string) float64 {
	if snapshot == nil {
		return 1
	}
	for _, classifier := range snapshot.Classifiers {
		if classifier.ID() != modelID {
			continue
		}
		for _, src := range classifier.RequiredSources() {
			if vector.SourceMissing(src) {
				return 0
			}
		}
		return 1
	}
	return 1
}

func weightedAverage(contributions []models.ModelContribution) models.ProbabilityTriple {
	var probs models.ProbabilityTriple
	for _, contribution := range contributions {
		for i := 0; i < 3; i++ {
			probs[i] += contribution.Weight * contribution.Probabilities[i]
		}
	}
	return probs
}

// breakTies resolves near-equal top classes by majority vote among the
// individually evaluated models instead of automatically favoring any class.
func (c *Combiner) breakTies(probs models.ProbabilityTriple, predicted models.Outcome, confidence float64, outputs map[string]modelbank.ModelOutput) (models.Outcome, float64) {
	_, topIdx := probs.Max()
	second := probs.SecondMax()
	if probs[topIdx]-second >= c.epsilon {
		return predicted, confidence
	}

	var votes [3]int
	for _, out := range outputs {
		_, idx := out.Probabilities.Max()
		votes[idx]++
	}
	bestIdx, bestVotes := topIdx, votes[topIdx]
	for i := 0; i < 3; i++ {
		// Only classes inside the tie window are candidates.
		if probs[topIdx]-probs[i] < c.epsilon && votes[i] > bestVotes {
			bestIdx, bestVotes = i, votes[i]
		}
	}
	return models.OutcomeAt(bestIdx), probs[bestIdx]
}

func modelsAgreeing(outputs map[string]modelbank.ModelOutput, predicted models.Outcome) int {
	agreeing := 0
	for _, out := range outputs {
		_, idx := out.Probabilities.Max()
		if idx == predicted.Index() {
			agreeing++
		}
	}
	return agreeing
}

// topContributingFeatures asks the most interpretable bank member for its
// highest-importance features.
func topContributingFeatures(snapshot *modelbank.Snapshot) []models.FeatureContribution {
	if snapshot == nil {
		return nil
	}
	interpretable := snapshot.MostInterpretable()
	if interpretable == nil {
		return nil
	}
	importance := interpretable.FeatureImportance()
	contributions := make([]models.FeatureContribution, 0, len(importance))
	for name, score := range importance {
		contributions = append(contributions, models.FeatureContribution{Name: name, Importance: score})
	}
	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].Importance != contributions[j].Importance {
			return contributions[i].Importance > contributions[j].Importance
		}
		return contributions[i].Name < contributions[j].Name
	})
	if len(contributions) > topFeatureCount {
		contributions = contributions[:topFeatureCount]
	}
	return contributions
}

func explanation(predicted models.Outcome, agreeing, evaluated int, topFeatures []models.FeatureContribution, stacked bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d models agree on %s", agreeing, evaluated, predicted)
	if stacked {
		b.WriteString(" (stacked meta-model)")
	}
	if len(topFeatures) > 0 {
		names := make([]string, len(topFeatures))
		for i, f := range topFeatures {
			names[i] = f.Name
		}
		fmt.Fprintf(&b, "; key factors: %s", strings.Join(names, ", "))
	}
	return b.String()
}
