package ensemble

import (
	"fmt"
	"math"
	"sort"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/modelbank"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// contextFeatures are the vector features appended to the concatenated model
// outputs as stacking context.
var contextFeatures = []string{
	features.FeatPPGDiff,
	features.FeatHomeAdvantage,
	features.FeatPositionDiff,
	features.FeatFormDiff,
	features.FeatMarketOverround,
}

// Stacker is the stacking meta-model: a softmax regression over the
// concatenated base-model distributions plus match context features. It is
// trained on out-of-band rows by the training service and takes precedence
// over the weighted average once trained.
type Stacker struct {
	modelIDs []string
	weights  [][]float64
	epochs   int
	learning float64
	trained  bool
}

// StackRow is one stacking training example.
type StackRow struct {
	Vector  *models.FeatureVector
	Outputs map[string]modelbank.ModelOutput
	Result  models.Outcome
}

// NewStacker creates an untrained meta-model over a fixed base-model set.
func NewStacker(modelIDs []string) *Stacker {
	ids := make([]string, len(modelIDs))
	copy(ids, modelIDs)
	sort.Strings(ids)
	return &Stacker{modelIDs: ids, epochs: 300, learning: 0.1}
}

// Trained reports whether the meta-model has been fit.
func (s *Stacker) Trained() bool { return s.trained }

// inputs builds the meta-feature row: per model (in fixed id order) the
// probability triple plus an availability flag, then the context features.
func (s *Stacker) inputs(vector *models.FeatureVector, outputs map[string]modelbank.ModelOutput) []float64 {
	row := make([]float64, 0, len(s.modelIDs)*4+len(contextFeatures))
	for _, id := range s.modelIDs {
		out, ok := outputs[id]
		if !ok {
			// Absent model: uniform distribution, availability zero.
			row = append(row, 1.0/3, 1.0/3, 1.0/3, 0)
			continue
		}
		row = append(row, out.Probabilities[0], out.Probabilities[1], out.Probabilities[2], 1)
	}
	for _, name := range contextFeatures {
		v, ok := vector.Value(name)
		if !ok {
			v = 0
		}
		row = append(row, v)
	}
	return row
}

func (s *Stacker) scores(x []float64) [3]float64 {
	var out [3]float64
	for c := 0; c < 3; c++ {
		w := s.weights[c]
		sum := w[len(x)]
		for i, v := range x {
			sum += w[i] * v
		}
		out[c] = sum
	}
	return out
}

func stackSoftmax(scores [3]float64) models.ProbabilityTriple {
	max := math.Max(scores[0], math.Max(scores[1], scores[2]))
	var exp [3]float64
	var sum float64
	for i, v := range scores {
		exp[i] = math.Exp(v - max)
		sum += exp[i]
	}
	return models.ProbabilityTriple{exp[0] / sum, exp[1] / sum, exp[2] / sum}
}

// Predict returns the stacked distribution for one match.
func (s *Stacker) Predict(vector *models.FeatureVector, outputs map[string]modelbank.ModelOutput) (models.ProbabilityTriple, error) {
	if !s.trained {
		return models.ProbabilityTriple{}, fmt.Errorf("stacker not trained")
	}
	return stackSoftmax(s.scores(s.inputs(vector, outputs))), nil
}

// Train fits the meta-model with batch gradient descent.
func (s *Stacker) Train(rows []StackRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("stacker: no training rows")
	}
	xs := make([][]float64, len(rows))
	ys := make([]int, len(rows))
	for i, row := range rows {
		xs[i] = s.inputs(row.Vector, row.Outputs)
		ys[i] = row.Result.Index()
	}

	dim := len(xs[0]) + 1
	s.weights = make([][]float64, 3)
	for c := range s.weights {
		s.weights[c] = make([]float64, dim)
	}

	n := float64(len(xs))
	for epoch := 0; epoch < s.epochs; epoch++ {
		grad := make([][]float64, 3)
		for c := range grad {
			grad[c] = make([]float64, dim)
		}
		for i, x := range xs {
			probs := stackSoftmax(s.scores(x))
			for c := 0; c < 3; c++ {
				delta := probs[c]
				if c == ys[i] {
					delta -= 1
				}
				for j, v := range x {
					grad[c][j] += delta * v
				}
				grad[c][dim-1] += delta
			}
		}
		for c := 0; c < 3; c++ {
			for j := 0; j < dim; j++ {
				s.weights[c][j] -= s.learning * grad[c][j] / n
			}
		}
	}
	s.trained = true
	return nil
}
