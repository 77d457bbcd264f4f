package modelbank

import (
	"context"
	"fmt"
	"math"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// LogisticModel is a multinomial softmax regression over the full basic and
// composite feature tiers, fit by batch gradient descent with L2 shrinkage.
// It is the most interpretable ensemble member: importances are the summed
// absolute class weights per feature.
type LogisticModel struct {
	validationSplit
	id       string
	feats    []string
	weights  [][]float64 // [3][len(feats)+1], last column is the bias
	epochs   int
	learning float64
	l2       float64
	trained  bool
}

// NewLogisticModel creates an untrained softmax regression model.
func NewLogisticModel() *LogisticModel {
	schema := features.NewSchema()
	return &LogisticModel{
		id:       "logistic_softmax",
		feats:    schema.BasicNames(),
		epochs:   400,
		learning: 0.05,
		l2:       0.001,
	}
}

func (m *LogisticModel) ID() string     { return m.id }
func (m *LogisticModel) Family() string { return FamilyLinear }

func (m *LogisticModel) Features() []string { return m.feats }

func (m *LogisticModel) RequiredSources() []models.FeatureSource { return nil }

func (m *LogisticModel) scores(x []float64) [3]float64 {
	var s [3]float64
	for c := 0; c < 3; c++ {
		w := m.weights[c]
		sum := w[len(x)] // bias
		for i, v := range x {
			sum += w[i] * v
		}
		s[c] = sum
	}
	return s
}

// Predict runs the softmax over the declared feature subset.
func (m *LogisticModel) Predict(ctx context.Context, vector *models.FeatureVector) (ModelOutput, error) {
	if err := ctx.Err(); err != nil {
		return ModelOutput{}, err
	}
	if !m.trained {
		return ModelOutput{}, fmt.Errorf("model %s: not trained", m.id)
	}
	x, err := vector.Subset(m.feats)
	if err != nil {
		return ModelOutput{}, err
	}
	return output(m, softmax(m.scores(x))), nil
}

// Train fits the weights with batch gradient descent.
func (m *LogisticModel) Train(ctx context.Context, rows []TrainingRow) (ModelReport, error) {
	fit := func(train []TrainingRow) error {
		xs := make([][]float64, 0, len(train))
		ys := make([]int, 0, len(train))
		for _, row := range train {
			x, err := row.Vector.Subset(m.feats)
			if err != nil {
				return err
			}
			xs = append(xs, x)
			ys = append(ys, row.Result.Index())
		}
		if len(xs) == 0 {
			return fmt.Errorf("no usable training rows")
		}

		dim := len(m.feats) + 1
		m.weights = make([][]float64, 3)
		for c := range m.weights {
			m.weights[c] = make([]float64, dim)
		}
		m.trained = true

		n := float64(len(xs))
		for epoch := 0; epoch < m.epochs; epoch++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			grad := make([][]float64, 3)
			for c := range grad {
				grad[c] = make([]float64, dim)
			}
			for i, x := range xs {
				probs := softmax(m.scores(x))
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
					m.weights[c][j] -= m.learning * (grad[c][j]/n + m.l2*m.weights[c][j])
				}
			}
		}
		return nil
	}
	return report(ctx, m, rows, fit)
}

// FeatureImportance sums absolute weights across classes per feature.
func (m *LogisticModel) FeatureImportance() map[string]float64 {
	if !m.trained {
		return nil
	}
	importance := make(map[string]float64, len(m.feats))
	for i, name := range m.feats {
		total := 0.0
		for c := 0; c < 3; c++ {
			total += math.Abs(m.weights[c][i])
		}
		importance[name] = total
	}
	return importance
}
