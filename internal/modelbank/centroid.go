package modelbank

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// CentroidModel is a prototype-family classifier: it learns a mean feature
// vector per outcome class and scores matches by negative squared distance
// to each prototype, softmaxed with a temperature.
type CentroidModel struct {
	validationSplit
	id          string
	feats       []string
	centroids   [3][]float64
	temperature float64
	trained     bool
}

// NewCentroidModel creates an untrained prototype classifier.
func NewCentroidModel() *CentroidModel {
	schema := features.NewSchema()
	return &CentroidModel{
		id:          "class_centroid",
		feats:       schema.BasicNames(),
		temperature: 4.0,
	}
}

func (m *CentroidModel) ID() string     { return m.id }
func (m *CentroidModel) Family() string { return FamilyPrototype }

func (m *CentroidModel) Features() []string { return m.feats }

func (m *CentroidModel) RequiredSources() []models.FeatureSource { return nil }

// Predict scores the vector against the three class prototypes.
func (m *CentroidModel) Predict(ctx context.Context, vector *models.FeatureVector) (ModelOutput, error) {
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
	var scores [3]float64
	for c := 0; c < 3; c++ {
		scores[c] = -m.temperature * floats.Distance(x, m.centroids[c], 2)
	}
	return output(m, softmax(scores)), nil
}

// Train computes the per-class centroids.
func (m *CentroidModel) Train(ctx context.Context, rows []TrainingRow) (ModelReport, error) {
	fit := func(train []TrainingRow) error {
		var sums [3][]float64
		var counts [3]int
		for c := range sums {
			sums[c] = make([]float64, len(m.feats))
		}
		for _, row := range train {
			if err := ctx.Err(); err != nil {
				return err
			}
			x, err := row.Vector.Subset(m.feats)
			if err != nil {
				return err
			}
			c := row.Result.Index()
			floats.Add(sums[c], x)
			counts[c]++
		}
		for c := 0; c < 3; c++ {
			if counts[c] == 0 {
				return fmt.Errorf("class %s has no training rows", models.OutcomeAt(c))
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			m.centroids[c] = sums[c]
		}
		m.trained = true
		return nil
	}
	return report(ctx, m, rows, fit)
}

// FeatureImportance is nil; prototype distances have no stable per-feature
// attribution.
func (m *CentroidModel) FeatureImportance() map[string]float64 { return nil }
