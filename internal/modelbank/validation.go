package modelbank

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// defaultHoldoutFraction is the share of rows reserved for each model's
// internal validation split when no fraction is configured.
const defaultHoldoutFraction = 0.2

// holdoutSeed keeps the split deterministic across train runs so metric
// movements reflect the model, not the shuffle.
const holdoutSeed = 42

// minTrainingRows is the smallest row count any family accepts.
const minTrainingRows = 20

// validationSplit carries the configured train/holdout share. Classifiers
// embed it so the bank can push the configured fraction down before a run.
type validationSplit struct {
	holdout float64
}

func (v *validationSplit) setHoldoutFraction(f float64) { v.holdout = f }

func (v *validationSplit) holdoutFraction() float64 {
	if v.holdout <= 0 || v.holdout >= 0.5 {
		return defaultHoldoutFraction
	}
	return v.holdout
}

// splitRows shuffles deterministically and splits rows into train/holdout.
func splitRows(rows []TrainingRow, fraction float64) (train, holdout []TrainingRow) {
	if fraction <= 0 || fraction >= 0.5 {
		fraction = defaultHoldoutFraction
	}
	shuffled := make([]TrainingRow, len(rows))
	copy(shuffled, rows)
	rng := rand.New(rand.NewSource(holdoutSeed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	cut := len(shuffled) - int(float64(len(shuffled))*fraction)
	if cut < 1 {
		cut = 1
	}
	if cut >= len(shuffled) {
		return shuffled, nil
	}
	return shuffled[:cut], shuffled[cut:]
}

// evaluate scores a trained classifier on holdout rows.
func evaluate(ctx context.Context, c ProbabilisticClassifier, holdout []TrainingRow) (accuracy, logLoss float64) {
	if len(holdout) == 0 {
		return 0, 0
	}
	correct := 0
	lossSum := 0.0
	scored := 0
	for _, row := range holdout {
		out, err := c.Predict(ctx, row.Vector)
		if err != nil {
			continue
		}
		scored++
		_, top := out.Probabilities.Max()
		if top == row.Result.Index() {
			correct++
		}
		p := out.Probabilities[row.Result.Index()]
		// Floor avoids -Inf loss when a model zeroes the true class.
		if p < 1e-12 {
			p = 1e-12
		}
		lossSum -= math.Log(p)
	}
	if scored == 0 {
		return 0, 0
	}
	return float64(correct) / float64(scored), lossSum / float64(scored)
}

// report runs the shared train-then-validate flow: split rows, fit on the
// training part, score the holdout, then refit on everything so the served
// model sees all labeled data.
func report(ctx context.Context, c ProbabilisticClassifier, rows []TrainingRow, fit func([]TrainingRow) error) (ModelReport, error) {
	if len(rows) < minTrainingRows {
		return ModelReport{}, fmt.Errorf("model %s: %d training rows, need at least %d", c.ID(), len(rows), minTrainingRows)
	}
	fraction := defaultHoldoutFraction
	if hc, ok := c.(interface{ holdoutFraction() float64 }); ok {
		fraction = hc.holdoutFraction()
	}
	train, holdout := splitRows(rows, fraction)
	if err := fit(train); err != nil {
		return ModelReport{}, fmt.Errorf("model %s: fit failed: %w", c.ID(), err)
	}
	accuracy, logLoss := evaluate(ctx, c, holdout)
	if err := fit(rows); err != nil {
		return ModelReport{}, fmt.Errorf("model %s: final fit failed: %w", c.ID(), err)
	}
	return ModelReport{
		ModelID:     c.ID(),
		Family:      c.Family(),
		TrainRows:   len(train),
		HoldoutRows: len(holdout),
		Accuracy:    accuracy,
		LogLoss:     logLoss,
	}, nil
}
