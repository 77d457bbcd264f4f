package modelbank

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

const component = "modelbank"

// DefaultModelTimeout bounds a single model evaluation.
const DefaultModelTimeout = 2 * time.Second

// Snapshot is an immutable trained model set. Inference always runs against
// one snapshot; training builds a new one off to the side and swaps it in
// atomically only on full success.
type Snapshot struct {
	Version     uuid.UUID
	TrainedAt   time.Time
	Classifiers []ProbabilisticClassifier
}

// MostInterpretable returns the member with feature importances, preferring
// the linear family. Nil when no member can explain itself.
func (s *Snapshot) MostInterpretable() ProbabilisticClassifier {
	var fallback ProbabilisticClassifier
	for _, c := range s.Classifiers {
		if c.FeatureImportance() == nil {
			continue
		}
		if c.Family() == FamilyLinear {
			return c
		}
		if fallback == nil {
			fallback = c
		}
	}
	return fallback
}

// SkippedModel records why a model was excluded from a batch evaluation.
type SkippedModel struct {
	ModelID string `json:"model_id"`
	Reason  string `json:"reason"`
}

// TrainingReport aggregates per-model validation results for one run.
type TrainingReport struct {
	ID         uuid.UUID      `json:"id"`
	Version    uuid.UUID      `json:"version"`
	Rows       int            `json:"rows"`
	Duration   time.Duration  `json:"duration"`
	Models     []ModelReport  `json:"models"`
	Failed     []SkippedModel `json:"failed,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Factory builds a fresh untrained classifier set for a training run.
type Factory func() []ProbabilisticClassifier

// DefaultFactory builds the four standard families.
func DefaultFactory() []ProbabilisticClassifier {
	return []ProbabilisticClassifier{
		NewPoissonModel(),
		NewLogisticModel(),
		NewCentroidModel(),
		NewMarketModel(),
	}
}

// Bank serves inference from the active snapshot and builds new snapshots
// during training. Inference against the active version is never blocked by
// a concurrent training run.
type Bank struct {
	logger  *logrus.Logger
	factory Factory
	timeout time.Duration
	holdout float64
	active  atomic.Pointer[Snapshot]
}

// NewBank creates a bank with no active snapshot; Train must succeed before
// inference is possible.
func NewBank(logger *logrus.Logger, factory Factory, modelTimeout time.Duration) *Bank {
	if factory == nil {
		factory = DefaultFactory
	}
	if modelTimeout <= 0 {
		modelTimeout = DefaultModelTimeout
	}
	return &Bank{logger: logger, factory: factory, timeout: modelTimeout}
}

// SetHoldoutFraction overrides the per-model validation split share for
// subsequent training runs. Out-of-range values fall back to the default.
func (b *Bank) SetHoldoutFraction(fraction float64) {
	b.holdout = fraction
}

// Active returns the currently served snapshot, or nil before first training.
func (b *Bank) Active() *Snapshot {
	return b.active.Load()
}

// HasActiveSnapshot reports whether a trained snapshot is installed.
func (b *Bank) HasActiveSnapshot() bool {
	return b.active.Load() != nil
}

// Restore installs a previously trained snapshot, e.g. one loaded by an
// external persistence collaborator.
func (b *Bank) Restore(snapshot *Snapshot) {
	b.active.Store(snapshot)
}

// PredictAll evaluates every model of the active snapshot in parallel. A
// model that fails, times out, or lacks feature coverage is skipped and
// reported; the batch itself never fails. With no active snapshot all models
// are reported as skipped.
func (b *Bank) PredictAll(ctx context.Context, vector *models.FeatureVector) (map[string]ModelOutput, []SkippedModel) {
	snapshot := b.active.Load()
	if snapshot == nil {
		return nil, []SkippedModel{{ModelID: "*", Reason: "no trained model version active"}}
	}

	type result struct {
		output  ModelOutput
		skipped *SkippedModel
	}
	results := make([]result, len(snapshot.Classifiers))

	var wg sync.WaitGroup
	for i, c := range snapshot.Classifiers {
		wg.Add(1)
		go func(i int, c ProbabilisticClassifier) {
			defer wg.Done()
			mctx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			if !vector.Has(c.Features()...) {
				results[i] = result{skipped: &SkippedModel{ModelID: c.ID(), Reason: "insufficient feature coverage"}}
				return
			}
			out, err := c.Predict(mctx, vector)
			if err != nil {
				reason := err.Error()
				if mctx.Err() != nil {
					reason = "evaluation timeout"
				}
				results[i] = result{skipped: &SkippedModel{ModelID: c.ID(), Reason: reason}}
				return
			}
			results[i] = result{output: out}
		}(i, c)
	}
	wg.Wait()

	outputs := make(map[string]ModelOutput, len(snapshot.Classifiers))
	var skipped []SkippedModel
	for _, r := range results {
		if r.skipped != nil {
			skipped = append(skipped, *r.skipped)
			continue
		}
		outputs[r.output.ModelID] = r.output
	}
	if len(skipped) > 0 && b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"component": component,
			"skipped":   len(skipped),
			"evaluated": len(outputs),
		}).Debug("Some models were skipped during batch evaluation")
	}
	return outputs, skipped
}

// Train fits a fresh classifier set on the rows and atomically swaps the new
// snapshot in. A run where every model fails returns a TrainingError and
// leaves the active snapshot untouched. Individual model failures are
// tolerated and reported.
func (b *Bank) Train(ctx context.Context, rows []TrainingRow) (*TrainingReport, error) {
	started := time.Now()
	classifiers := b.factory()

	version := uuid.New()
	trained := make([]ProbabilisticClassifier, 0, len(classifiers))
	reports := make([]ModelReport, 0, len(classifiers))
	var failed []SkippedModel

	for _, c := range classifiers {
		if err := ctx.Err(); err != nil {
			return nil, &models.TrainingError{Component: component, Cause: err}
		}
		if hc, ok := c.(interface{ setHoldoutFraction(float64) }); ok {
			hc.setHoldoutFraction(b.holdout)
		}
		modelReport, err := c.Train(ctx, rows)
		if err != nil {
			failed = append(failed, SkippedModel{ModelID: c.ID(), Reason: err.Error()})
			if b.logger != nil {
				b.logger.WithFields(logrus.Fields{
					"component": component,
					"model_id":  c.ID(),
					"error":     err.Error(),
				}).Warn("Model failed to train and is excluded from the new version")
			}
			continue
		}
		trained = append(trained, c)
		reports = append(reports, modelReport)
	}

	if len(trained) == 0 {
		return nil, &models.TrainingError{
			Component: component,
			Cause:     &models.ModelUnavailableError{Component: component, Reasons: skippedReasons(failed)},
		}
	}

	snapshot := &Snapshot{Version: version, TrainedAt: time.Now(), Classifiers: trained}
	b.active.Store(snapshot)

	finished := time.Now()
	trainingReport := &TrainingReport{
		ID:         uuid.New(),
		Version:    version,
		Rows:       len(rows),
		Duration:   finished.Sub(started),
		Models:     reports,
		Failed:     failed,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"component": component,
			"version":   version.String(),
			"models":    len(trained),
			"failed":    len(failed),
			"rows":      len(rows),
			"duration":  trainingReport.Duration.String(),
		}).Info("Model bank training completed and new version activated")
	}
	return trainingReport, nil
}

func skippedReasons(skipped []SkippedModel) map[string]string {
	reasons := make(map[string]string, len(skipped))
	for _, s := range skipped {
		reasons[s.ModelID] = s.Reason
	}
	return reasons
}
