package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/ensemble"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/logger"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/metrics"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/modelbank"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// TrainingService retrains the model bank and the stacking meta-model from
// historical labeled rows. A failed run never swaps the active snapshot.
type TrainingService struct {
	logger   *logrus.Logger
	pipeline *logger.PipelineLogger
	source   TrainingRowSource
	bank     *modelbank.Bank
	combiner *ensemble.Combiner
	minRows  int
}

// NewTrainingService creates a training service over the given collaborators.
func NewTrainingService(log *logrus.Logger, source TrainingRowSource, bank *modelbank.Bank, combiner *ensemble.Combiner, minRows int) *TrainingService {
	return &TrainingService{
		logger:   log,
		pipeline: logger.NewPipelineLogger(log),
		source:   source,
		bank:     bank,
		combiner: combiner,
		minRows:  minRows,
	}
}

// Run executes one full training pass and returns the bank's report.
func (s *TrainingService) Run(ctx context.Context) (*modelbank.TrainingReport, error) {
	start := time.Now()

	rows, err := s.source.TrainingRows(ctx)
	if err != nil {
		s.fail("training rows unavailable")
		return nil, &models.TrainingError{Component: "service", Cause: err}
	}
	if len(rows) < s.minRows {
		s.fail("too few training rows")
		return nil, &models.TrainingError{Component: "service", Cause: models.ErrInsufficientFixtures}
	}

	report, err := s.bank.Train(ctx, rows)
	if err != nil {
		s.fail(err.Error())
		return nil, err
	}

	snapshot := s.bank.Active()
	metrics.ActiveModels.Set(float64(len(snapshot.Classifiers)))
	metrics.LastTrainingRows.Set(float64(report.Rows))

	if err := s.trainStacker(ctx, snapshot, rows); err != nil {
		// The base bank already swapped successfully; a stacker failure
		// only costs the meta-model, the weighted fallback still works.
		s.logger.WithError(err).Warn("Stacking meta-model training failed, keeping weighted fallback")
	}

	duration := time.Since(start)
	metrics.TrainingRunsTotal.WithLabelValues("success").Inc()
	metrics.TrainingDuration.Observe(duration.Seconds())
	s.pipeline.LogTrainingRun(report.Version.String(), report.Rows,
		len(report.Models), len(report.Failed), float64(duration.Milliseconds()))

	return report, nil
}

// trainStacker fits the meta-model on out-of-sample base predictions from
// the freshly trained snapshot and installs it on the combiner.
func (s *TrainingService) trainStacker(ctx context.Context, snapshot *modelbank.Snapshot, rows []modelbank.TrainingRow) error {
	modelIDs := make([]string, 0, len(snapshot.Classifiers))
	for _, classifier := range snapshot.Classifiers {
		modelIDs = append(modelIDs, classifier.ID())
	}

	stackRows := make([]ensemble.StackRow, 0, len(rows))
	for _, row := range rows {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		outputs, _ := s.bank.PredictAll(ctx, row.Vector)
		if len(outputs) == 0 {
			continue
		}
		stackRows = append(stackRows, ensemble.StackRow{
			Vector:  row.Vector,
			Outputs: outputs,
			Result:  row.Result,
		})
	}

	stacker := ensemble.NewStacker(modelIDs)
	if err := stacker.Train(stackRows); err != nil {
		return err
	}
	s.combiner.SetStacker(stacker)
	return nil
}

func (s *TrainingService) fail(reason string) {
	metrics.TrainingRunsTotal.WithLabelValues("failure").Inc()
	s.pipeline.LogTrainingFailure(reason)
}
