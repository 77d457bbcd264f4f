package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/ensemble"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/logger"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/metrics"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/modelbank"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// Sources bundles the data collaborators the pipeline draws from. Form is
// mandatory; the rest may be nil or return (nil, nil) for uncovered entities.
type Sources struct {
	Form     FormSource
	Advanced AdvancedSignalSource
	Market   MarketSource
	Context  ContextSource
	Training TrainingRowSource
}

// PredictionService runs the per-match pipeline: gather inputs, build the
// feature vector, fan out to the model bank, and combine into one prediction.
type PredictionService struct {
	logger   *logrus.Logger
	pipeline *logger.PipelineLogger
	sources  Sources
	builder  *features.Builder
	bank     *modelbank.Bank
	combiner *ensemble.Combiner
	cache    *VectorCache
}

// NewPredictionService creates a prediction service over the given
// collaborators.
func NewPredictionService(log *logrus.Logger, sources Sources, builder *features.Builder, bank *modelbank.Bank, combiner *ensemble.Combiner, cache *VectorCache) *PredictionService {
	return &PredictionService{
		logger:   log,
		pipeline: logger.NewPipelineLogger(log),
		sources:  sources,
		builder:  builder,
		bank:     bank,
		combiner: combiner,
		cache:    cache,
	}
}

// Predict produces a single ensemble prediction for one candidate match.
func (s *PredictionService) Predict(ctx context.Context, match *models.MatchCandidate, asOf time.Time) (*models.Prediction, error) {
	prediction, _, err := s.predict(ctx, match, asOf)
	return prediction, err
}

// predict additionally returns the feature vector so callers composing
// larger flows (slip assembly, bonus prediction) avoid rebuilding it.
func (s *PredictionService) predict(ctx context.Context, match *models.MatchCandidate, asOf time.Time) (*models.Prediction, *models.FeatureVector, error) {
	if match == nil {
		return nil, nil, &models.DataUnavailableError{Component: "service", Entity: "match candidate"}
	}
	start := time.Now()

	vector, cacheHit, err := s.vectorFor(ctx, match, asOf)
	if err != nil {
		return nil, nil, err
	}

	outputs, skipped := s.bank.PredictAll(ctx, vector)
	metrics.ModelsSkippedTotal.Add(float64(len(skipped)))

	prediction, err := s.combiner.Combine(match.ID, vector, s.bank.Active(), outputs, skipped)
	if err != nil {
		return nil, nil, err
	}

	latency := time.Since(start)
	metrics.PredictionsTotal.Inc()
	metrics.PredictionDuration.Observe(latency.Seconds())
	if prediction.Degraded {
		metrics.PredictionsDegradedTotal.Inc()
		s.pipeline.LogDegradedInput(match.ID.String(), vector.MissingSources)
	}
	s.pipeline.LogPrediction(match.ID.String(), string(prediction.PredictedClass), prediction.Confidence,
		len(outputs), len(skipped), cacheHit, float64(latency.Milliseconds()))

	return prediction, vector, nil
}

// vectorFor builds (or recalls) the feature vector for one match.
func (s *PredictionService) vectorFor(ctx context.Context, match *models.MatchCandidate, asOf time.Time) (*models.FeatureVector, bool, error) {
	key := VectorKey{MatchID: match.ID, AsOf: asOf.Truncate(time.Minute), SchemaVersion: features.SchemaVersion}
	if s.cache != nil {
		if cached := s.cache.Get(key); cached != nil {
			return cached, true, nil
		}
	}

	input, err := s.gather(ctx, match, asOf)
	if err != nil {
		return nil, false, err
	}
	vector, err := s.builder.Build(input)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Set(key, vector)
	}
	return vector, false, nil
}

// gather pulls inputs from all sources. Required form lookups fail hard;
// optional sources degrade to nil and the builder fills neutral defaults.
func (s *PredictionService) gather(ctx context.Context, match *models.MatchCandidate, asOf time.Time) (features.BuildInput, error) {
	input := features.BuildInput{Match: match, AsOf: asOf}

	if s.sources.Form == nil {
		return input, &models.DataUnavailableError{Component: "service", Entity: "form source"}
	}
	homeForm, err := s.sources.Form.FormSnapshot(ctx, match.HomeTeam.ID, match.Season, asOf)
	if err != nil || homeForm == nil {
		return input, &models.DataUnavailableError{
			Component: "service",
			Entity:    fmt.Sprintf("form snapshot for team %d", match.HomeTeam.ID),
		}
	}
	awayForm, err := s.sources.Form.FormSnapshot(ctx, match.AwayTeam.ID, match.Season, asOf)
	if err != nil || awayForm == nil {
		return input, &models.DataUnavailableError{
			Component: "service",
			Entity:    fmt.Sprintf("form snapshot for team %d", match.AwayTeam.ID),
		}
	}
	input.HomeForm = homeForm
	input.AwayForm = awayForm

	if s.sources.Advanced != nil {
		input.HomeAdvanced = s.optionalAdvanced(ctx, match.HomeTeam.ID, match.Season, asOf)
		input.AwayAdvanced = s.optionalAdvanced(ctx, match.AwayTeam.ID, match.Season, asOf)
	}
	if s.sources.Market != nil {
		if market, err := s.sources.Market.MarketSignal(ctx, match.ID); err == nil && market != nil {
			input.Market = market
		} else if err != nil {
			s.logger.WithError(err).WithField("match_id", match.ID).Debug("Market signal lookup failed, degrading")
		}
	}
	if input.Market == nil && match.Market != nil {
		input.Market = match.Market
	}
	if s.sources.Context != nil {
		if extCtx, err := s.sources.Context.ExternalContext(ctx, match.ID); err == nil && extCtx != nil {
			input.Context = extCtx
		} else if err != nil {
			s.logger.WithError(err).WithField("match_id", match.ID).Debug("External context lookup failed, degrading")
		}
	}

	return input, nil
}

func (s *PredictionService) optionalAdvanced(ctx context.Context, teamID, season int, asOf time.Time) *models.AdvancedSignalSet {
	signals, err := s.sources.Advanced.AdvancedSignals(ctx, teamID, season, asOf)
	if err != nil {
		s.logger.WithError(err).WithField("team_id", teamID).Debug("Advanced signal lookup failed, degrading")
		return nil
	}
	return signals
}

// ModelVersion reports the active snapshot version, or uuid.Nil when no
// snapshot has been trained or restored yet.
func (s *PredictionService) ModelVersion() uuid.UUID {
	snapshot := s.bank.Active()
	if snapshot == nil {
		return uuid.Nil
	}
	return snapshot.Version
}
