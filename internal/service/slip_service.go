package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/betting"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/logger"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/metrics"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/selection"
)

// SlipService assembles a full betting round: pick 15 fixtures, predict
// every slot, and allocate a bet structure inside the budget.
type SlipService struct {
	logger     *logrus.Logger
	pipeline   *logger.PipelineLogger
	selector   *selection.Optimizer
	predictor  *PredictionService
	structurer *betting.Optimizer
}

// RoundResult is the finished output of one slip build.
type RoundResult struct {
	Slip      *models.Slip         `json:"slip"`
	Structure *models.BetStructure `json:"structure"`
	Value     betting.ValueSummary `json:"value"`
}

// NewSlipService creates a slip service over the given collaborators.
func NewSlipService(log *logrus.Logger, selector *selection.Optimizer, predictor *PredictionService, structurer *betting.Optimizer) *SlipService {
	return &SlipService{
		logger:     log,
		pipeline:   logger.NewPipelineLogger(log),
		selector:   selector,
		predictor:  predictor,
		structurer: structurer,
	}
}

// BuildRound runs the full pipeline for one round: selection, per-slot
// predictions, bet-structure optimization, and the bonus-slot score buckets.
func (s *SlipService) BuildRound(ctx context.Context, candidates []*models.MatchCandidate, budget models.CombinationBudget, asOf time.Time) (*RoundResult, error) {
	slip, err := s.selector.SelectSlip(candidates)
	if err != nil {
		return nil, err
	}
	metrics.SlipsBuiltTotal.Inc()

	var bonusVector *models.FeatureVector
	for i := range slip.Slots {
		slot := &slip.Slots[i]
		prediction, vector, err := s.predictor.predict(ctx, slot.Match, asOf)
		if err != nil {
			return nil, err
		}
		slot.Prediction = prediction
		if slot.Bonus {
			bonusVector = vector
		}
	}

	structure, err := s.structurer.Optimize(slip, budget)
	if err != nil {
		return nil, err
	}
	if budget.WithBonus && bonusVector != nil {
		s.attachBonus(structure, slip, bonusVector)
	}
	metrics.BetStructuresTotal.WithLabelValues(string(structure.Strategy)).Inc()

	predictions := make([]models.ProbabilityTriple, models.RegularSlots)
	for i, slot := range slip.RegularSlotsView() {
		predictions[i] = slot.Prediction.Probabilities
	}
	value := betting.EstimateCombinationValue(structure, predictions, s.structurer.Prizes())

	s.pipeline.LogSlipBuilt(slip.ID.String(), slip.Round,
		countSlotTier(slip, models.TierPrimary), countSlotTier(slip, models.TierSecondary),
		string(structure.Strategy), structure.Combinations, structure.TotalCost.StringFixed(2))

	return &RoundResult{Slip: slip, Structure: structure, Value: value}, nil
}

// attachBonus derives the slot-15 exact-score buckets from the bonus match's
// per-team goal rates and its outcome probabilities.
func (s *SlipService) attachBonus(structure *models.BetStructure, slip *models.Slip, vector *models.FeatureVector) {
	bonus := slip.BonusSlot()
	if bonus == nil || bonus.Prediction == nil {
		return
	}
	homeRate, _ := vector.Value(features.FeatHomeGoalsPG)
	awayRate, _ := vector.Value(features.FeatAwayGoalsPG)
	prediction := betting.PredictBonus(homeRate, awayRate, bonus.Prediction.Probabilities)
	structure.Bonus = &prediction
}

func countSlotTier(slip *models.Slip, tier models.Tier) int {
	count := 0
	for _, slot := range slip.RegularSlotsView() {
		if slot.Tier == tier {
			count++
		}
	}
	return count
}
