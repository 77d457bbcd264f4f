package betting

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

func euroBudget(maxSpend float64, withBonus bool) models.CombinationBudget {
	return models.CombinationBudget{
		MaxSpend:   decimal.NewFromFloat(maxSpend),
		BasePrice:  decimal.NewFromFloat(0.75),
		BonusPrice: decimal.NewFromFloat(0.50),
		WithBonus:  withBonus,
	}
}

func slipWith(predictions []models.ProbabilityTriple) *models.Slip {
	slip := &models.Slip{ID: uuid.New(), Season: 2025, Round: "2025-W36"}
	for i := 0; i < models.SlipSize; i++ {
		probs := predictions[models.RegularSlots-1]
		if i < models.RegularSlots {
			probs = predictions[i]
		}
		slip.Slots = append(slip.Slots, models.SlipSlot{
			Number: i + 1,
			Match:  &models.MatchCandidate{ID: uuid.New(), KickoffAt: time.Now()},
			Bonus:  i == models.SlipSize-1,
			Prediction: &models.Prediction{
				ID:            uuid.New(),
				Probabilities: probs,
			},
		})
	}
	return slip
}

func uniformPredictions(p models.ProbabilityTriple) []models.ProbabilityTriple {
	predictions := make([]models.ProbabilityTriple, models.RegularSlots)
	for i := range predictions {
		predictions[i] = p
	}
	return predictions
}

func TestCost(t *testing.T) {
	if got := Cost(1, euroBudget(100, false)); !got.Equal(decimal.NewFromFloat(0.75)) {
		t.Fatalf("one simple column should cost 0.75, got %s", got)
	}
	if got := Cost(1, euroBudget(100, true)); !got.Equal(decimal.NewFromFloat(1.25)) {
		t.Fatalf("simple column with bonus should cost 1.25, got %s", got)
	}
	if got := Cost(6, euroBudget(100, false)); !got.Equal(decimal.NewFromFloat(4.50)) {
		t.Fatalf("six combinations should cost 4.50, got %s", got)
	}
}

func TestProbabilityAtLeastMonotone(t *testing.T) {
	slotProbs := make([]float64, models.RegularSlots)
	for i := range slotProbs {
		slotProbs[i] = 0.6
	}
	prev := 1.0
	for k := 10; k <= 14; k++ {
		p := ProbabilityAtLeast(k, slotProbs)
		if p < 0 || p > 1 {
			t.Fatalf("P(>=%d) = %f out of range", k, p)
		}
		if p > prev {
			t.Fatalf("tail probability must not increase with k")
		}
		prev = p
	}
}

func TestProbabilityAtLeastDegenerate(t *testing.T) {
	certain := make([]float64, models.RegularSlots)
	for i := range certain {
		certain[i] = 1.0
	}
	if got := ProbabilityAtLeast(14, certain); got != 1 {
		t.Fatalf("all-certain slip must hit 14, got %f", got)
	}
	if got := ProbabilityAtLeast(14, make([]float64, models.RegularSlots)); got != 0 {
		t.Fatalf("all-impossible slip must miss, got %f", got)
	}
}

func TestOptimizeBudgetTooLow(t *testing.T) {
	optimizer := NewOptimizer(nil, Config{})
	slip := slipWith(uniformPredictions(models.ProbabilityTriple{0.5, 0.3, 0.2}))

	_, err := optimizer.Optimize(slip, euroBudget(0.50, false))
	if !errors.Is(err, models.ErrBudgetTooLow) {
		t.Fatalf("expected BudgetTooLow, got %v", err)
	}

	// With the bonus the minimum rises to 1.25.
	_, err = optimizer.Optimize(slip, euroBudget(1.00, true))
	if !errors.Is(err, models.ErrBudgetTooLow) {
		t.Fatalf("expected BudgetTooLow with bonus, got %v", err)
	}
}

func TestOptimizeIncompleteSlip(t *testing.T) {
	optimizer := NewOptimizer(nil, Config{})
	slip := slipWith(uniformPredictions(models.ProbabilityTriple{0.5, 0.3, 0.2}))
	slip.Slots = slip.Slots[:14]

	if _, err := optimizer.Optimize(slip, euroBudget(10, false)); !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected DataUnavailable for incomplete slip, got %v", err)
	}
}

func TestOptimizeMissingPrediction(t *testing.T) {
	optimizer := NewOptimizer(nil, Config{})
	slip := slipWith(uniformPredictions(models.ProbabilityTriple{0.5, 0.3, 0.2}))
	slip.Slots[4].Prediction = nil

	if _, err := optimizer.Optimize(slip, euroBudget(10, false)); !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected DataUnavailable for missing slot prediction, got %v", err)
	}
}

func TestOptimizeNearCertainStaysSimple(t *testing.T) {
	optimizer := NewOptimizer(nil, Config{})
	slip := slipWith(uniformPredictions(models.ProbabilityTriple{0.90, 0.05, 0.05}))

	structure, err := optimizer.Optimize(slip, euroBudget(1.00, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if structure.Strategy != models.StrategySimple {
		t.Fatalf("near-certain slots should stay simple, got %s", structure.Strategy)
	}
	if structure.Combinations != 1 {
		t.Fatalf("expected a single column, got %d", structure.Combinations)
	}
	if !structure.TotalCost.Equal(decimal.NewFromFloat(0.75)) {
		t.Fatalf("expected cost 0.75, got %s", structure.TotalCost)
	}
	for _, marking := range structure.Markings {
		if marking.Multiplicity() != 1 || marking.Outcomes[0] != models.OutcomeHome {
			t.Fatalf("expected simple home mark on every slot, got %v", marking.Outcomes)
		}
	}
}

func TestOptimizeUpgradesUncertainSlots(t *testing.T) {
	optimizer := NewOptimizer(nil, Config{})
	predictions := uniformPredictions(models.ProbabilityTriple{0.80, 0.12, 0.08})
	// Two genuinely open matches.
	predictions[3] = models.ProbabilityTriple{0.40, 0.38, 0.22}
	predictions[9] = models.ProbabilityTriple{0.36, 0.34, 0.30}
	slip := slipWith(predictions)

	structure, err := optimizer.Optimize(slip, euroBudget(12.00, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if structure.Combinations <= 1 {
		t.Fatalf("open matches within budget should produce a multiple")
	}
	if !structure.TotalCost.LessThanOrEqual(decimal.NewFromFloat(12.00)) {
		t.Fatalf("cost %s exceeds budget", structure.TotalCost)
	}
	if structure.Strategy == models.StrategyMultiple {
		// Certain slots must remain simple in a direct multiple.
		for i, marking := range structure.Markings {
			if i != 3 && i != 9 && marking.Multiplicity() != 1 {
				t.Fatalf("certain slot %d was upgraded", i+1)
			}
		}
	}
}

func TestOptimizeReducedSystemWhenCoverageWanted(t *testing.T) {
	optimizer := NewOptimizer(nil, Config{})
	// Everything is open: desired coverage far beyond a small direct budget.
	slip := slipWith(uniformPredictions(models.ProbabilityTriple{0.36, 0.33, 0.31}))

	structure, err := optimizer.Optimize(slip, euroBudget(7.00, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if structure.Strategy == models.StrategyReduced {
		if structure.SystemName == "" {
			t.Fatalf("reduced structure must name its system")
		}
		if !structure.TotalCost.LessThanOrEqual(decimal.NewFromFloat(7.00)) {
			t.Fatalf("reduced cost %s exceeds budget", structure.TotalCost)
		}
	}
	if !structure.TotalCost.LessThanOrEqual(decimal.NewFromFloat(7.00)) {
		t.Fatalf("cost %s exceeds budget", structure.TotalCost)
	}
}

func TestBestSystemPicksClosestFit(t *testing.T) {
	budget := decimal.NewFromFloat(12.00)
	system := bestSystem(OfficialReducedSystems, budget, 7, 0)
	if system == nil {
		t.Fatalf("expected an affordable system")
	}
	if system.Name != "7 dobles" {
		t.Fatalf("expected the 7-dobles system, got %s", system.Name)
	}

	if got := bestSystem(OfficialReducedSystems, decimal.NewFromFloat(5.00), 7, 0); got != nil {
		t.Fatalf("no system is affordable at 5.00, got %s", got.Name)
	}
}

func TestGoalRateBuckets(t *testing.T) {
	cases := []struct {
		rate   float64
		bucket models.GoalBucket
	}{
		{0.2, models.BucketZero},
		{0.8, models.BucketOne},
		{1.9, models.BucketTwo},
		{3.4, models.BucketMany},
	}
	for _, tc := range cases {
		if got := GoalRateBucket(tc.rate); got != tc.bucket {
			t.Fatalf("rate %f: expected %s, got %s", tc.rate, tc.bucket, got)
		}
	}
}

func TestPredictBonusAgreesWithOutcome(t *testing.T) {
	// Home favourite with equal rates: the home bucket is nudged up.
	bonus := PredictBonus(1.2, 1.2, models.ProbabilityTriple{0.6, 0.25, 0.15})
	if !bucketGreater(bonus.HomeGoals, bonus.AwayGoals) {
		t.Fatalf("home-win bonus pick must score home above away, got %s-%s", bonus.HomeGoals, bonus.AwayGoals)
	}

	// Predicted draw forces equal buckets.
	bonus = PredictBonus(1.8, 0.4, models.ProbabilityTriple{0.3, 0.45, 0.25})
	if bonus.HomeGoals != bonus.AwayGoals {
		t.Fatalf("draw bonus pick must have equal buckets, got %s-%s", bonus.HomeGoals, bonus.AwayGoals)
	}

	// Away favourite mirrors the home case.
	bonus = PredictBonus(0.9, 0.9, models.ProbabilityTriple{0.15, 0.25, 0.6})
	if !bucketGreater(bonus.AwayGoals, bonus.HomeGoals) {
		t.Fatalf("away-win bonus pick must score away above home, got %s-%s", bonus.HomeGoals, bonus.AwayGoals)
	}
}

func TestEstimateCombinationValue(t *testing.T) {
	optimizer := NewOptimizer(nil, Config{})
	slip := slipWith(uniformPredictions(models.ProbabilityTriple{0.7, 0.2, 0.1}))
	structure, err := optimizer.Optimize(slip, euroBudget(6.00, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	predictions := uniformPredictions(models.ProbabilityTriple{0.7, 0.2, 0.1})
	value := EstimateCombinationValue(structure, predictions, DefaultPrizeTable)
	if value.ProbTenPlus < value.ProbFourteen {
		t.Fatalf("P(>=10) cannot be below P(=14)")
	}
	cost, _ := structure.TotalCost.Float64()
	if math.Abs(value.ExpectedValue-structure.ExpectedValue) > math.Max(1, cost) {
		// Both use the same estimator; they only differ if the structure
		// was produced by the reduced path.
		if structure.Strategy != models.StrategyReduced {
			t.Fatalf("value summary EV %f far from structure EV %f", value.ExpectedValue, structure.ExpectedValue)
		}
	}
}
