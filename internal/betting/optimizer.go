package betting

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

const component = "betting"

// Config tunes the bet-structure optimizer.
type Config struct {
	// Prizes is the externally supplied average prize per correct-count
	// tier.
	Prizes PrizeTable
	// Systems is the official reduced-system table.
	Systems []ReducedSystem
	// GapPenalty discounts a slot's uncertainty by the favourite's lead.
	GapPenalty float64
	// UncertaintyFloor is the uncertainty value above which a slot wants a
	// double; twice the floor wants a triple.
	UncertaintyFloor float64
	// MaxMultiplicity caps marked outcomes per slot.
	MaxMultiplicity int
}

// Optimizer decides per-slot multiplicities, or selects an official reduced
// system, to maximize expected value without exceeding the budget.
type Optimizer struct {
	logger           *logrus.Logger
	prizes           PrizeTable
	systems          []ReducedSystem
	gapPenalty       float64
	uncertaintyFloor float64
	maxMultiplicity  int
}

// NewOptimizer creates a bet-structure optimizer.
func NewOptimizer(logger *logrus.Logger, cfg Config) *Optimizer {
	o := &Optimizer{
		logger:           logger,
		prizes:           cfg.Prizes,
		systems:          cfg.Systems,
		gapPenalty:       cfg.GapPenalty,
		uncertaintyFloor: cfg.UncertaintyFloor,
		maxMultiplicity:  cfg.MaxMultiplicity,
	}
	if len(o.prizes) == 0 {
		o.prizes = DefaultPrizeTable
	}
	if len(o.systems) == 0 {
		o.systems = OfficialReducedSystems
	}
	if o.gapPenalty <= 0 {
		o.gapPenalty = 0.5
	}
	if o.uncertaintyFloor <= 0 {
		o.uncertaintyFloor = 0.22
	}
	if o.maxMultiplicity < 1 || o.maxMultiplicity > 3 {
		o.maxMultiplicity = 3
	}
	return o
}

// Prizes returns the effective prize table after defaulting.
func (o *Optimizer) Prizes() PrizeTable {
	return o.prizes
}

// slotState tracks one regular slot during optimization.
type slotState struct {
	index       int
	ranked      [3]models.Outcome // outcomes by descending probability
	uncertainty float64
}

// Optimize allocates multiplicities for the slip's 14 regular slots.
func (o *Optimizer) Optimize(slip *models.Slip, budget models.CombinationBudget) (*models.BetStructure, error) {
	if slip == nil || !slip.Complete() {
		return nil, &models.DataUnavailableError{Component: component, Entity: "complete 15-slot slip"}
	}
	predictions := make([]models.ProbabilityTriple, models.RegularSlots)
	for i, slot := range slip.RegularSlotsView() {
		if slot.Prediction == nil {
			return nil, &models.DataUnavailableError{
				Component: component,
				Entity:    fmt.Sprintf("prediction for slot %d", slot.Number),
			}
		}
		predictions[i] = slot.Prediction.Probabilities
	}

	minCost := Cost(1, budget)
	if budget.MaxSpend.LessThan(minCost) {
		return nil, &models.BudgetTooLowError{
			Component: component,
			Budget:    budget.MaxSpend.StringFixed(2),
			Minimum:   minCost.StringFixed(2),
		}
	}

	slots := rankSlots(predictions, o.gapPenalty)
	markings := simpleMarkings(slots)

	markings = o.greedyUpgrade(markings, slots, predictions, budget)
	structure := o.buildStructure(slip, markings, predictions, budget)

	if reduced := o.tryReducedSystem(slip, slots, predictions, budget, structure); reduced != nil {
		structure = reduced
	}

	if o.logger != nil {
		o.logger.WithFields(logrus.Fields{
			"component":    component,
			"strategy":     structure.Strategy,
			"combinations": structure.Combinations,
			"cost":         structure.TotalCost.StringFixed(2),
			"ev":           structure.ExpectedValue,
		}).Info("Bet structure optimized")
	}
	return structure, nil
}

// rankSlots computes each slot's uncertainty value: the probability mass on
// the second-most-likely outcome, discounted by the favourite's lead.
func rankSlots(predictions []models.ProbabilityTriple, gapPenalty float64) []slotState {
	slots := make([]slotState, len(predictions))
	for i, probs := range predictions {
		order := [3]int{0, 1, 2}
		sort.Slice(order[:], func(a, b int) bool {
			if probs[order[a]] != probs[order[b]] {
				return probs[order[a]] > probs[order[b]]
			}
			return order[a] < order[b]
		})
		p1, p2 := probs[order[0]], probs[order[1]]
		slots[i] = slotState{
			index: i,
			ranked: [3]models.Outcome{
				models.OutcomeAt(order[0]),
				models.OutcomeAt(order[1]),
				models.OutcomeAt(order[2]),
			},
			uncertainty: p2 - gapPenalty*(p1-p2),
		}
	}
	return slots
}

func simpleMarkings(slots []slotState) []models.SlotMarking {
	markings := make([]models.SlotMarking, len(slots))
	for i, slot := range slots {
		markings[i] = models.SlotMarking{
			Slot:     i + 1,
			Outcomes: []models.Outcome{slot.ranked[0]},
		}
	}
	return markings
}

// greedyUpgrade walks slots in descending uncertainty, upgrading the first
// slot whose upgrade both fits the budget and improves expected value. Slots
// that are near-certain never upgrade because the extra combinations cost
// more EV than the second outcome's probability mass adds.
func (o *Optimizer) greedyUpgrade(markings []models.SlotMarking, slots []slotState, predictions []models.ProbabilityTriple, budget models.CombinationBudget) []models.SlotMarking {
	ranked := make([]slotState, len(slots))
	copy(ranked, slots)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].uncertainty > ranked[j].uncertainty
	})

	for {
		upgraded := false
		currentEV := ExpectedValue(markings, predictions, o.prizes, costFloat(markings, budget))

		for _, slot := range ranked {
			marking := &markings[slot.index]
			m := marking.Multiplicity()
			if m >= o.maxMultiplicity {
				continue
			}
			candidate := models.SlotMarking{
				Slot:     marking.Slot,
				Outcomes: append(append([]models.Outcome{}, marking.Outcomes...), slot.ranked[m]),
			}
			trial := make([]models.SlotMarking, len(markings))
			copy(trial, markings)
			trial[slot.index] = candidate

			if !Affordable(models.CombinationCount(trial), budget) {
				continue
			}
			trialEV := ExpectedValue(trial, predictions, o.prizes, costFloat(trial, budget))
			if trialEV <= currentEV {
				continue
			}
			markings = trial
			upgraded = true
			break
		}
		if !upgraded {
			return markings
		}
	}
}

func costFloat(markings []models.SlotMarking, budget models.CombinationBudget) float64 {
	f, _ := Cost(models.CombinationCount(markings), budget).Float64()
	return f
}

func (o *Optimizer) buildStructure(slip *models.Slip, markings []models.SlotMarking, predictions []models.ProbabilityTriple, budget models.CombinationBudget) *models.BetStructure {
	combinations := models.CombinationCount(markings)
	cost := Cost(combinations, budget)
	strategy := models.StrategySimple
	if combinations > 1 {
		strategy = models.StrategyMultiple
	}
	costF, _ := cost.Float64()
	return &models.BetStructure{
		ID:            uuid.New(),
		SlipID:        slip.ID,
		Markings:      markings,
		Combinations:  combinations,
		TotalCost:     cost,
		ExpectedValue: ExpectedValue(markings, predictions, o.prizes, costF),
		Strategy:      strategy,
		CreatedAt:     time.Now(),
	}
}

// tryReducedSystem checks whether the slip wants more coverage than the
// direct multiple could afford and, if an official system fits the budget
// with better EV, builds the reduced structure instead. Its combination
// count and price come straight from the static table.
func (o *Optimizer) tryReducedSystem(slip *models.Slip, slots []slotState, predictions []models.ProbabilityTriple, budget models.CombinationBudget, direct *models.BetStructure) *models.BetStructure {
	wantDoubles, wantTriples := 0, 0
	for _, slot := range slots {
		switch {
		case slot.uncertainty >= 2*o.uncertaintyFloor:
			wantTriples++
		case slot.uncertainty >= o.uncertaintyFloor:
			wantDoubles++
		}
	}
	haveDoubles, haveTriples := 0, 0
	for _, m := range direct.Markings {
		switch m.Multiplicity() {
		case 2:
			haveDoubles++
		case 3:
			haveTriples++
		}
	}
	if haveDoubles >= wantDoubles && haveTriples >= wantTriples {
		return nil
	}

	maxSystemSpend := budget.MaxSpend
	if budget.WithBonus {
		maxSystemSpend = maxSystemSpend.Sub(budget.BonusPrice)
	}
	system := bestSystem(o.systems, maxSystemSpend, wantDoubles, wantTriples)
	if system == nil {
		return nil
	}

	markings := o.reducedMarkings(slots, system)
	cost := system.Price
	if budget.WithBonus {
		cost = cost.Add(budget.BonusPrice)
	}
	costF, _ := cost.Float64()

	// The played subset covers a fraction of the full multiple; scale the
	// prize mass by that coverage before comparing against the direct EV.
	coverage := float64(system.Played) / float64(system.FullCoverage)
	gross := ExpectedValue(markings, predictions, o.prizes, 0)
	ev := gross*coverage - costF
	if ev <= direct.ExpectedValue {
		return nil
	}

	return &models.BetStructure{
		ID:            uuid.New(),
		SlipID:        slip.ID,
		Markings:      markings,
		Combinations:  system.Played,
		TotalCost:     cost,
		ExpectedValue: ev,
		Strategy:      models.StrategyReduced,
		SystemName:    system.Name,
		CreatedAt:     time.Now(),
	}
}

// reducedMarkings assigns the system's triples to the highest-uncertainty
// slots and its doubles to the next block; everything else stays simple.
func (o *Optimizer) reducedMarkings(slots []slotState, system *ReducedSystem) []models.SlotMarking {
	ranked := make([]slotState, len(slots))
	copy(ranked, slots)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].uncertainty > ranked[j].uncertainty
	})

	markings := simpleMarkings(slots)
	pos := 0
	for t := 0; t < system.Triples && pos < len(ranked); t++ {
		slot := ranked[pos]
		markings[slot.index].Outcomes = []models.Outcome{slot.ranked[0], slot.ranked[1], slot.ranked[2]}
		pos++
	}
	for d := 0; d < system.Doubles && pos < len(ranked); d++ {
		slot := ranked[pos]
		markings[slot.index].Outcomes = []models.Outcome{slot.ranked[0], slot.ranked[1]}
		pos++
	}
	return markings
}
