package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetStrategy names the way a bet structure was produced.
type BetStrategy string

const (
	// StrategySimple marks a single-outcome-per-slot structure.
	StrategySimple BetStrategy = "simple"
	// StrategyMultiple marks a direct multiple with doubles/triples.
	StrategyMultiple BetStrategy = "multiple"
	// StrategyReduced marks an official reduced system.
	StrategyReduced BetStrategy = "reduced"
)

// SlotMarking holds the outcomes marked in one slot, 1 to 3 of them.
type SlotMarking struct {
	Slot     int       `json:"slot" validate:"required,gte=1,lte=14"`
	Outcomes []Outcome `json:"outcomes" validate:"required,min=1,max=3"`
}

// Multiplicity is the number of distinct outcomes marked.
func (m SlotMarking) Multiplicity() int {
	return len(m.Outcomes)
}

// Contains reports whether the marking covers the given outcome.
func (m SlotMarking) Contains(o Outcome) bool {
	for _, marked := range m.Outcomes {
		if marked == o {
			return true
		}
	}
	return false
}

// GoalBucket is a Pleno al 15 per-team goal count prediction.
type GoalBucket string

const (
	BucketZero GoalBucket = "0"
	BucketOne  GoalBucket = "1"
	BucketTwo  GoalBucket = "2"
	BucketMany GoalBucket = "M"
)

// BonusPrediction is the exact-score (goal bucket per team) pick for slot 15.
type BonusPrediction struct {
	HomeGoals GoalBucket `json:"home_goals" validate:"required,oneof=0 1 2 M"`
	AwayGoals GoalBucket `json:"away_goals" validate:"required,oneof=0 1 2 M"`
}

// CombinationBudget bounds what a bet structure may cost.
type CombinationBudget struct {
	MaxSpend   decimal.Decimal `json:"max_spend"`
	BasePrice  decimal.Decimal `json:"base_price"`
	BonusPrice decimal.Decimal `json:"bonus_price"`
	WithBonus  bool            `json:"with_bonus"`
}

// BetStructure is the finished allocation of marked outcomes over a slip.
type BetStructure struct {
	ID            uuid.UUID        `json:"id"`
	SlipID        uuid.UUID        `json:"slip_id"`
	Markings      []SlotMarking    `json:"markings" validate:"required,len=14"`
	Bonus         *BonusPrediction `json:"bonus,omitempty"`
	Combinations  int64            `json:"combinations"`
	TotalCost     decimal.Decimal  `json:"total_cost"`
	ExpectedValue float64          `json:"expected_value"`
	Strategy      BetStrategy      `json:"strategy"`
	SystemName    string           `json:"system_name,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// CombinationCount is the product of per-slot multiplicities.
func CombinationCount(markings []SlotMarking) int64 {
	total := int64(1)
	for _, m := range markings {
		total *= int64(m.Multiplicity())
	}
	return total
}

// Multiplicities returns the per-slot multiplicity profile in slot order.
func (b *BetStructure) Multiplicities() []int {
	out := make([]int, len(b.Markings))
	for i, m := range b.Markings {
		out[i] = m.Multiplicity()
	}
	return out
}
