// Package betting allocates marked-outcome multiplicities over a slip under
// a budget, or falls back to an official reduced system.
package betting

import (
	"github.com/shopspring/decimal"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// Cost computes total price: combinations × base price, plus the bonus-game
// unit when enabled.
func Cost(combinations int64, budget models.CombinationBudget) decimal.Decimal {
	cost := budget.BasePrice.Mul(decimal.NewFromInt(combinations))
	if budget.WithBonus {
		cost = cost.Add(budget.BonusPrice)
	}
	return cost
}

// Affordable reports whether the combination count fits the budget ceiling.
func Affordable(combinations int64, budget models.CombinationBudget) bool {
	return Cost(combinations, budget).LessThanOrEqual(budget.MaxSpend)
}
