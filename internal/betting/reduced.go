package betting

import (
	"github.com/shopspring/decimal"
)

// ReducedSystem describes one officially published reduced combination set.
// The played-combination count and price are domain data read straight from
// the official table, never derived.
type ReducedSystem struct {
	Name         string          `json:"name" mapstructure:"name"`
	Doubles      int             `json:"doubles" mapstructure:"doubles"`
	Triples      int             `json:"triples" mapstructure:"triples"`
	FullCoverage int64           `json:"full_coverage" mapstructure:"full_coverage"`
	Played       int64           `json:"played" mapstructure:"played"`
	Price        decimal.Decimal `json:"price" mapstructure:"price"`
}

// OfficialReducedSystems is the authorized table (Loterías y Apuestas del
// Estado) used when no table is supplied through configuration.
var OfficialReducedSystems = []ReducedSystem{
	{Name: "4 triples", Doubles: 0, Triples: 4, FullCoverage: 81, Played: 9, Price: decimal.NewFromFloat(6.75)},
	{Name: "7 dobles", Doubles: 7, Triples: 0, FullCoverage: 128, Played: 16, Price: decimal.NewFromFloat(12.00)},
	{Name: "3 dobles y 3 triples", Doubles: 3, Triples: 3, FullCoverage: 216, Played: 24, Price: decimal.NewFromFloat(18.00)},
	{Name: "2 triples y 6 dobles", Doubles: 6, Triples: 2, FullCoverage: 576, Played: 64, Price: decimal.NewFromFloat(48.00)},
	{Name: "8 triples", Doubles: 0, Triples: 8, FullCoverage: 6561, Played: 81, Price: decimal.NewFromFloat(60.75)},
	{Name: "11 dobles", Doubles: 11, Triples: 0, FullCoverage: 2048, Played: 132, Price: decimal.NewFromFloat(99.00)},
}

// bestSystem picks the affordable system whose doubles/triples profile best
// matches the desired counts. Triple mismatches weigh double since a triple
// covers more outcomes. Returns nil when nothing fits the budget.
func bestSystem(systems []ReducedSystem, maxSpend decimal.Decimal, wantDoubles, wantTriples int) *ReducedSystem {
	var best *ReducedSystem
	bestScore := 0
	for i := range systems {
		sys := &systems[i]
		if sys.Price.GreaterThan(maxSpend) {
			continue
		}
		score := abs(sys.Doubles-wantDoubles) + 2*abs(sys.Triples-wantTriples)
		if best == nil || score < bestScore || (score == bestScore && sys.Price.GreaterThan(best.Price)) {
			best, bestScore = sys, score
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
