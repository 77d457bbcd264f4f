package betting

import "github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"

// ValueSummary condenses a finished structure's prize outlook.
type ValueSummary struct {
	ExpectedValue float64 `json:"expected_value"`
	ROIPercent    float64 `json:"roi_percent"`
	ProbTenPlus   float64 `json:"prob_ten_plus"`
	ProbFourteen  float64 `json:"prob_fourteen"`
}

// EstimateCombinationValue summarizes EV and hit probabilities for a
// structure against the prize table.
func EstimateCombinationValue(structure *models.BetStructure, predictions []models.ProbabilityTriple, prizes PrizeTable) ValueSummary {
	slotProbs := markedSetProbabilities(structure.Markings, predictions)
	cost, _ := structure.TotalCost.Float64()
	ev := ExpectedValue(structure.Markings, predictions, prizes, cost)
	summary := ValueSummary{
		ExpectedValue: ev,
		ProbTenPlus:   ProbabilityAtLeast(10, slotProbs),
		ProbFourteen:  ProbabilityAtLeast(models.RegularSlots, slotProbs),
	}
	if cost > 0 {
		summary.ROIPercent = ev / cost * 100
	}
	return summary
}
