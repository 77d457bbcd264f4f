package betting

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// PrizeTable maps a correct-count threshold (10..14) to the externally
// supplied average prize for that tier.
type PrizeTable map[int]float64

// DefaultPrizeTable mirrors long-run average payouts per tier.
var DefaultPrizeTable = PrizeTable{
	10: 15.0,
	11: 25.0,
	12: 80.0,
	13: 500.0,
	14: 15000.0,
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// markedSetProbabilities returns, per regular slot, the probability that the
// marked outcome set contains the true result.
func markedSetProbabilities(markings []models.SlotMarking, predictions []models.ProbabilityTriple) []float64 {
	probs := make([]float64, len(markings))
	for i, marking := range markings {
		p := 0.0
		for _, outcome := range marking.Outcomes {
			p += predictions[i][outcome.Index()]
		}
		if p > 1 {
			p = 1
		}
		probs[i] = p
	}
	return probs
}

// ProbabilityAtLeast approximates P(at least k of the slots are correct)
// with a normal approximation to the slot-success binomial, using a
// continuity correction. Slot success probabilities may differ; the
// approximation uses their exact mean and variance.
func ProbabilityAtLeast(k int, slotProbs []float64) float64 {
	mean := 0.0
	variance := 0.0
	for _, p := range slotProbs {
		mean += p
		variance += p * (1 - p)
	}
	if variance <= 0 {
		// Degenerate slip: every slot certain one way or the other.
		if float64(k) <= mean {
			return 1
		}
		return 0
	}
	z := (float64(k) - 0.5 - mean) / math.Sqrt(variance)
	p := 1 - stdNormal.CDF(z)
	return math.Max(0, math.Min(1, p))
}

// ExpectedValue estimates EV for a marking set: the prize-weighted tail
// probabilities over the 14 regular slots minus the stake.
func ExpectedValue(markings []models.SlotMarking, predictions []models.ProbabilityTriple, prizes PrizeTable, cost float64) float64 {
	slotProbs := markedSetProbabilities(markings, predictions)
	ev := -cost
	for k := 10; k <= models.RegularSlots; k++ {
		prize, ok := prizes[k]
		if !ok {
			continue
		}
		ev += ProbabilityAtLeast(k, slotProbs) * prize
	}
	return ev
}
