package betting

import "github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"

// GoalRateBucket maps an expected per-team goal rate to the official bonus
// slot options: 0, 1, 2, or M (three or more).
func GoalRateBucket(rate float64) models.GoalBucket {
	switch {
	case rate < 0.5:
		return models.BucketZero
	case rate < 1.5:
		return models.BucketOne
	case rate < 2.5:
		return models.BucketTwo
	default:
		return models.BucketMany
	}
}

// PredictBonus derives the exact-score pick for slot 15 from the two teams'
// expected scoring rates, nudged by the outcome distribution so the pick
// never contradicts the predicted result.
func PredictBonus(homeRate, awayRate float64, probs models.ProbabilityTriple) models.BonusPrediction {
	home := GoalRateBucket(homeRate)
	away := GoalRateBucket(awayRate)

	_, top := probs.Max()
	switch models.OutcomeAt(top) {
	case models.OutcomeHome:
		if !bucketGreater(home, away) {
			home = bumpBucket(away)
		}
	case models.OutcomeAway:
		if !bucketGreater(away, home) {
			away = bumpBucket(home)
		}
	case models.OutcomeDraw:
		if home != away {
			away = home
		}
	}
	return models.BonusPrediction{HomeGoals: home, AwayGoals: away}
}

var bucketOrder = map[models.GoalBucket]int{
	models.BucketZero: 0,
	models.BucketOne:  1,
	models.BucketTwo:  2,
	models.BucketMany: 3,
}

func bucketGreater(a, b models.GoalBucket) bool {
	return bucketOrder[a] > bucketOrder[b]
}

func bumpBucket(b models.GoalBucket) models.GoalBucket {
	switch b {
	case models.BucketZero:
		return models.BucketOne
	case models.BucketOne:
		return models.BucketTwo
	default:
		return models.BucketMany
	}
}
