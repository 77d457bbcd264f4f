package modelbank

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// syntheticRows builds separable training data: strong home sides win,
// strong away sides lose, balanced sides draw.
func syntheticRows(t *testing.T, n int, withMarket bool) []TrainingRow {
	t.Helper()
	builder := features.NewBuilder()
	rng := rand.New(rand.NewSource(7))
	rows := make([]TrainingRow, 0, n)

	for i := 0; i < n; i++ {
		var result models.Outcome
		var homePoints, awayPoints int
		switch i % 3 {
		case 0:
			result = models.OutcomeHome
			homePoints, awayPoints = 24+rng.Intn(4), 6+rng.Intn(3)
		case 1:
			result = models.OutcomeDraw
			homePoints, awayPoints = 14+rng.Intn(2), 14+rng.Intn(2)
		default:
			result = models.OutcomeAway
			homePoints, awayPoints = 6+rng.Intn(3), 24+rng.Intn(4)
		}

		input := features.BuildInput{
			Match: &models.MatchCandidate{
				ID:         uuid.New(),
				ExternalID: 1000 + i,
				Season:     2025,
				Tier:       models.TierPrimary,
				KickoffAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
				HomeTeam:   models.TeamRef{ID: 1 + i, Name: "Home"},
				AwayTeam:   models.TeamRef{ID: 100 + i, Name: "Away"},
			},
			HomeForm: formWithPoints(1+i, homePoints),
			AwayForm: formWithPoints(100+i, awayPoints),
			AsOf:     time.Now(),
		}
		if withMarket {
			input.Market = marketFor(result)
		}

		vector, err := builder.Build(input)
		if err != nil {
			t.Fatalf("failed to build row vector: %v", err)
		}
		rows = append(rows, TrainingRow{Vector: vector, Result: result})
	}
	return rows
}

func formWithPoints(teamID, points int) *models.TeamFormSnapshot {
	wins := points / 3
	return &models.TeamFormSnapshot{
		TeamID: teamID, Season: 2025, AsOf: time.Now(),
		MatchesPlayed: 10, Wins: wins, Draws: points % 3, Losses: 10 - wins,
		GoalsFor: 5 + wins, GoalsAgainst: 15 - wins,
		Points: points, Position: 21 - 2*wins,
		HomeWins: wins / 2, AwayWins: wins / 2,
		LastFive: "WDLWD",
	}
}

func marketFor(result models.Outcome) *models.MarketSignal {
	triple := models.ImpliedTriple{Home: 0.34, Draw: 0.33, Away: 0.33}
	switch result {
	case models.OutcomeHome:
		triple = models.ImpliedTriple{Home: 0.62, Draw: 0.22, Away: 0.16}
	case models.OutcomeDraw:
		triple = models.ImpliedTriple{Home: 0.30, Draw: 0.42, Away: 0.28}
	case models.OutcomeAway:
		triple = models.ImpliedTriple{Home: 0.16, Draw: 0.22, Away: 0.62}
	}
	return &models.MarketSignal{Opening: triple, Closing: triple, Overround: 1.04}
}

func assertValidOutput(t *testing.T, out ModelOutput) {
	t.Helper()
	if math.Abs(out.Probabilities.Sum()-1.0) > 1e-6 {
		t.Fatalf("%s probabilities sum to %f", out.ModelID, out.Probabilities.Sum())
	}
	max, _ := out.Probabilities.Max()
	if out.Confidence != max {
		t.Fatalf("%s confidence %f does not equal max probability %f", out.ModelID, out.Confidence, max)
	}
}

func TestClassifiersTrainAndPredict(t *testing.T) {
	rows := syntheticRows(t, 90, true)
	ctx := context.Background()

	for _, c := range DefaultFactory() {
		report, err := c.Train(ctx, rows)
		if err != nil {
			t.Fatalf("%s failed to train: %v", c.ID(), err)
		}
		if report.Accuracy <= 0.34 {
			t.Fatalf("%s holdout accuracy %f no better than chance", c.ID(), report.Accuracy)
		}

		out, err := c.Predict(ctx, rows[0].Vector)
		if err != nil {
			t.Fatalf("%s failed to predict: %v", c.ID(), err)
		}
		assertValidOutput(t, out)
	}
}

func TestPoissonFavorsStrongHomeSide(t *testing.T) {
	rows := syntheticRows(t, 60, false)
	model := NewPoissonModel()
	if _, err := model.Train(context.Background(), rows); err != nil {
		t.Fatalf("train failed: %v", err)
	}

	// rows[0] is a strong-home fixture by construction.
	out, err := model.Predict(context.Background(), rows[0].Vector)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if out.Probabilities[0] <= out.Probabilities[2] {
		t.Fatalf("expected home favourite, got %v", out.Probabilities)
	}
}

func TestLogisticFeatureImportance(t *testing.T) {
	rows := syntheticRows(t, 60, false)
	model := NewLogisticModel()
	if _, err := model.Train(context.Background(), rows); err != nil {
		t.Fatalf("train failed: %v", err)
	}
	importance := model.FeatureImportance()
	if len(importance) == 0 {
		t.Fatalf("expected non-empty feature importance")
	}
	for name, weight := range importance {
		if weight < 0 {
			t.Fatalf("importance for %s is negative", name)
		}
	}
}

func TestMarketModelRequiresMarketSource(t *testing.T) {
	rows := syntheticRows(t, 60, true)
	model := NewMarketModel()
	if _, err := model.Train(context.Background(), rows); err != nil {
		t.Fatalf("train failed: %v", err)
	}

	bare := syntheticRows(t, 3, false)
	if _, err := model.Predict(context.Background(), bare[0].Vector); !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected DataUnavailable without market source, got %v", err)
	}
}

func TestTrainTooFewRows(t *testing.T) {
	rows := syntheticRows(t, 5, false)
	for _, c := range DefaultFactory() {
		if _, err := c.Train(context.Background(), rows); err == nil {
			t.Fatalf("%s trained on %d rows, expected failure", c.ID(), len(rows))
		}
	}
}

func TestBankNoSnapshotSkipsEverything(t *testing.T) {
	bank := NewBank(nil, DefaultFactory, DefaultModelTimeout)
	rows := syntheticRows(t, 3, false)

	outputs, skipped := bank.PredictAll(context.Background(), rows[0].Vector)
	if len(outputs) != 0 {
		t.Fatalf("expected no outputs without a snapshot")
	}
	if len(skipped) == 0 {
		t.Fatalf("expected skip reasons without a snapshot")
	}
}

func TestBankTrainActivatesSnapshot(t *testing.T) {
	bank := NewBank(nil, DefaultFactory, DefaultModelTimeout)
	rows := syntheticRows(t, 90, true)

	report, err := bank.Train(context.Background(), rows)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if report.Rows != len(rows) {
		t.Fatalf("report rows %d, expected %d", report.Rows, len(rows))
	}

	snapshot := bank.Active()
	if snapshot == nil || snapshot.Version != report.Version {
		t.Fatalf("active snapshot does not match report version")
	}
	if !bank.HasActiveSnapshot() {
		t.Fatalf("expected active snapshot after training")
	}

	outputs, skipped := bank.PredictAll(context.Background(), rows[0].Vector)
	if len(outputs) == 0 {
		t.Fatalf("expected outputs from trained bank, skipped=%v", skipped)
	}
	for _, out := range outputs {
		assertValidOutput(t, out)
	}
}

func TestSplitRowsFraction(t *testing.T) {
	rows := syntheticRows(t, 100, false)

	train, holdout := splitRows(rows, 0.3)
	if len(holdout) != 30 || len(train) != 70 {
		t.Fatalf("fraction 0.3 over 100 rows split %d/%d", len(train), len(holdout))
	}

	// Out-of-range fractions fall back to the default split.
	train, holdout = splitRows(rows, 0.9)
	if len(holdout) != int(float64(len(rows))*defaultHoldoutFraction) {
		t.Fatalf("invalid fraction should use the default, got %d/%d", len(train), len(holdout))
	}
}

func TestBankHoldoutFractionReachesModels(t *testing.T) {
	bank := NewBank(nil, DefaultFactory, DefaultModelTimeout)
	bank.SetHoldoutFraction(0.4)
	rows := syntheticRows(t, 100, false)

	report, err := bank.Train(context.Background(), rows)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	for _, mr := range report.Models {
		if mr.ModelID == "market_implied" {
			continue // trains on its covered subset only
		}
		if mr.HoldoutRows != 40 {
			t.Fatalf("%s holdout %d rows, expected 40 with fraction 0.4", mr.ModelID, mr.HoldoutRows)
		}
	}
}

func TestBankFailedRunKeepsActiveVersion(t *testing.T) {
	bank := NewBank(nil, DefaultFactory, DefaultModelTimeout)
	good := syntheticRows(t, 90, true)
	if _, err := bank.Train(context.Background(), good); err != nil {
		t.Fatalf("initial train failed: %v", err)
	}
	active := bank.Active().Version

	bad := syntheticRows(t, 4, false)
	if _, err := bank.Train(context.Background(), bad); !errors.Is(err, models.ErrTrainingFailure) {
		t.Fatalf("expected TrainingFailure, got %v", err)
	}
	if bank.Active().Version != active {
		t.Fatalf("failed run must not swap the active snapshot")
	}
}

func TestSnapshotMostInterpretable(t *testing.T) {
	bank := NewBank(nil, DefaultFactory, DefaultModelTimeout)
	rows := syntheticRows(t, 90, true)
	if _, err := bank.Train(context.Background(), rows); err != nil {
		t.Fatalf("train failed: %v", err)
	}
	interpretable := bank.Active().MostInterpretable()
	if interpretable == nil {
		t.Fatalf("expected an interpretable model")
	}
	if interpretable.Family() != FamilyLinear {
		t.Fatalf("expected linear family, got %s", interpretable.Family())
	}
}
