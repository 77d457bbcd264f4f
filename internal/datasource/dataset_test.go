package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

func writeDataset(t *testing.T, file datasetFile) string {
	t.Helper()
	raw, err := json.Marshal(file)
	if err != nil {
		t.Fatalf("failed to marshal dataset: %v", err)
	}
	path := filepath.Join(t.TempDir(), "round.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func sampleForm(teamID int) *models.TeamFormSnapshot {
	return &models.TeamFormSnapshot{
		TeamID: teamID, Season: 2025, AsOf: time.Now(),
		MatchesPlayed: 8, Wins: 4, Draws: 2, Losses: 2,
		GoalsFor: 12, GoalsAgainst: 8, Points: 14, Position: 6,
		LastFive: "WWDLD",
	}
}

func sampleDataset() datasetFile {
	matchID := uuid.New()
	match := &models.MatchCandidate{
		ID: matchID, ExternalID: 42, Season: 2025, Round: "2025-W36",
		Tier: models.TierPrimary, KickoffAt: time.Now().Add(48 * time.Hour),
		HomeTeam: models.TeamRef{ID: 1, Name: "Osasuna"},
		AwayTeam: models.TeamRef{ID: 2, Name: "Girona"},
	}
	history := &models.MatchCandidate{
		ID: uuid.New(), ExternalID: 41, Season: 2025, Round: "2025-W35",
		Tier: models.TierPrimary, KickoffAt: time.Now().Add(-5 * 24 * time.Hour),
		HomeTeam: models.TeamRef{ID: 1, Name: "Osasuna"},
		AwayTeam: models.TeamRef{ID: 3, Name: "Alaves"},
	}
	return datasetFile{
		Season:     2025,
		Candidates: []*models.MatchCandidate{match},
		Teams: []TeamRecord{
			{TeamID: 1, Season: 2025, Form: sampleForm(1)},
			{TeamID: 2, Season: 2025, Form: sampleForm(2), Advanced: &models.AdvancedSignalSet{TeamID: 2, XGFor: 1.3, MatchesCovered: 8}},
		},
		Matches: []MatchRecord{
			{MatchID: matchID, Market: &models.MarketSignal{
				Closing: models.ImpliedTriple{Home: 0.45, Draw: 0.3, Away: 0.25}, Overround: 1.04,
			}},
		},
		History: []HistoryRecord{
			{Match: history, HomeForm: sampleForm(1), AwayForm: sampleForm(3), Result: "1"},
			{Match: history, HomeForm: sampleForm(1), AwayForm: sampleForm(3), Result: "banana"},
		},
	}
}

func TestLoadDataset(t *testing.T) {
	path := writeDataset(t, sampleDataset())
	ds, err := Load(path, features.NewBuilder(), logrus.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Season() != 2025 {
		t.Fatalf("expected season 2025, got %d", ds.Season())
	}
	if len(ds.Candidates()) != 1 {
		t.Fatalf("expected one candidate, got %d", len(ds.Candidates()))
	}
	if ds.CandidateByExternalID(42) == nil {
		t.Fatalf("expected candidate lookup by external ID")
	}
	if ds.CandidateByExternalID(7) != nil {
		t.Fatalf("expected nil for unknown external ID")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), features.NewBuilder(), logrus.New())
	if err == nil {
		t.Fatalf("expected error for missing dataset")
	}
}

func TestFormLookup(t *testing.T) {
	ds, err := Load(writeDataset(t, sampleDataset()), features.NewBuilder(), logrus.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	form, err := ds.FormSnapshot(ctx, 1, 2025, time.Now())
	if err != nil || form == nil {
		t.Fatalf("expected form for covered team, got %v", err)
	}

	_, err = ds.FormSnapshot(ctx, 99, 2025, time.Now())
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("missing form must be DataUnavailable, got %v", err)
	}
}

func TestOptionalLookupsReturnNil(t *testing.T) {
	file := sampleDataset()
	ds, err := Load(writeDataset(t, file), features.NewBuilder(), logrus.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	// Team 1 has no advanced coverage; that is absence, not an error.
	signals, err := ds.AdvancedSignals(ctx, 1, 2025, time.Now())
	if err != nil || signals != nil {
		t.Fatalf("expected (nil, nil) for uncovered team, got %v %v", signals, err)
	}
	signals, err = ds.AdvancedSignals(ctx, 2, 2025, time.Now())
	if err != nil || signals == nil {
		t.Fatalf("expected signals for covered team")
	}

	market, err := ds.MarketSignal(ctx, file.Candidates[0].ID)
	if err != nil || market == nil {
		t.Fatalf("expected market signal for listed match")
	}
	market, err = ds.MarketSignal(ctx, uuid.New())
	if err != nil || market != nil {
		t.Fatalf("expected (nil, nil) for unlisted match")
	}

	extCtx, err := ds.ExternalContext(ctx, uuid.New())
	if err != nil || extCtx != nil {
		t.Fatalf("expected (nil, nil) context for unlisted match")
	}
}

func TestTrainingRowsSkipBadRecords(t *testing.T) {
	ds, err := Load(writeDataset(t, sampleDataset()), features.NewBuilder(), logrus.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := ds.TrainingRows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The record with an invalid result is dropped, not fatal.
	if len(rows) != 1 {
		t.Fatalf("expected one usable training row, got %d", len(rows))
	}
	if rows[0].Result != models.OutcomeHome {
		t.Fatalf("expected home result, got %s", rows[0].Result)
	}
	if rows[0].Vector == nil || len(rows[0].Vector.Values) == 0 {
		t.Fatalf("expected a built feature vector")
	}
}
