// Package helpers provides shared fixtures for end-to-end tests.
package helpers

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// RoundFixture is the JSON shape of a dataset file, kept in sync with the
// datasource package's on-disk format.
type RoundFixture struct {
	Season     int                      `json:"season"`
	Candidates []*models.MatchCandidate `json:"candidates"`
	Teams      []TeamFixture            `json:"teams"`
	Matches    []MatchFixture           `json:"matches"`
	History    []HistoryFixture         `json:"history"`
}

// TeamFixture mirrors datasource.TeamRecord.
type TeamFixture struct {
	TeamID   int                       `json:"team_id"`
	Season   int                       `json:"season"`
	Form     *models.TeamFormSnapshot  `json:"form,omitempty"`
	Advanced *models.AdvancedSignalSet `json:"advanced,omitempty"`
}

// MatchFixture mirrors datasource.MatchRecord.
type MatchFixture struct {
	MatchID uuid.UUID               `json:"match_id"`
	Market  *models.MarketSignal    `json:"market,omitempty"`
	Context *models.ExternalContext `json:"context,omitempty"`
}

// HistoryFixture mirrors datasource.HistoryRecord.
type HistoryFixture struct {
	Match    *models.MatchCandidate   `json:"match"`
	HomeForm *models.TeamFormSnapshot `json:"home_form"`
	AwayForm *models.TeamFormSnapshot `json:"away_form"`
	Result   string                   `json:"result"`
}

// Form builds a plausible form snapshot for a team with the given points.
func Form(teamID, points int) *models.TeamFormSnapshot {
	wins := points / 3
	return &models.TeamFormSnapshot{
		TeamID: teamID, Season: 2025, AsOf: time.Now(),
		MatchesPlayed: 10, Wins: wins, Draws: points % 3, Losses: 10 - wins,
		GoalsFor: 6 + wins, GoalsAgainst: 14 - wins,
		Points: points, Position: 20 - wins,
		HomeWins: wins / 2, AwayWins: wins / 2,
		LastFive: "WDWLD",
	}
}

// Candidate builds a fixture for the given round and tier.
func Candidate(n int, tier models.Tier, homeID, awayID int, round string) *models.MatchCandidate {
	return &models.MatchCandidate{
		ID:         uuid.New(),
		ExternalID: n,
		Season:     2025,
		Round:      round,
		Tier:       tier,
		KickoffAt:  time.Date(2025, 9, 7, 16, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour),
		HomeTeam:   models.TeamRef{ID: homeID, Name: fmt.Sprintf("Home %02d", n)},
		AwayTeam:   models.TeamRef{ID: awayID, Name: fmt.Sprintf("Away %02d", n)},
	}
}

// SampleRound builds a complete round fixture: 18 candidates across both
// tiers, team coverage, and labeled history with a home-strength signal.
func SampleRound() RoundFixture {
	fixture := RoundFixture{Season: 2025}

	for teamID := 1; teamID <= 40; teamID++ {
		fixture.Teams = append(fixture.Teams, TeamFixture{
			TeamID: teamID, Season: 2025, Form: Form(teamID, 6+(teamID%10)*3),
		})
	}
	for i := 0; i < 12; i++ {
		fixture.Candidates = append(fixture.Candidates, Candidate(i+1, models.TierPrimary, 2*i+1, 2*i+2, "2025-W36"))
	}
	for i := 0; i < 6; i++ {
		fixture.Candidates = append(fixture.Candidates, Candidate(100+i, models.TierSecondary, 25+2*i, 26+2*i, "2025-W36"))
	}

	for i := 0; i < 90; i++ {
		var result string
		var homePoints, awayPoints int
		switch i % 3 {
		case 0:
			result, homePoints, awayPoints = "1", 26, 7
		case 1:
			result, homePoints, awayPoints = "X", 15, 15
		default:
			result, homePoints, awayPoints = "2", 7, 26
		}
		fixture.History = append(fixture.History, HistoryFixture{
			Match:    Candidate(500+i, models.TierPrimary, 1, 2, "2025-W20"),
			HomeForm: Form(1, homePoints),
			AwayForm: Form(2, awayPoints),
			Result:   result,
		})
	}
	return fixture
}

// WriteRound writes the fixture as a dataset JSON file and returns its path.
func WriteRound(t *testing.T, fixture RoundFixture) string {
	t.Helper()
	raw, err := json.Marshal(fixture)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "round.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

// WriteConfig writes a config YAML file and returns its path.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
