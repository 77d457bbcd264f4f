package models

import (
	"time"

	"github.com/google/uuid"
)

// Tier represents the competitive level of a fixture's competition.
type Tier string

const (
	// TierPrimary is the top division (La Liga)
	TierPrimary Tier = "primary"
	// TierSecondary is the second division (Segunda División)
	TierSecondary Tier = "secondary"
)

// TeamRef identifies a team within a candidate fixture.
type TeamRef struct {
	ID   int    `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required"`
}

// MatchCandidate represents a fixture eligible for slip selection.
type MatchCandidate struct {
	ID         uuid.UUID     `json:"id" validate:"required"`
	ExternalID int           `json:"external_id" validate:"required,gt=0"`
	Season     int           `json:"season" validate:"required,gt=2000"`
	Round      string        `json:"round"`
	Tier       Tier          `json:"tier" validate:"required,oneof=primary secondary"`
	KickoffAt  time.Time     `json:"kickoff_at" validate:"required"`
	HomeTeam   TeamRef       `json:"home_team" validate:"required"`
	AwayTeam   TeamRef       `json:"away_team" validate:"required"`
	Market     *MarketSignal `json:"market,omitempty"`
}

// HasRound reports whether round metadata is present for the candidate.
func (m *MatchCandidate) HasRound() bool {
	return m.Round != ""
}
