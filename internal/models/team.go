package models

import "time"

// TeamFormSnapshot aggregates a team's league record as of a reference date.
// Snapshots are sourced externally and are the only required input for
// feature building.
type TeamFormSnapshot struct {
	TeamID        int       `json:"team_id" validate:"required,gt=0"`
	Season        int       `json:"season" validate:"required"`
	AsOf          time.Time `json:"as_of" validate:"required"`
	MatchesPlayed int       `json:"matches_played" validate:"gte=0"`
	Wins          int       `json:"wins" validate:"gte=0"`
	Draws         int       `json:"draws" validate:"gte=0"`
	Losses        int       `json:"losses" validate:"gte=0"`
	GoalsFor      int       `json:"goals_for" validate:"gte=0"`
	GoalsAgainst  int       `json:"goals_against" validate:"gte=0"`
	Points        int       `json:"points" validate:"gte=0"`
	Position      int       `json:"position" validate:"gte=0"`

	HomeWins   int `json:"home_wins" validate:"gte=0"`
	HomeDraws  int `json:"home_draws" validate:"gte=0"`
	HomeLosses int `json:"home_losses" validate:"gte=0"`
	AwayWins   int `json:"away_wins" validate:"gte=0"`
	AwayDraws  int `json:"away_draws" validate:"gte=0"`
	AwayLosses int `json:"away_losses" validate:"gte=0"`

	// LastFive is the rolling form code for the last five matches,
	// most recent last, e.g. "WWDLW".
	LastFive string `json:"last_five"`
}

// PointsPerGame returns average points per match played.
func (s *TeamFormSnapshot) PointsPerGame() float64 {
	if s.MatchesPlayed == 0 {
		return 0
	}
	return float64(s.Points) / float64(s.MatchesPlayed)
}

// GoalDiffPerGame returns average goal difference per match played.
func (s *TeamFormSnapshot) GoalDiffPerGame() float64 {
	if s.MatchesPlayed == 0 {
		return 0
	}
	return float64(s.GoalsFor-s.GoalsAgainst) / float64(s.MatchesPlayed)
}

// HomeMatches returns the number of home matches played.
func (s *TeamFormSnapshot) HomeMatches() int {
	return s.HomeWins + s.HomeDraws + s.HomeLosses
}

// AwayMatches returns the number of away matches played.
func (s *TeamFormSnapshot) AwayMatches() int {
	return s.AwayWins + s.AwayDraws + s.AwayLosses
}

// FormPoints converts the LastFive code into points (3 per W, 1 per D).
func (s *TeamFormSnapshot) FormPoints() int {
	points := 0
	for _, c := range s.LastFive {
		switch c {
		case 'W', 'w':
			points += 3
		case 'D', 'd':
			points++
		}
	}
	return points
}
