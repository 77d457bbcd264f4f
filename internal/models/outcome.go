// Package models defines the core domain types shared across the prediction
// and bet-structure pipeline.
package models

import "fmt"

// Outcome represents one of the three possible results of a match.
type Outcome string

const (
	// OutcomeHome is a home win ("1" on the slip)
	OutcomeHome Outcome = "1"
	// OutcomeDraw is a draw ("X" on the slip)
	OutcomeDraw Outcome = "X"
	// OutcomeAway is an away win ("2" on the slip)
	OutcomeAway Outcome = "2"
)

// Outcomes lists the three outcomes in canonical slip order.
var Outcomes = [3]Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}

// ParseOutcome parses a slip symbol into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeHome, OutcomeDraw, OutcomeAway:
		return Outcome(s), nil
	default:
		return "", fmt.Errorf("invalid outcome %q: must be one of 1, X, 2", s)
	}
}

// Index returns the canonical position of the outcome in a probability triple.
func (o Outcome) Index() int {
	switch o {
	case OutcomeHome:
		return 0
	case OutcomeDraw:
		return 1
	case OutcomeAway:
		return 2
	}
	return -1
}

// OutcomeAt returns the outcome at a canonical probability-triple index.
func OutcomeAt(i int) Outcome {
	return Outcomes[i]
}
