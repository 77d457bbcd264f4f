package models

import (
	"time"

	"github.com/google/uuid"
)

// SlipSize is the fixed number of slots on a slip: 14 regular matches plus
// the bonus exact-score match in slot 15.
const SlipSize = 15

// RegularSlots is the number of regular 1X2 slots on a slip.
const RegularSlots = 14

// SlipSlot is a single position on the slip.
type SlipSlot struct {
	Number     int             `json:"number" validate:"required,gte=1,lte=15"`
	Match      *MatchCandidate `json:"match" validate:"required"`
	Tier       Tier            `json:"tier"`
	Bonus      bool            `json:"bonus"`
	Prediction *Prediction     `json:"prediction,omitempty"`
}

// Slip is the ordered 15-slot prediction document for one round.
type Slip struct {
	ID        uuid.UUID  `json:"id"`
	Season    int        `json:"season"`
	Round     string     `json:"round"`
	Slots     []SlipSlot `json:"slots" validate:"required,len=15"`
	CreatedAt time.Time  `json:"created_at"`
}

// BonusSlot returns slot 15, the exact-score slot.
func (s *Slip) BonusSlot() *SlipSlot {
	if len(s.Slots) != SlipSize {
		return nil
	}
	return &s.Slots[SlipSize-1]
}

// RegularSlotsView returns the 14 regular slots.
func (s *Slip) RegularSlotsView() []SlipSlot {
	if len(s.Slots) != SlipSize {
		return nil
	}
	return s.Slots[:RegularSlots]
}

// Complete reports whether the slip holds exactly 15 slots.
func (s *Slip) Complete() bool {
	return len(s.Slots) == SlipSize
}
