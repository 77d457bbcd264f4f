// Package selection assembles the 15-slot slip from a larger candidate pool
// following the official round and tier rules.
package selection

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

const component = "selection"

// Default tier caps for a single slip.
const (
	// DefaultPrimaryCap is the most primary-tier fixtures a slip may carry.
	DefaultPrimaryCap = 10
	// DefaultSecondaryCap is the secondary-tier fill beyond the primary
	// block.
	DefaultSecondaryCap = 5
	// minRoundFixtures is the usable-fixture floor for a round to be
	// chosen directly; below it the global kickoff fallback applies.
	minRoundFixtures = 10
)

// Config tunes the optimizer.
type Config struct {
	// Now anchors "nearest by kickoff" ordering for the fallback path.
	Now time.Time
	// PrimaryCap and SecondaryCap override the default tier caps.
	PrimaryCap   int
	SecondaryCap int
}

// Optimizer selects slips deterministically; identical pools always give
// identical slips.
type Optimizer struct {
	logger       *logrus.Logger
	now          time.Time
	primaryCap   int
	secondaryCap int
}

// NewOptimizer creates a selection optimizer.
func NewOptimizer(logger *logrus.Logger, cfg Config) *Optimizer {
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	primaryCap := cfg.PrimaryCap
	if primaryCap <= 0 || primaryCap > models.RegularSlots {
		primaryCap = DefaultPrimaryCap
	}
	secondaryCap := cfg.SecondaryCap
	if secondaryCap <= 0 || secondaryCap > models.RegularSlots {
		secondaryCap = DefaultSecondaryCap
	}
	return &Optimizer{logger: logger, now: now, primaryCap: primaryCap, secondaryCap: secondaryCap}
}

// SelectSlip chooses exactly 14 regular slots plus the bonus slot from the
// pool. Fewer than 14 usable fixtures across all fallbacks is an
// InsufficientFixturesError.
func (o *Optimizer) SelectSlip(candidates []*models.MatchCandidate) (*models.Slip, error) {
	usable := filterUsable(candidates)
	if len(usable) < models.RegularSlots {
		return nil, &models.InsufficientFixturesError{
			Component: component,
			Usable:    len(usable),
			Required:  models.RegularSlots,
		}
	}

	groups := groupByRound(usable)
	round, fixtures := bestRound(groups)

	var chosen []*models.MatchCandidate
	if len(fixtures) >= minRoundFixtures {
		chosen = o.pickFromRound(fixtures, usable)
	} else {
		round = ""
		chosen = nearestByKickoff(usable, o.now, models.SlipSize)
	}

	orderSlip(chosen)

	slots := make([]models.SlipSlot, 0, models.SlipSize)
	for i, match := range chosen {
		slots = append(slots, models.SlipSlot{
			Number: i + 1,
			Match:  match,
			Tier:   match.Tier,
		})
	}
	// With exactly 14 usable fixtures the final regular fixture doubles as
	// the exact-score match so the slip stays legal.
	if len(slots) == models.RegularSlots {
		last := slots[models.RegularSlots-1]
		slots = append(slots, models.SlipSlot{
			Number: models.SlipSize,
			Match:  last.Match,
			Tier:   last.Tier,
		})
	}
	slots[models.SlipSize-1].Bonus = true

	slip := &models.Slip{
		ID:        uuid.New(),
		Round:     round,
		Slots:     slots,
		CreatedAt: time.Now(),
	}
	if len(chosen) > 0 {
		slip.Season = chosen[0].Season
	}
	if o.logger != nil {
		o.logger.WithFields(logrus.Fields{
			"component": component,
			"round":     round,
			"pool":      len(candidates),
			"usable":    len(usable),
			"primary":   countTier(chosen, models.TierPrimary),
			"secondary": countTier(chosen, models.TierSecondary),
		}).Info("Slip fixtures selected")
	}
	return slip, nil
}

// filterUsable drops candidates missing the identity fields a slip needs.
func filterUsable(candidates []*models.MatchCandidate) []*models.MatchCandidate {
	usable := make([]*models.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.KickoffAt.IsZero() {
			continue
		}
		if c.HomeTeam.Name == "" || c.AwayTeam.Name == "" {
			continue
		}
		usable = append(usable, c)
	}
	return usable
}

// groupByRound buckets candidates by round label, falling back to the ISO
// calendar week of kickoff for fixtures without round metadata.
func groupByRound(candidates []*models.MatchCandidate) map[string][]*models.MatchCandidate {
	groups := make(map[string][]*models.MatchCandidate)
	for _, c := range candidates {
		key := c.Round
		if key == "" {
			year, week := c.KickoffAt.ISOWeek()
			key = weekKey(year, week)
		}
		groups[key] = append(groups[key], c)
	}
	return groups
}

func weekKey(year, week int) string {
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, (week-1)*7).Format("week-2006-01-02")
}

// bestRound returns the round with the most usable fixtures. Ties resolve
// to the lexicographically smaller key so selection stays deterministic.
func bestRound(groups map[string][]*models.MatchCandidate) (string, []*models.MatchCandidate) {
	bestKey := ""
	var best []*models.MatchCandidate
	for key, fixtures := range groups {
		if len(fixtures) > len(best) || (len(fixtures) == len(best) && (bestKey == "" || key < bestKey)) {
			bestKey, best = key, fixtures
		}
	}
	return bestKey, best
}

// pickFromRound applies the tier caps inside the chosen round, topping up
// from the rest of the pool by kickoff when the round alone cannot fill the
// slip.
func (o *Optimizer) pickFromRound(roundFixtures, pool []*models.MatchCandidate) []*models.MatchCandidate {
	primary := tierSorted(roundFixtures, models.TierPrimary)
	secondary := tierSorted(roundFixtures, models.TierSecondary)

	if len(primary) > o.primaryCap {
		primary = primary[:o.primaryCap]
	}
	remainder := models.SlipSize - len(primary)
	if remainder > o.secondaryCap {
		remainder = o.secondaryCap
	}
	if len(secondary) > remainder {
		secondary = secondary[:remainder]
	}

	chosen := append(append([]*models.MatchCandidate{}, primary...), secondary...)
	if len(chosen) >= models.SlipSize {
		return chosen[:models.SlipSize]
	}

	// Round alone is short: top up with the nearest remaining fixtures.
	taken := make(map[uuid.UUID]bool, len(chosen))
	for _, c := range chosen {
		taken[c.ID] = true
	}
	rest := make([]*models.MatchCandidate, 0, len(pool))
	for _, c := range pool {
		if !taken[c.ID] {
			rest = append(rest, c)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if !rest[i].KickoffAt.Equal(rest[j].KickoffAt) {
			return rest[i].KickoffAt.Before(rest[j].KickoffAt)
		}
		return rest[i].HomeTeam.Name < rest[j].HomeTeam.Name
	})
	for _, c := range rest {
		if len(chosen) == models.SlipSize {
			break
		}
		chosen = append(chosen, c)
	}
	return chosen
}

// tierSorted filters one tier and orders it alphabetically by home team,
// then kickoff.
func tierSorted(candidates []*models.MatchCandidate, tier models.Tier) []*models.MatchCandidate {
	out := make([]*models.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Tier == tier {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HomeTeam.Name != out[j].HomeTeam.Name {
			return out[i].HomeTeam.Name < out[j].HomeTeam.Name
		}
		return out[i].KickoffAt.Before(out[j].KickoffAt)
	})
	return out
}

// nearestByKickoff is the global fallback: the n fixtures closest to now,
// regardless of round or tier.
func nearestByKickoff(candidates []*models.MatchCandidate, now time.Time, n int) []*models.MatchCandidate {
	sorted := make([]*models.MatchCandidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		di := absDuration(sorted[i].KickoffAt.Sub(now))
		dj := absDuration(sorted[j].KickoffAt.Sub(now))
		if di != dj {
			return di < dj
		}
		return sorted[i].HomeTeam.Name < sorted[j].HomeTeam.Name
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// orderSlip arranges the final selection: primary tier block first, each
// block alphabetical by home team then kickoff.
func orderSlip(chosen []*models.MatchCandidate) {
	sort.SliceStable(chosen, func(i, j int) bool {
		if chosen[i].Tier != chosen[j].Tier {
			return chosen[i].Tier == models.TierPrimary
		}
		if chosen[i].HomeTeam.Name != chosen[j].HomeTeam.Name {
			return chosen[i].HomeTeam.Name < chosen[j].HomeTeam.Name
		}
		return chosen[i].KickoffAt.Before(chosen[j].KickoffAt)
	})
}

func countTier(candidates []*models.MatchCandidate, tier models.Tier) int {
	n := 0
	for _, c := range candidates {
		if c.Tier == tier {
			n++
		}
	}
	return n
}
