// Package features turns raw team and match aggregates into fixed-schema
// normalized feature vectors.
package features

// SchemaVersion identifies the current feature schema. Training and
// inference must run against the same version; the schema is ordered so
// feature position can never drift between the two.
const SchemaVersion = "v1"

// FeatureTier groups features by the source data they need.
type FeatureTier int

const (
	// TierBasic features derive from the required form snapshots.
	TierBasic FeatureTier = iota
	// TierAdvanced features need optional advanced signal sets.
	TierAdvanced
	// TierMarket features need optional market signals.
	TierMarket
	// TierContext features need optional external context.
	TierContext
	// TierComposite features derive from other computed features.
	TierComposite
)

// FeatureSpec declares one feature: its bounded range and the neutral value
// used when its optional source is missing. Out-of-range raw values are
// clamped into [Min, Max], never rejected.
type FeatureSpec struct {
	Name    string
	Tier    FeatureTier
	Min     float64
	Max     float64
	Neutral float64
}

// Feature name constants, in schema order.
const (
	FeatHomePPG         = "home_ppg"
	FeatAwayPPG         = "away_ppg"
	FeatPPGDiff         = "ppg_difference"
	FeatHomeWinPct      = "home_win_pct"
	FeatAwayWinPct      = "away_win_pct"
	FeatHomeDrawPct     = "home_draw_pct"
	FeatAwayDrawPct     = "away_draw_pct"
	FeatWinPctDiff      = "win_pct_diff"
	FeatHomeGoalsPG     = "home_goals_per_game"
	FeatAwayGoalsPG     = "away_goals_per_game"
	FeatHomeConcededPG  = "home_conceded_per_game"
	FeatAwayConcededPG  = "away_conceded_per_game"
	FeatGoalDiffDiff    = "goal_diff_difference"
	FeatHomeSplitWinPct = "home_split_win_pct"
	FeatAwaySplitWinPct = "away_split_win_pct"
	FeatHomeAdvantage   = "home_advantage"
	FeatHomePosition    = "home_position"
	FeatAwayPosition    = "away_position"
	FeatPositionDiff    = "position_difference"
	FeatHomeFormPoints  = "home_form_points"
	FeatAwayFormPoints  = "away_form_points"
	FeatFormDiff        = "form_difference"

	FeatXGDiff          = "xg_difference"
	FeatXGAgainstDiff   = "xg_against_difference"
	FeatXADiff          = "xa_difference"
	FeatXTDiff          = "xt_difference"
	FeatPressingGap     = "pressing_gap"
	FeatPossessionBal   = "possession_balance"
	FeatMarketHome      = "market_implied_home"
	FeatMarketDraw      = "market_implied_draw"
	FeatMarketAway      = "market_implied_away"
	FeatMarketOverround = "market_overround"
	FeatMarketMovement  = "market_movement"
	FeatRestAdvantage   = "rest_advantage"
	FeatMotivationDiff  = "motivation_difference"
	FeatRivalry         = "rivalry_intensity"
	FeatWeather         = "weather_impact"

	FeatAttackStrength  = "attack_strength"
	FeatDefenseStrength = "defense_strength"
	FeatMomentumDiff    = "momentum_differential"
)

// schemaV1 is the canonical ordered feature list. Appending is a schema
// version bump; reordering is forbidden.
var schemaV1 = []FeatureSpec{
	{FeatHomePPG, TierBasic, 0, 3, 0},
	{FeatAwayPPG, TierBasic, 0, 3, 0},
	{FeatPPGDiff, TierBasic, -3, 3, 0},
	{FeatHomeWinPct, TierBasic, 0, 1, 0},
	{FeatAwayWinPct, TierBasic, 0, 1, 0},
	{FeatHomeDrawPct, TierBasic, 0, 1, 0},
	{FeatAwayDrawPct, TierBasic, 0, 1, 0},
	{FeatWinPctDiff, TierBasic, -1, 1, 0},
	{FeatHomeGoalsPG, TierBasic, 0, 5, 0},
	{FeatAwayGoalsPG, TierBasic, 0, 5, 0},
	{FeatHomeConcededPG, TierBasic, 0, 5, 0},
	{FeatAwayConcededPG, TierBasic, 0, 5, 0},
	{FeatGoalDiffDiff, TierBasic, -5, 5, 0},
	{FeatHomeSplitWinPct, TierBasic, 0, 1, 0},
	{FeatAwaySplitWinPct, TierBasic, 0, 1, 0},
	{FeatHomeAdvantage, TierBasic, -1, 1, 0},
	{FeatHomePosition, TierBasic, 0, 1, 0.5},
	{FeatAwayPosition, TierBasic, 0, 1, 0.5},
	{FeatPositionDiff, TierBasic, -1, 1, 0},
	{FeatHomeFormPoints, TierBasic, 0, 1, 0},
	{FeatAwayFormPoints, TierBasic, 0, 1, 0},
	{FeatFormDiff, TierBasic, -1, 1, 0},

	{FeatXGDiff, TierAdvanced, -3, 3, 0},
	{FeatXGAgainstDiff, TierAdvanced, -3, 3, 0},
	{FeatXADiff, TierAdvanced, -3, 3, 0},
	{FeatXTDiff, TierAdvanced, -2, 2, 0},
	{FeatPressingGap, TierAdvanced, -20, 20, 0},
	{FeatPossessionBal, TierAdvanced, -1, 1, 0},
	{FeatMarketHome, TierMarket, 0, 1, 1.0 / 3},
	{FeatMarketDraw, TierMarket, 0, 1, 1.0 / 3},
	{FeatMarketAway, TierMarket, 0, 1, 1.0 / 3},
	{FeatMarketOverround, TierMarket, 0, 0.3, 0.05},
	{FeatMarketMovement, TierMarket, -0.3, 0.3, 0},
	{FeatRestAdvantage, TierContext, -7, 7, 0},
	{FeatMotivationDiff, TierContext, -1, 1, 0},
	{FeatRivalry, TierContext, 0, 1, 0},
	{FeatWeather, TierContext, 0, 1, 0},

	{FeatAttackStrength, TierComposite, -1, 1, 0},
	{FeatDefenseStrength, TierComposite, -1, 1, 0},
	{FeatMomentumDiff, TierComposite, -1, 1, 0},
}

// Schema is the versioned, ordered feature schema.
type Schema struct {
	Version string
	specs   []FeatureSpec
	index   map[string]int
}

// NewSchema returns the current schema.
func NewSchema() *Schema {
	s := &Schema{Version: SchemaVersion, specs: schemaV1}
	s.index = make(map[string]int, len(s.specs))
	for i, spec := range s.specs {
		s.index[spec.Name] = i
	}
	return s
}

// Names returns feature names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.Name
	}
	return names
}

// Len returns the number of features in the schema.
func (s *Schema) Len() int { return len(s.specs) }

// Spec returns the declaration for a named feature.
func (s *Schema) Spec(name string) (FeatureSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FeatureSpec{}, false
	}
	return s.specs[i], true
}

// Specs returns the ordered feature declarations.
func (s *Schema) Specs() []FeatureSpec { return s.specs }

// Index returns the position of a named feature.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// BasicNames returns the names of features computable from form snapshots
// alone, in schema order.
func (s *Schema) BasicNames() []string {
	var names []string
	for _, spec := range s.specs {
		if spec.Tier == TierBasic || spec.Tier == TierComposite {
			names = append(names, spec.Name)
		}
	}
	return names
}

// MarketNames returns the market-tier feature names in schema order.
func (s *Schema) MarketNames() []string {
	var names []string
	for _, spec := range s.specs {
		if spec.Tier == TierMarket {
			names = append(names, spec.Name)
		}
	}
	return names
}
