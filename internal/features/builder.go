package features

import (
	"fmt"
	"time"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

const component = "features"

// defaultTableSize is the number of teams in both Spanish divisions used for
// position scaling. Positions beyond it are clamped.
const defaultTableSize = 22

// BuildInput carries everything the builder may consume for one match.
// Home and away form snapshots are required; every other source is optional
// and degrades to neutral defaults when absent.
type BuildInput struct {
	Match        *models.MatchCandidate
	HomeForm     *models.TeamFormSnapshot
	AwayForm     *models.TeamFormSnapshot
	HomeAdvanced *models.AdvancedSignalSet
	AwayAdvanced *models.AdvancedSignalSet
	Market       *models.MarketSignal
	Context      *models.ExternalContext
	AsOf         time.Time
}

// Builder produces deterministic, schema-ordered feature vectors.
type Builder struct {
	schema    *Schema
	tableSize int
}

// NewBuilder creates a builder over the current schema.
func NewBuilder() *Builder {
	return &Builder{schema: NewSchema(), tableSize: defaultTableSize}
}

// Schema exposes the builder's schema.
func (b *Builder) Schema() *Schema { return b.schema }

// Build computes the feature vector for one match. Identical inputs always
// produce identical vectors.
func (b *Builder) Build(input BuildInput) (*models.FeatureVector, error) {
	if input.Match == nil {
		return nil, &models.DataUnavailableError{Component: component, Entity: "match candidate"}
	}
	if input.HomeForm == nil {
		return nil, &models.DataUnavailableError{
			Component: component,
			Entity:    fmt.Sprintf("form snapshot for home team %d", input.Match.HomeTeam.ID),
		}
	}
	if input.AwayForm == nil {
		return nil, &models.DataUnavailableError{
			Component: component,
			Entity:    fmt.Sprintf("form snapshot for away team %d", input.Match.AwayTeam.ID),
		}
	}

	raw := make(map[string]float64, b.schema.Len())
	b.basicFeatures(raw, input.HomeForm, input.AwayForm)

	var missing []models.FeatureSource
	if input.HomeAdvanced != nil && input.AwayAdvanced != nil {
		b.advancedFeatures(raw, input.HomeAdvanced, input.AwayAdvanced)
	} else {
		if input.HomeAdvanced == nil {
			missing = append(missing, models.SourceAdvancedHome)
		}
		if input.AwayAdvanced == nil {
			missing = append(missing, models.SourceAdvancedAway)
		}
	}

	if input.Market != nil {
		b.marketFeatures(raw, input.Market)
	} else {
		missing = append(missing, models.SourceMarket)
	}

	if input.Context != nil {
		b.contextFeatures(raw, input.Context)
	} else {
		missing = append(missing, models.SourceContext)
	}

	b.compositeFeatures(raw, input.HomeAdvanced != nil && input.AwayAdvanced != nil)

	values := make([]float64, b.schema.Len())
	for i, spec := range b.schema.Specs() {
		v, ok := raw[spec.Name]
		if !ok {
			v = spec.Neutral
		}
		values[i] = clamp(v, spec.Min, spec.Max)
	}

	vector, err := models.NewFeatureVector(b.schema.Version, b.schema.Names(), values, input.AsOf)
	if err != nil {
		return nil, err
	}
	vector.Degraded = len(missing) > 0
	vector.MissingSources = missing
	return vector, nil
}

func (b *Builder) basicFeatures(raw map[string]float64, home, away *models.TeamFormSnapshot) {
	homePlayed := float64(home.MatchesPlayed)
	awayPlayed := float64(away.MatchesPlayed)

	raw[FeatHomePPG] = home.PointsPerGame()
	raw[FeatAwayPPG] = away.PointsPerGame()
	raw[FeatPPGDiff] = home.PointsPerGame() - away.PointsPerGame()

	raw[FeatHomeWinPct] = safeRatio(float64(home.Wins), homePlayed)
	raw[FeatAwayWinPct] = safeRatio(float64(away.Wins), awayPlayed)
	raw[FeatHomeDrawPct] = safeRatio(float64(home.Draws), homePlayed)
	raw[FeatAwayDrawPct] = safeRatio(float64(away.Draws), awayPlayed)
	raw[FeatWinPctDiff] = raw[FeatHomeWinPct] - raw[FeatAwayWinPct]

	raw[FeatHomeGoalsPG] = safeRatio(float64(home.GoalsFor), homePlayed)
	raw[FeatAwayGoalsPG] = safeRatio(float64(away.GoalsFor), awayPlayed)
	raw[FeatHomeConcededPG] = safeRatio(float64(home.GoalsAgainst), homePlayed)
	raw[FeatAwayConcededPG] = safeRatio(float64(away.GoalsAgainst), awayPlayed)
	raw[FeatGoalDiffDiff] = home.GoalDiffPerGame() - away.GoalDiffPerGame()

	raw[FeatHomeSplitWinPct] = safeRatio(float64(home.HomeWins), float64(home.HomeMatches()))
	raw[FeatAwaySplitWinPct] = safeRatio(float64(away.AwayWins), float64(away.AwayMatches()))
	raw[FeatHomeAdvantage] = raw[FeatHomeSplitWinPct] - raw[FeatAwaySplitWinPct]

	raw[FeatHomePosition] = positionScore(home.Position, b.tableSize)
	raw[FeatAwayPosition] = positionScore(away.Position, b.tableSize)
	raw[FeatPositionDiff] = raw[FeatHomePosition] - raw[FeatAwayPosition]

	raw[FeatHomeFormPoints] = formScore(home.FormPoints())
	raw[FeatAwayFormPoints] = formScore(away.FormPoints())
	raw[FeatFormDiff] = raw[FeatHomeFormPoints] - raw[FeatAwayFormPoints]
}

func (b *Builder) advancedFeatures(raw map[string]float64, home, away *models.AdvancedSignalSet) {
	raw[FeatXGDiff] = home.XGFor - away.XGFor
	raw[FeatXGAgainstDiff] = away.XGAgainst - home.XGAgainst
	raw[FeatXADiff] = home.XAssists - away.XAssists
	raw[FeatXTDiff] = home.XThreat - away.XThreat
	// Lower PPDA means more intense pressing, so the gap is away minus home.
	raw[FeatPressingGap] = away.PressingPPDA - home.PressingPPDA
	raw[FeatPossessionBal] = home.PossessionShare - away.PossessionShare
}

func (b *Builder) marketFeatures(raw map[string]float64, market *models.MarketSignal) {
	closing := market.Closing
	sum := closing.Home + closing.Draw + closing.Away
	if sum > 0 {
		raw[FeatMarketHome] = closing.Home / sum
		raw[FeatMarketDraw] = closing.Draw / sum
		raw[FeatMarketAway] = closing.Away / sum
	} else {
		raw[FeatMarketHome] = 1.0 / 3
		raw[FeatMarketDraw] = 1.0 / 3
		raw[FeatMarketAway] = 1.0 / 3
	}
	raw[FeatMarketOverround] = market.Overround
	raw[FeatMarketMovement] = market.Movement
}

func (b *Builder) contextFeatures(raw map[string]float64, ctx *models.ExternalContext) {
	raw[FeatRestAdvantage] = float64(ctx.HomeRestDays - ctx.AwayRestDays)
	raw[FeatMotivationDiff] = ctx.HomeMotivation - ctx.AwayMotivation
	raw[FeatRivalry] = ctx.RivalryIntensity
	raw[FeatWeather] = ctx.WeatherImpact
}

// compositeFeatures blends basic and (when available) advanced tiers into
// the summary scores the ensemble members lean on.
func (b *Builder) compositeFeatures(raw map[string]float64, hasAdvanced bool) {
	attack := (raw[FeatHomeGoalsPG] - raw[FeatAwayConcededPG]) / 5.0
	defense := (raw[FeatAwayGoalsPG] - raw[FeatHomeConcededPG]) / 5.0
	if hasAdvanced {
		attack = 0.6*attack + 0.4*(raw[FeatXGDiff]/3.0)
		defense = 0.6*defense + 0.4*(-raw[FeatXGAgainstDiff]/3.0)
	}
	raw[FeatAttackStrength] = attack
	raw[FeatDefenseStrength] = -defense
	raw[FeatMomentumDiff] = 0.5*raw[FeatFormDiff] + 0.5*(raw[FeatPPGDiff]/3.0)
}
