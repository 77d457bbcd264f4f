package models

// AdvancedSignalSet carries per-team advanced performance metrics. The whole
// set may be absent for a team; consumers must degrade to neutral defaults.
type AdvancedSignalSet struct {
	TeamID          int     `json:"team_id" validate:"required,gt=0"`
	XGFor           float64 `json:"xg_for" validate:"gte=0"`
	XGAgainst       float64 `json:"xg_against" validate:"gte=0"`
	XAssists        float64 `json:"x_assists" validate:"gte=0"`
	XThreat         float64 `json:"x_threat" validate:"gte=0"`
	PressingPPDA    float64 `json:"pressing_ppda" validate:"gte=0"`
	PossessionShare float64 `json:"possession_share" validate:"gte=0,lte=1"`
	MatchesCovered  int     `json:"matches_covered" validate:"gte=0"`
}

// ImpliedTriple is a market-implied probability triple for 1/X/2.
type ImpliedTriple struct {
	Home float64 `json:"home" validate:"gte=0,lte=1"`
	Draw float64 `json:"draw" validate:"gte=0,lte=1"`
	Away float64 `json:"away" validate:"gte=0,lte=1"`
}

// MarketSignal carries bookmaker-derived signals for a match. Optional.
type MarketSignal struct {
	Opening   ImpliedTriple `json:"opening"`
	Closing   ImpliedTriple `json:"closing"`
	Overround float64       `json:"overround" validate:"gte=0"`
	// Movement is closing minus opening home-win implied probability;
	// positive values mean the market shortened the home side.
	Movement float64 `json:"movement"`
}

// ExternalContext carries situational signals for a match. Optional.
type ExternalContext struct {
	HomeRestDays     int     `json:"home_rest_days" validate:"gte=0"`
	AwayRestDays     int     `json:"away_rest_days" validate:"gte=0"`
	HomeMotivation   float64 `json:"home_motivation" validate:"gte=0,lte=1"`
	AwayMotivation   float64 `json:"away_motivation" validate:"gte=0,lte=1"`
	RivalryIntensity float64 `json:"rivalry_intensity" validate:"gte=0,lte=1"`
	WeatherImpact    float64 `json:"weather_impact" validate:"gte=0,lte=1"`
}
