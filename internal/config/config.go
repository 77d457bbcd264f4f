// Package config provides configuration management for the Quiniela
// prediction engine.
package config

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction" validate:"required"`
	Selection  SelectionConfig  `mapstructure:"selection" validate:"required"`
	Betting    BettingConfig    `mapstructure:"betting" validate:"required"`
	Training   TrainingConfig   `mapstructure:"training" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// PredictionConfig tunes the model bank and ensemble combiner
type PredictionConfig struct {
	ModelTimeoutMillis int                `mapstructure:"model_timeout_millis" validate:"required,gt=0"`
	TieEpsilon         float64            `mapstructure:"tie_epsilon" validate:"required,gt=0,lt=0.5"`
	FamilyPriors       map[string]float64 `mapstructure:"family_priors" validate:"required,min=1"`
	CacheTTLSeconds    int                `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize       int                `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// SelectionConfig tunes slip fixture selection
type SelectionConfig struct {
	PrimaryCap   int `mapstructure:"primary_cap" validate:"required,gt=0,lte=14"`
	SecondaryCap int `mapstructure:"secondary_cap" validate:"required,gte=0,lte=14"`
}

// BettingConfig carries the official price, prize, and reduced-system tables
type BettingConfig struct {
	BasePrice        float64               `mapstructure:"base_price" validate:"required,gt=0"`
	BonusPrice       float64               `mapstructure:"bonus_price" validate:"gte=0"`
	GapPenalty       float64               `mapstructure:"gap_penalty" validate:"gte=0,lte=1"`
	UncertaintyFloor float64               `mapstructure:"uncertainty_floor" validate:"gte=0,lte=0.5"`
	MaxMultiplicity  int                   `mapstructure:"max_multiplicity" validate:"required,gte=1,lte=3"`
	Prizes           map[int]float64       `mapstructure:"prizes" validate:"required,min=1"`
	ReducedSystems   []ReducedSystemConfig `mapstructure:"reduced_systems"`
}

// ReducedSystemConfig is one entry of the official reduced-system table.
// The combination counts and price are published domain data, never derived.
type ReducedSystemConfig struct {
	Name         string  `mapstructure:"name" validate:"required"`
	Doubles      int     `mapstructure:"doubles" validate:"gte=0,lte=14"`
	Triples      int     `mapstructure:"triples" validate:"gte=0,lte=14"`
	FullCoverage int64   `mapstructure:"full_coverage" validate:"required,gt=0"`
	Played       int64   `mapstructure:"played" validate:"required,gt=0"`
	Price        float64 `mapstructure:"price" validate:"required,gt=0"`
}

// TrainingConfig tunes model training runs
type TrainingConfig struct {
	MinRows         int     `mapstructure:"min_rows" validate:"required,gte=20"`
	HoldoutFraction float64 `mapstructure:"holdout_fraction" validate:"required,gt=0,lt=0.5"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
