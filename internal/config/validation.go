// Package config provides configuration management for the Quiniela
// prediction engine.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField applies rules spanning multiple config sections.
func validateCrossField(cfg *Config) error {
	if cfg.Selection.PrimaryCap+cfg.Selection.SecondaryCap < 14 {
		return fmt.Errorf("selection caps must cover at least 14 slots, got %d primary + %d secondary",
			cfg.Selection.PrimaryCap, cfg.Selection.SecondaryCap)
	}
	for k := range cfg.Betting.Prizes {
		if k < 10 || k > 14 {
			return fmt.Errorf("prize table key %d out of range: correct-count tiers run 10 to 14", k)
		}
	}
	for _, sys := range cfg.Betting.ReducedSystems {
		if sys.Played > sys.FullCoverage {
			return fmt.Errorf("reduced system %q plays %d combinations but full coverage is only %d",
				sys.Name, sys.Played, sys.FullCoverage)
		}
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(messages, "; "))
}
