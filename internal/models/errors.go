package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline failure taxonomy. Component-specific
// errors wrap these so callers can branch with errors.Is.
var (
	// ErrDataUnavailable indicates a required input was missing.
	ErrDataUnavailable = errors.New("required data unavailable")
	// ErrModelUnavailable indicates no ensemble member could be evaluated.
	ErrModelUnavailable = errors.New("no model available")
	// ErrInsufficientFixtures indicates a legal slip cannot be assembled.
	ErrInsufficientFixtures = errors.New("insufficient fixtures")
	// ErrBudgetTooLow indicates the budget cannot cover a minimal bet.
	ErrBudgetTooLow = errors.New("budget too low")
	// ErrTrainingFailure indicates a training run failed; the previously
	// committed model version stays active.
	ErrTrainingFailure = errors.New("training failure")
)

// DataUnavailableError reports a missing required entity and the component
// that needed it.
type DataUnavailableError struct {
	Component string
	Entity    string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Entity, ErrDataUnavailable)
}

func (e *DataUnavailableError) Unwrap() error { return ErrDataUnavailable }

// ModelUnavailableError reports that every ensemble member was skipped.
type ModelUnavailableError struct {
	Component string
	Reasons   map[string]string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("%s: %d models skipped: %v", e.Component, len(e.Reasons), ErrModelUnavailable)
}

func (e *ModelUnavailableError) Unwrap() error { return ErrModelUnavailable }

// InsufficientFixturesError reports how many usable fixtures were found.
type InsufficientFixturesError struct {
	Component string
	Usable    int
	Required  int
}

func (e *InsufficientFixturesError) Error() string {
	return fmt.Sprintf("%s: %d usable fixtures, need %d: %v", e.Component, e.Usable, e.Required, ErrInsufficientFixtures)
}

func (e *InsufficientFixturesError) Unwrap() error { return ErrInsufficientFixtures }

// BudgetTooLowError reports the budget and the minimal affordable cost.
type BudgetTooLowError struct {
	Component string
	Budget    string
	Minimum   string
}

func (e *BudgetTooLowError) Error() string {
	return fmt.Sprintf("%s: budget %s below minimum stake %s: %v", e.Component, e.Budget, e.Minimum, ErrBudgetTooLow)
}

func (e *BudgetTooLowError) Unwrap() error { return ErrBudgetTooLow }

// TrainingError reports a failed training run.
type TrainingError struct {
	Component string
	Cause     error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Component, e.Cause, ErrTrainingFailure)
}

func (e *TrainingError) Unwrap() error { return ErrTrainingFailure }
