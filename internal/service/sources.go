// Package service orchestrates the prediction pipeline: features, model
// bank, ensemble, selection, and bet-structure optimization.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/modelbank"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// FormSource looks up required team form snapshots. A nil snapshot or an
// error is treated as DataUnavailable by the pipeline.
type FormSource interface {
	FormSnapshot(ctx context.Context, teamID, season int, asOf time.Time) (*models.TeamFormSnapshot, error)
}

// AdvancedSignalSource looks up optional per-team advanced metrics.
// Returning (nil, nil) means the team is not covered; the pipeline degrades
// to neutral defaults.
type AdvancedSignalSource interface {
	AdvancedSignals(ctx context.Context, teamID, season int, asOf time.Time) (*models.AdvancedSignalSet, error)
}

// MarketSource looks up optional bookmaker signals for a match.
type MarketSource interface {
	MarketSignal(ctx context.Context, matchID uuid.UUID) (*models.MarketSignal, error)
}

// ContextSource looks up optional situational context for a match.
type ContextSource interface {
	ExternalContext(ctx context.Context, matchID uuid.UUID) (*models.ExternalContext, error)
}

// TrainingRowSource supplies historical labeled rows for training runs.
type TrainingRowSource interface {
	TrainingRows(ctx context.Context) ([]modelbank.TrainingRow, error)
}
