// Package datasource loads round datasets from JSON files and exposes them
// through the service-layer source interfaces.
package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/modelbank"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
)

// TeamRecord attaches per-team data to a (team, season) key.
type TeamRecord struct {
	TeamID   int                       `json:"team_id" validate:"required,gt=0"`
	Season   int                       `json:"season" validate:"required"`
	Form     *models.TeamFormSnapshot  `json:"form,omitempty"`
	Advanced *models.AdvancedSignalSet `json:"advanced,omitempty"`
}

// MatchRecord attaches per-match optional signals to a candidate ID.
type MatchRecord struct {
	MatchID uuid.UUID               `json:"match_id" validate:"required"`
	Market  *models.MarketSignal    `json:"market,omitempty"`
	Context *models.ExternalContext `json:"context,omitempty"`
}

// HistoryRecord is one finished match with everything needed to rebuild its
// feature vector, plus the observed result.
type HistoryRecord struct {
	Match    *models.MatchCandidate    `json:"match" validate:"required"`
	HomeForm *models.TeamFormSnapshot  `json:"home_form" validate:"required"`
	AwayForm *models.TeamFormSnapshot  `json:"away_form" validate:"required"`
	HomeAdv  *models.AdvancedSignalSet `json:"home_advanced,omitempty"`
	AwayAdv  *models.AdvancedSignalSet `json:"away_advanced,omitempty"`
	Market   *models.MarketSignal      `json:"market,omitempty"`
	Context  *models.ExternalContext   `json:"context,omitempty"`
	Result   string                    `json:"result" validate:"required,oneof=1 X 2"`
}

// datasetFile is the on-disk shape of a round dataset.
type datasetFile struct {
	Season     int                      `json:"season" validate:"required"`
	Candidates []*models.MatchCandidate `json:"candidates"`
	Teams      []TeamRecord             `json:"teams"`
	Matches    []MatchRecord            `json:"matches"`
	History    []HistoryRecord          `json:"history"`
}

type teamKey struct {
	teamID int
	season int
}

// Dataset is an in-memory round dataset. It implements the service-layer
// FormSource, AdvancedSignalSource, MarketSource, ContextSource, and
// TrainingRowSource interfaces.
type Dataset struct {
	logger     *logrus.Logger
	builder    *features.Builder
	season     int
	candidates []*models.MatchCandidate
	forms      map[teamKey]*models.TeamFormSnapshot
	advanced   map[teamKey]*models.AdvancedSignalSet
	markets    map[uuid.UUID]*models.MarketSignal
	contexts   map[uuid.UUID]*models.ExternalContext
	history    []HistoryRecord
}

// Load reads and indexes a dataset file.
func Load(path string, builder *features.Builder, logger *logrus.Logger) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var file datasetFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	ds := &Dataset{
		logger:     logger,
		builder:    builder,
		season:     file.Season,
		candidates: file.Candidates,
		forms:      make(map[teamKey]*models.TeamFormSnapshot),
		advanced:   make(map[teamKey]*models.AdvancedSignalSet),
		markets:    make(map[uuid.UUID]*models.MarketSignal),
		contexts:   make(map[uuid.UUID]*models.ExternalContext),
		history:    file.History,
	}
	for _, team := range file.Teams {
		key := teamKey{teamID: team.TeamID, season: team.Season}
		if team.Form != nil {
			ds.forms[key] = team.Form
		}
		if team.Advanced != nil {
			ds.advanced[key] = team.Advanced
		}
	}
	for _, match := range file.Matches {
		if match.Market != nil {
			ds.markets[match.MatchID] = match.Market
		}
		if match.Context != nil {
			ds.contexts[match.MatchID] = match.Context
		}
	}

	logger.WithFields(logrus.Fields{
		"path":       path,
		"season":     file.Season,
		"candidates": len(file.Candidates),
		"teams":      len(file.Teams),
		"history":    len(file.History),
	}).Info("Dataset loaded")

	return ds, nil
}

// Season returns the dataset's season.
func (d *Dataset) Season() int { return d.season }

// Candidates returns the fixture pool for slip selection.
func (d *Dataset) Candidates() []*models.MatchCandidate {
	return d.candidates
}

// CandidateByExternalID finds one candidate by its league fixture ID.
func (d *Dataset) CandidateByExternalID(externalID int) *models.MatchCandidate {
	for _, candidate := range d.candidates {
		if candidate.ExternalID == externalID {
			return candidate
		}
	}
	return nil
}

// FormSnapshot returns the team's form, or an error when missing. Form is a
// required input so absence is a hard failure.
func (d *Dataset) FormSnapshot(_ context.Context, teamID, season int, _ time.Time) (*models.TeamFormSnapshot, error) {
	form, ok := d.forms[teamKey{teamID: teamID, season: season}]
	if !ok {
		return nil, &models.DataUnavailableError{
			Component: "datasource",
			Entity:    fmt.Sprintf("form for team %d season %d", teamID, season),
		}
	}
	return form, nil
}

// AdvancedSignals returns the team's advanced metrics, or (nil, nil) when
// the team is not covered.
func (d *Dataset) AdvancedSignals(_ context.Context, teamID, season int, _ time.Time) (*models.AdvancedSignalSet, error) {
	return d.advanced[teamKey{teamID: teamID, season: season}], nil
}

// MarketSignal returns bookmaker signals for a match, or (nil, nil).
func (d *Dataset) MarketSignal(_ context.Context, matchID uuid.UUID) (*models.MarketSignal, error) {
	return d.markets[matchID], nil
}

// ExternalContext returns situational context for a match, or (nil, nil).
func (d *Dataset) ExternalContext(_ context.Context, matchID uuid.UUID) (*models.ExternalContext, error) {
	return d.contexts[matchID], nil
}

// TrainingRows rebuilds feature vectors for every history record. Records
// whose vector cannot be built are skipped with a warning rather than
// failing the whole run.
func (d *Dataset) TrainingRows(ctx context.Context) ([]modelbank.TrainingRow, error) {
	rows := make([]modelbank.TrainingRow, 0, len(d.history))
	for _, record := range d.history {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		outcome, err := models.ParseOutcome(record.Result)
		if err != nil {
			d.logger.WithError(err).WithField("match", record.Match.ExternalID).Warn("Skipping history record with bad result")
			continue
		}
		vector, err := d.builder.Build(features.BuildInput{
			Match:        record.Match,
			HomeForm:     record.HomeForm,
			AwayForm:     record.AwayForm,
			HomeAdvanced: record.HomeAdv,
			AwayAdvanced: record.AwayAdv,
			Market:       record.Market,
			Context:      record.Context,
			AsOf:         record.Match.KickoffAt,
		})
		if err != nil {
			d.logger.WithError(err).WithField("match", record.Match.ExternalID).Warn("Skipping history record without vector")
			continue
		}
		rows = append(rows, modelbank.TrainingRow{Vector: vector, Result: outcome})
	}
	return rows, nil
}
