// Package main provides the entry point for the Quiniela prediction engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/betting"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/config"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/datasource"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/ensemble"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/features"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/health"
	applogger "github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/logger"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/modelbank"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/models"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/selection"
	"github.com/antoniogomezgallardo/1x2-Predictor-sub000/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile  string
	datasetFile string
	matchID     int
	maxSpend    float64
	withBonus   bool
	serveHealth bool

	cfg      *config.Config
	logger   *logrus.Logger
	dataset  *datasource.Dataset
	bank     *modelbank.Bank
	combiner *ensemble.Combiner
	builder  *features.Builder

	predictor *service.PredictionService
	slips     *service.SlipService
	trainer   *service.TrainingService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&datasetFile, "dataset", "d", "./data/round.json", "Path to round dataset file")
	predictCmd.Flags().IntVarP(&matchID, "match", "m", 0, "External fixture ID to predict")
	slipCmd.Flags().Float64VarP(&maxSpend, "max-spend", "s", 12.0, "Maximum spend in euros")
	slipCmd.Flags().BoolVar(&withBonus, "with-bonus", true, "Include the Pleno al 15 stake")
	slipCmd.Flags().BoolVar(&serveHealth, "serve", false, "Expose health and metrics endpoints while running")
	predictCmd.MarkFlagRequired("match")
}

var rootCmd = &cobra.Command{
	Use:   "quiniela",
	Short: "Quiniela prediction and bet structure engine",
	Long:  `Predict 1X2 outcomes for La Quiniela rounds and optimize bet structures within a budget.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the model bank from the dataset history",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runTraining(cmd.Context())
		return err
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a single fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd.Context())
	},
}

var slipCmd = &cobra.Command{
	Use:     "slip",
	Aliases: []string{"optimize"},
	Short:   "Build a full round: slip, predictions, and bet structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSlip(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quiniela %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

func main() {
	rootCmd.AddCommand(trainCmd, predictCmd, slipCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadAndValidate(configFile)
	return err
}

func setupDependencies() error {
	logger = applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	logger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Quiniela engine starting")

	builder = features.NewBuilder()

	var err error
	dataset, err = datasource.Load(datasetFile, builder, logger)
	if err != nil {
		return err
	}

	modelTimeout := time.Duration(cfg.Prediction.ModelTimeoutMillis) * time.Millisecond
	bank = modelbank.NewBank(logger, modelbank.DefaultFactory, modelTimeout)
	bank.SetHoldoutFraction(cfg.Training.HoldoutFraction)
	combiner = ensemble.NewCombiner(logger, ensemble.Config{
		FamilyPriors: cfg.Prediction.FamilyPriors,
		Epsilon:      cfg.Prediction.TieEpsilon,
	})

	cacheTTL := time.Duration(cfg.Prediction.CacheTTLSeconds) * time.Second
	cache := service.NewVectorCache(cacheTTL, cfg.Prediction.CacheMaxSize)

	sources := service.Sources{
		Form:     dataset,
		Advanced: dataset,
		Market:   dataset,
		Context:  dataset,
		Training: dataset,
	}
	predictor = service.NewPredictionService(logger, sources, builder, bank, combiner, cache)
	trainer = service.NewTrainingService(logger, dataset, bank, combiner, cfg.Training.MinRows)

	selector := selection.NewOptimizer(logger, selection.Config{
		Now:          time.Now(),
		PrimaryCap:   cfg.Selection.PrimaryCap,
		SecondaryCap: cfg.Selection.SecondaryCap,
	})
	structurer := betting.NewOptimizer(logger, betting.Config{
		Prizes:           betting.PrizeTable(cfg.Betting.Prizes),
		Systems:          reducedSystems(cfg.Betting.ReducedSystems),
		GapPenalty:       cfg.Betting.GapPenalty,
		UncertaintyFloor: cfg.Betting.UncertaintyFloor,
		MaxMultiplicity:  cfg.Betting.MaxMultiplicity,
	})
	slips = service.NewSlipService(logger, selector, predictor, structurer)

	return nil
}

func reducedSystems(entries []config.ReducedSystemConfig) []betting.ReducedSystem {
	systems := make([]betting.ReducedSystem, 0, len(entries))
	for _, entry := range entries {
		systems = append(systems, betting.ReducedSystem{
			Name:         entry.Name,
			Doubles:      entry.Doubles,
			Triples:      entry.Triples,
			FullCoverage: entry.FullCoverage,
			Played:       entry.Played,
			Price:        decimal.NewFromFloat(entry.Price),
		})
	}
	return systems
}

func runTraining(ctx context.Context) (*modelbank.TrainingReport, error) {
	report, err := trainer.Run(ctx)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"version": report.Version,
		"rows":    report.Rows,
		"models":  len(report.Models),
		"failed":  len(report.Failed),
	}).Info("Training run complete")
	return report, printJSON(report)
}

func runPredict(ctx context.Context) error {
	if _, err := trainer.Run(ctx); err != nil {
		return err
	}
	candidate := dataset.CandidateByExternalID(matchID)
	if candidate == nil {
		return fmt.Errorf("fixture %d not found in dataset", matchID)
	}
	prediction, err := predictor.Predict(ctx, candidate, time.Now())
	if err != nil {
		return err
	}
	return printJSON(prediction)
}

func runSlip(ctx context.Context) error {
	if serveHealth && cfg.Metrics.Enabled {
		server := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        cfg.Metrics.Port,
			MetricsPath: cfg.Metrics.Path,
			Logger:      logger,
			Snapshots:   bank,
		})
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer server.Shutdown()
		server.SetReady(true)
	}

	if _, err := trainer.Run(ctx); err != nil {
		return err
	}

	budget := models.CombinationBudget{
		MaxSpend:   decimal.NewFromFloat(maxSpend),
		BasePrice:  decimal.NewFromFloat(cfg.Betting.BasePrice),
		BonusPrice: decimal.NewFromFloat(cfg.Betting.BonusPrice),
		WithBonus:  withBonus,
	}
	result, err := slips.BuildRound(ctx, dataset.Candidates(), budget, time.Now())
	if err != nil {
		return err
	}
	return printJSON(result)
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
