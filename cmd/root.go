package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/go-tennis-metrics/internal/config"
	"github.com/pable/go-tennis-metrics/internal/radar"
	"github.com/pable/go-tennis-metrics/internal/service"
	"github.com/pable/go-tennis-metrics/internal/storage"
	"github.com/pable/go-tennis-metrics/pkg/logger"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tennismetrics",
	Short: "Tennis shot-log metrics tool",
	Long: `Import charted tennis matches and compute per-player shot pattern
statistics, serve profiles, rally sequences and percentile radar profiles.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default ~/.tennismetrics/tennis.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $TENNIS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level: debug, info, warn, error")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(deriveWinnersCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(directionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(servePlusOneCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(sequencesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(radarCmd)
	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(distributionsCmd)
	rootCmd.AddCommand(serveAPICmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if dbPath == "" {
		dbPath = c.DBPath
	}
	if dbPath == "" {
		dbPath = filepath.Join(mustUserHome(), ".tennismetrics", "tennis.db")
	}
	cfg = c

	return logger.Init(c.LogLevel)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// openDB opens the database, creating its directory when missing.
func openDB() (*storage.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// loadDistributions reads the configured tour snapshot and the compare
// population next to it. A missing tour file yields nil so commands that do
// not rank still work.
func loadDistributions() (tour, compare *radar.Distributions, err error) {
	path := cfg.Distributions.Path
	if path == "" {
		return nil, nil, nil
	}
	tour, compare, err = radar.LoadSnapshots(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Get().Warn(context.Background(), "no radar distributions", logger.String("path", path))
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("load distributions: %w", err)
	}
	if compare == nil {
		logger.Get().Warn(context.Background(), "no compare card distributions", logger.String("path", radar.ComparePath(path)))
	}
	return tour, compare, nil
}

// newAnalyzer wires the configured engine over db.
func newAnalyzer(db *storage.DB) (*service.Analyzer, error) {
	tour, compare, err := loadDistributions()
	if err != nil {
		return nil, err
	}
	model, err := cfg.RadarModel(tour, compare)
	if err != nil {
		return nil, err
	}
	return service.NewAnalyzer(db,
		service.WithParams(cfg.AggregatorParams()),
		service.WithSequenceParams(cfg.SequenceParams()),
		service.WithRadar(model, cfg.CompareScorer()),
	), nil
}
