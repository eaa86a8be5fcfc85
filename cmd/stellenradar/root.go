package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/larsneumann/stellenradar/internal/config"
	"github.com/larsneumann/stellenradar/internal/fetcher"
	"github.com/larsneumann/stellenradar/internal/importer"
	"github.com/larsneumann/stellenradar/internal/pipeline"
	"github.com/larsneumann/stellenradar/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "stellenradar",
	Short: "IT job posting radar for Germany",
	Long:  "Stellenradar harvests German IT job postings from Adzuna, tags them by technology, and persists them for analysis.",
	// Default to `start` so that `stellenradar` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: STELLENRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig loads .env credentials, resolves the config path, and parses it.
// Priority: explicit path arg > STELLENRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	// Credentials usually live in .env; absence is fine, system env wins.
	_ = godotenv.Load()

	if path == "" {
		if env := os.Getenv("STELLENRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func buildFetcher(cfg *config.Config, logger *slog.Logger) *fetcher.Fetcher {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	f := fetcher.New(cfg.Adzuna.AppID, cfg.Adzuna.AppKey, cfg.SnapshotDir, httpClient, logger)
	f.Throttle = cfg.Adzuna.Throttle
	return f
}

func openStore(cfg *config.Config, logger *slog.Logger) (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", "path", cfg.DatabasePath)
	return s, nil
}

func buildPipeline(cfg *config.Config, s *store.SQLiteStore, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(buildFetcher(cfg, logger), importer.New(s, logger), logger)
}
