package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/larsneumann/stellenradar/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <snapshot-file>",
	Short: "Import a snapshot file into the database",
	Long:  "One-shot import: reconciles the postings in the given snapshot file into the database. Safe to rerun on the same file.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	s, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := importer.New(s, logger).ImportSnapshot(ctx, args[0]); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
	return nil
}
