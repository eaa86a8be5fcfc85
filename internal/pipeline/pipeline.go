// Package pipeline chains the fetch and import steps into the single unit
// of work the scheduler triggers once a day.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/larsneumann/stellenradar/internal/importer"
)

// SnapshotFetcher produces a staged snapshot file and returns its path.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (string, error)
}

// SnapshotImporter reconciles a snapshot file into the store.
type SnapshotImporter interface {
	ImportSnapshot(ctx context.Context, path string) (*importer.Report, error)
}

// Pipeline runs fetch-then-import. A failed fetch skips the import entirely;
// the next scheduled run is the retry.
type Pipeline struct {
	fetcher  SnapshotFetcher
	importer SnapshotImporter
	logger   *slog.Logger
}

// New creates a pipeline wired with its two stages.
func New(fetcher SnapshotFetcher, importer SnapshotImporter, logger *slog.Logger) *Pipeline {
	return &Pipeline{fetcher: fetcher, importer: importer, logger: logger}
}

// Run executes one fetch-and-import cycle.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("vacancy import started")

	path, err := p.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: fetch failed, skipping import: %w", err)
	}

	report, err := p.importer.ImportSnapshot(ctx, path)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	p.logger.Info("vacancy import finished",
		"snapshot", path,
		"records", report.Records,
		"jobs_created", report.JobsCreated,
		"jobs_updated", report.JobsUpdated,
		"skipped", report.SkippedTotal(),
	)
	return nil
}
