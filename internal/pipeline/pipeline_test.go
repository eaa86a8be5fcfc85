package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/larsneumann/stellenradar/internal/importer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFetcher struct {
	path string
	err  error
}

func (f *stubFetcher) FetchSnapshot(_ context.Context) (string, error) {
	return f.path, f.err
}

type recordingImporter struct {
	imported []string
	report   *importer.Report
	err      error
}

func (i *recordingImporter) ImportSnapshot(_ context.Context, path string) (*importer.Report, error) {
	i.imported = append(i.imported, path)
	return i.report, i.err
}

func TestRun_FetchThenImport(t *testing.T) {
	imp := &recordingImporter{report: &importer.Report{Records: 2}}
	p := New(&stubFetcher{path: "all_jobs_2025-09-08.json"}, imp, discardLogger())

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(imp.imported) != 1 || imp.imported[0] != "all_jobs_2025-09-08.json" {
		t.Errorf("imported = %v, want the fetched snapshot path", imp.imported)
	}
}

func TestRun_FetchFailureSkipsImport(t *testing.T) {
	imp := &recordingImporter{}
	p := New(&stubFetcher{err: errors.New("network down")}, imp, discardLogger())

	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error when fetch fails")
	}
	if len(imp.imported) != 0 {
		t.Errorf("import ran %d times after failed fetch, want 0", len(imp.imported))
	}
}

func TestRun_ImportFailureSurfaces(t *testing.T) {
	imp := &recordingImporter{err: errors.New("bad snapshot")}
	p := New(&stubFetcher{path: "x.json"}, imp, discardLogger())

	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error when import fails")
	}
}
