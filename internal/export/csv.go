// Package export hands the reconciled job data to the external dashboard as
// a flat CSV file.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/larsneumann/stellenradar/internal/model"
)

var header = []string{
	"date", "title", "company", "salary_is_predicted", "redirect_url",
	"latitude", "longitude", "city", "district", "tech",
}

// WriteCSV streams the joined job view to w with a header row. Nullable
// columns are emitted as empty cells.
func WriteCSV(ctx context.Context, store model.Store, w io.Writer) error {
	rows, err := store.ListJobRows(ctx)
	if err != nil {
		return fmt.Errorf("csv export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv export: write header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			formatDate(r.PostedAt),
			r.Title,
			r.Company,
			strconv.FormatBool(r.SalaryIsPredicted),
			r.RedirectURL,
			formatFloat(r.Latitude),
			formatFloat(r.Longitude),
			r.City,
			formatString(r.District),
			r.Tech,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv export: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the export to path, creating intermediate directories.
func WriteCSVFile(ctx context.Context, store model.Store, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("csv export: create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv export: create file %q: %w", path, err)
	}

	if err := WriteCSV(ctx, store, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
