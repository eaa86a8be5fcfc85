// Package importer reads a snapshot file and reconciles its postings into
// the relational store: create-or-get for the Tech and Location
// dictionaries, create-or-update for Jobs, and null-aware merge for
// JobLocations. Re-importing the same snapshot is a no-op.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/larsneumann/stellenradar/internal/classifier"
	"github.com/larsneumann/stellenradar/internal/model"
)

// countrySentinel is the whole-country display name Adzuna uses when a
// posting has no city-level location. It never becomes a Location row.
const countrySentinel = "Deutschland"

var dateRegex = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Report summarizes one import run.
type Report struct {
	Records             int
	JobsCreated         int
	JobsUpdated         int
	JobLocationsCreated int
	JobLocationsUpdated int
	Skipped             map[string]int // reason → count
}

func newReport() *Report {
	return &Report{Skipped: make(map[string]int)}
}

// SkippedTotal is the number of records that failed and were passed over.
func (r *Report) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// Importer drives imports against a Store.
type Importer struct {
	store  model.Store
	logger *slog.Logger
}

// New creates an importer writing through the given store.
func New(store model.Store, logger *slog.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// ImportSnapshot loads the snapshot at path and reconciles every record.
// A missing file or malformed JSON aborts before any store write. Record
// failures are contained: the record is counted as skipped with a reason
// and the loop moves on. Cancellation stops between records; the partial
// report is returned alongside ctx.Err so callers see how far it got.
func (im *Importer) ImportSnapshot(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			im.logger.Error("snapshot file not found", "path", path)
			return nil, fmt.Errorf("import %s: %w", path, model.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("import %s: %w", path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		im.logger.Error("snapshot is not valid JSON", "path", path, "error", err)
		return nil, fmt.Errorf("import %s: %w", path, model.ErrSnapshotFormat)
	}

	postedAt := postingDateFromPath(path)
	if postedAt == nil {
		im.logger.Warn("no posting date in snapshot path, storing null dates", "path", path)
	}

	report := newReport()
	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			im.logger.Warn("import cancelled",
				"path", path,
				"processed", report.Records,
				"remaining", len(records)-i,
			)
			return report, fmt.Errorf("import %s: %w", path, err)
		}

		report.Records++
		if err := im.importRecord(ctx, raw, postedAt, report); err != nil {
			reason := skipReason(err)
			report.Skipped[reason]++
			im.logger.Warn("skipping record", "index", i, "reason", reason, "error", err)
		}
	}

	im.logger.Info("import completed",
		"path", path,
		"records", report.Records,
		"jobs_created", report.JobsCreated,
		"jobs_updated", report.JobsUpdated,
		"job_locations_created", report.JobLocationsCreated,
		"job_locations_updated", report.JobLocationsUpdated,
		"skipped", report.SkippedTotal(),
	)
	return report, nil
}

// importRecord reconciles a single raw posting. Field extraction is
// defensive: absent fields decode to their zero value instead of failing
// the record; only a missing external ID is disqualifying because it is
// the upsert key.
func (im *Importer) importRecord(ctx context.Context, raw json.RawMessage, postedAt *time.Time, report *Report) error {
	var rec model.SnapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("%w: %v", errMalformedRecord, err)
	}
	if rec.ID == "" {
		return errMissingID
	}

	tech, err := im.store.GetOrCreateTech(ctx, classifier.Classify(rec.Title))
	if err != nil {
		return fmt.Errorf("tech: %w", err)
	}

	job, created, err := im.store.CreateOrUpdateJob(ctx, model.Job{
		JobID:             rec.ID,
		Title:             rec.Title,
		Description:       rec.Description,
		SalaryIsPredicted: rec.SalaryIsPredicted == "1",
		RedirectURL:       rec.RedirectURL,
		Company:           rec.Company.DisplayName,
		TechID:            tech.ID,
		PostedAt:          postedAt,
	})
	if err != nil {
		return fmt.Errorf("job %s: %w", rec.ID, err)
	}
	if created {
		report.JobsCreated++
	} else {
		report.JobsUpdated++
	}

	displayName := rec.Location.DisplayName
	if displayName == "" || displayName == countrySentinel {
		return nil
	}

	district, city := splitDisplayName(displayName)
	location, err := im.store.GetOrCreateLocation(ctx, city)
	if err != nil {
		return fmt.Errorf("location %q: %w", city, err)
	}

	return im.reconcileJobLocation(ctx, job.ID, location.ID, district, rec.Latitude, rec.Longitude, report)
}

// reconcileJobLocation merges coordinates into the existing link row for
// (job, location, district), or inserts one. Stored values are overwritten
// only by incoming values that are present and different, so a re-import
// with identical data performs zero writes.
func (im *Importer) reconcileJobLocation(ctx context.Context, jobID, locationID int64, district *string, lat, lon *float64, report *Report) error {
	existing, err := im.store.GetJobLocation(ctx, jobID, locationID, district)
	if err != nil {
		return fmt.Errorf("job location lookup: %w", err)
	}

	if existing == nil {
		_, err := im.store.InsertJobLocation(ctx, model.JobLocation{
			JobID:      jobID,
			LocationID: locationID,
			District:   district,
			Latitude:   lat,
			Longitude:  lon,
		})
		if err != nil {
			return fmt.Errorf("job location insert: %w", err)
		}
		report.JobLocationsCreated++
		return nil
	}

	var newLat, newLon *float64
	if lat != nil && !floatEqual(existing.Latitude, lat) {
		newLat = lat
	}
	if lon != nil && !floatEqual(existing.Longitude, lon) {
		newLon = lon
	}
	if newLat == nil && newLon == nil {
		return nil
	}

	if err := im.store.UpdateJobLocationCoords(ctx, existing.ID, newLat, newLon); err != nil {
		return fmt.Errorf("job location update: %w", err)
	}
	report.JobLocationsUpdated++
	return nil
}

var (
	errMissingID       = errors.New("missing job id")
	errMalformedRecord = errors.New("malformed record")
)

// skipReason buckets record errors for the report.
func skipReason(err error) string {
	switch {
	case errors.Is(err, errMissingID):
		return "missing id"
	case errors.Is(err, errMalformedRecord):
		return "malformed record"
	default:
		return "store error"
	}
}

// postingDateFromPath pulls the nominal posting date out of the snapshot
// filename. Snapshots without a parseable date yield nil, meaning every
// job in the batch is stored with a null date.
func postingDateFromPath(path string) *time.Time {
	match := dateRegex.FindString(path)
	if match == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", match)
	if err != nil {
		return nil
	}
	return &t
}

// splitDisplayName parses Adzuna's location display name. Two
// comma-separated parts mean (district, city); anything else is all city.
func splitDisplayName(displayName string) (district *string, city string) {
	parts := strings.Split(displayName, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	if len(parts) == 2 {
		return &parts[0], parts[1]
	}
	return nil, parts[0]
}

func floatEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
