package model

import (
	"context"
	"time"
)

// Tech is a normalized technology label extracted from job titles.
// Rows are an append-only dictionary keyed by Name.
type Tech struct {
	ID   int64
	Name string
}

// Location is a city-level place name, deduplicated by DisplayName.
type Location struct {
	ID          int64
	DisplayName string
}

// Job is one persisted posting, keyed by the upstream job ID.
type Job struct {
	ID                int64
	JobID             string // unique per upstream API
	Title             string
	Description       string
	SalaryIsPredicted bool
	RedirectURL       string
	Company           string
	TechID            int64
	PostedAt          *time.Time // nullable; set at creation, never revised
}

// JobLocation links a job to a city, optionally qualified by a district
// and coordinates. Identity is (job, location, district), where a NULL
// district is its own identity value rather than a wildcard.
type JobLocation struct {
	ID         int64
	JobID      int64
	LocationID int64
	District   *string
	Latitude   *float64
	Longitude  *float64
}

// SnapshotRecord is one raw posting as parsed from a snapshot file.
// Every field is optional on the wire; absent fields stay at their zero
// value so the importer never has to guard nested lookups.
type SnapshotRecord struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	SalaryIsPredicted string        `json:"salary_is_predicted"` // upstream sends "0"/"1"
	RedirectURL       string        `json:"redirect_url"`
	Company           CompanyField  `json:"company"`
	Location          LocationField `json:"location"`
	Latitude          *float64      `json:"latitude"`
	Longitude         *float64      `json:"longitude"`
}

// CompanyField mirrors the nested company object of the upstream payload.
type CompanyField struct {
	DisplayName string `json:"display_name"`
}

// LocationField mirrors the nested location object of the upstream payload.
type LocationField struct {
	DisplayName string `json:"display_name"`
}

// JobRow is one row of the joined view consumed by the dashboard export:
// job fields flattened together with its city, district, and tech label.
type JobRow struct {
	PostedAt          *time.Time
	Title             string
	Company           string
	SalaryIsPredicted bool
	RedirectURL       string
	Latitude          *float64
	Longitude         *float64
	City              string
	District          *string
	Tech              string
}

// Store is the upsert-oriented gateway the importer writes through.
// Each call is atomic for its entity; implementations own the transactional
// guarantees, callers never assume an ambient transaction.
type Store interface {
	// GetOrCreateTech returns the Tech with the given name, creating it
	// on first sighting. Existing rows are never modified.
	GetOrCreateTech(ctx context.Context, name string) (Tech, error)

	// GetOrCreateLocation returns the Location with the given display
	// name, creating it on first sighting.
	GetOrCreateLocation(ctx context.Context, displayName string) (Location, error)

	// CreateOrUpdateJob inserts the job if its JobID is unseen, otherwise
	// overwrites every field except PostedAt (first-seen date wins).
	// Returns the stored row and whether it was newly created.
	CreateOrUpdateJob(ctx context.Context, job Job) (Job, bool, error)

	// GetJobLocation looks up the link row for (job, location, district).
	// A nil district matches only rows whose district is NULL. Returns
	// (nil, nil) when no such row exists.
	GetJobLocation(ctx context.Context, jobID, locationID int64, district *string) (*JobLocation, error)

	// InsertJobLocation creates a new link row.
	InsertJobLocation(ctx context.Context, jl JobLocation) (JobLocation, error)

	// UpdateJobLocationCoords overwrites coordinates on an existing link
	// row. A nil value leaves that column untouched; callers pass only
	// the values that actually changed.
	UpdateJobLocationCoords(ctx context.Context, id int64, lat, lon *float64) error

	// ListJobRows returns the joined job/location/tech view, excluding
	// unclassified jobs and the whole-country sentinel location.
	ListJobRows(ctx context.Context) ([]JobRow, error)
}
