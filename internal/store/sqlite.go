// Package store implements the model.Store gateway on SQLite. All upserts
// are keyed by natural identifiers and atomic per row, so repeated imports
// of overlapping data never create duplicates.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/larsneumann/stellenradar/internal/model"
)

const dateFormat = "2006-01-02"

// Ensure SQLiteStore implements model.Store.
var _ model.Store = (*SQLiteStore)(nil)

// SQLiteStore persists jobs, techs, locations, and job-location links in a
// SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS techs (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS locations (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		display_name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id              TEXT NOT NULL UNIQUE,
		title               TEXT NOT NULL DEFAULT '',
		description         TEXT NOT NULL DEFAULT '',
		salary_is_predicted INTEGER NOT NULL DEFAULT 0,
		redirect_url        TEXT NOT NULL DEFAULT '',
		company             TEXT NOT NULL DEFAULT '',
		tech_id             INTEGER NOT NULL REFERENCES techs(id),
		posted_at           TEXT
	);

	CREATE TABLE IF NOT EXISTS job_locations (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id      INTEGER NOT NULL REFERENCES jobs(id),
		location_id INTEGER NOT NULL REFERENCES locations(id),
		district    TEXT,
		latitude    REAL,
		longitude   REAL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_job_locations_identity
		ON job_locations(job_id, location_id, COALESCE(district, ''));
	`
	_, err := db.Exec(schema)
	return err
}

// GetOrCreateTech returns the tech with the given name, inserting it first
// if unseen. The insert is a no-op on conflict, so concurrent callers
// cannot create duplicate dictionary entries.
func (s *SQLiteStore) GetOrCreateTech(ctx context.Context, name string) (model.Tech, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO techs (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name)
	if err != nil {
		return model.Tech{}, fmt.Errorf("inserting tech %q: %w", name, err)
	}

	var t model.Tech
	err = s.db.QueryRowContext(ctx,
		"SELECT id, name FROM techs WHERE name = ?", name).Scan(&t.ID, &t.Name)
	if err != nil {
		return model.Tech{}, fmt.Errorf("selecting tech %q: %w", name, err)
	}
	return t, nil
}

// GetOrCreateLocation returns the location with the given display name,
// inserting it first if unseen.
func (s *SQLiteStore) GetOrCreateLocation(ctx context.Context, displayName string) (model.Location, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO locations (display_name) VALUES (?) ON CONFLICT(display_name) DO NOTHING", displayName)
	if err != nil {
		return model.Location{}, fmt.Errorf("inserting location %q: %w", displayName, err)
	}

	var l model.Location
	err = s.db.QueryRowContext(ctx,
		"SELECT id, display_name FROM locations WHERE display_name = ?", displayName).
		Scan(&l.ID, &l.DisplayName)
	if err != nil {
		return model.Location{}, fmt.Errorf("selecting location %q: %w", displayName, err)
	}
	return l, nil
}

// CreateOrUpdateJob inserts the job keyed by its upstream ID, or overwrites
// every field except posted_at if the ID already exists. The first-seen
// posting date is never revised.
func (s *SQLiteStore) CreateOrUpdateJob(ctx context.Context, job model.Job) (model.Job, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (job_id, title, description, salary_is_predicted, redirect_url, company, tech_id, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO NOTHING`,
		job.JobID, job.Title, job.Description, job.SalaryIsPredicted,
		job.RedirectURL, job.Company, job.TechID, dateOrNull(job.PostedAt))
	if err != nil {
		return model.Job{}, false, fmt.Errorf("inserting job %s: %w", job.JobID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return model.Job{}, false, fmt.Errorf("inserting job %s: %w", job.JobID, err)
	}

	created := inserted == 1
	if !created {
		_, err = s.db.ExecContext(ctx, `
			UPDATE jobs
			SET title = ?, description = ?, salary_is_predicted = ?,
			    redirect_url = ?, company = ?, tech_id = ?
			WHERE job_id = ?`,
			job.Title, job.Description, job.SalaryIsPredicted,
			job.RedirectURL, job.Company, job.TechID, job.JobID)
		if err != nil {
			return model.Job{}, false, fmt.Errorf("updating job %s: %w", job.JobID, err)
		}
	}

	stored, err := s.getJobByJobID(ctx, job.JobID)
	if err != nil {
		return model.Job{}, false, err
	}
	return stored, created, nil
}

func (s *SQLiteStore) getJobByJobID(ctx context.Context, jobID string) (model.Job, error) {
	var (
		j        model.Job
		postedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, title, description, salary_is_predicted, redirect_url, company, tech_id, posted_at
		FROM jobs WHERE job_id = ?`, jobID).
		Scan(&j.ID, &j.JobID, &j.Title, &j.Description, &j.SalaryIsPredicted,
			&j.RedirectURL, &j.Company, &j.TechID, &postedAt)
	if err != nil {
		return model.Job{}, fmt.Errorf("selecting job %s: %w", jobID, err)
	}
	j.PostedAt = parseDate(postedAt)
	return j, nil
}

// GetJobLocation looks up the link row for (job, location, district).
// "district IS ?" makes NULL match only NULL, so a missing district is its
// own identity value rather than a wildcard.
func (s *SQLiteStore) GetJobLocation(ctx context.Context, jobID, locationID int64, district *string) (*model.JobLocation, error) {
	var (
		jl  model.JobLocation
		d   sql.NullString
		lat sql.NullFloat64
		lon sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, location_id, district, latitude, longitude
		FROM job_locations
		WHERE job_id = ? AND location_id = ? AND district IS ?`,
		jobID, locationID, district).
		Scan(&jl.ID, &jl.JobID, &jl.LocationID, &d, &lat, &lon)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting job location: %w", err)
	}

	if d.Valid {
		jl.District = &d.String
	}
	if lat.Valid {
		jl.Latitude = &lat.Float64
	}
	if lon.Valid {
		jl.Longitude = &lon.Float64
	}
	return &jl, nil
}

// InsertJobLocation creates a new link row and returns it with its ID set.
func (s *SQLiteStore) InsertJobLocation(ctx context.Context, jl model.JobLocation) (model.JobLocation, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO job_locations (job_id, location_id, district, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)`,
		jl.JobID, jl.LocationID, jl.District, jl.Latitude, jl.Longitude)
	if err != nil {
		return model.JobLocation{}, fmt.Errorf("inserting job location: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.JobLocation{}, fmt.Errorf("inserting job location: %w", err)
	}
	jl.ID = id
	return jl, nil
}

// UpdateJobLocationCoords overwrites coordinates on an existing link row.
// Nil values leave the corresponding column untouched; passing both as nil
// is a no-op.
func (s *SQLiteStore) UpdateJobLocationCoords(ctx context.Context, id int64, lat, lon *float64) error {
	var (
		set  string
		args []any
	)
	if lat != nil {
		set = "latitude = ?"
		args = append(args, *lat)
	}
	if lon != nil {
		if set != "" {
			set += ", "
		}
		set += "longitude = ?"
		args = append(args, *lon)
	}
	if set == "" {
		return nil
	}

	args = append(args, id)
	_, err := s.db.ExecContext(ctx, "UPDATE job_locations SET "+set+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating job location %d: %w", id, err)
	}
	return nil
}

// ListJobRows returns the joined job/location/tech view consumed by the
// dashboard export. Unclassified jobs and the whole-country sentinel
// location are excluded, matching what the dashboard actually plots.
func (s *SQLiteStore) ListJobRows(ctx context.Context) ([]model.JobRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.posted_at, j.title, j.company, j.salary_is_predicted, j.redirect_url,
		       jl.latitude, jl.longitude, l.display_name, jl.district, t.name
		FROM jobs j
		JOIN job_locations jl ON jl.job_id = j.id
		JOIN locations l ON l.id = jl.location_id
		JOIN techs t ON t.id = j.tech_id
		WHERE t.name != 'Other' AND l.display_name != 'Deutschland'
		ORDER BY j.id`)
	if err != nil {
		return nil, fmt.Errorf("listing job rows: %w", err)
	}
	defer rows.Close()

	var result []model.JobRow
	for rows.Next() {
		var (
			r        model.JobRow
			postedAt sql.NullString
			lat, lon sql.NullFloat64
			district sql.NullString
		)
		err := rows.Scan(&postedAt, &r.Title, &r.Company, &r.SalaryIsPredicted,
			&r.RedirectURL, &lat, &lon, &r.City, &district, &r.Tech)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		r.PostedAt = parseDate(postedAt)
		if lat.Valid {
			r.Latitude = &lat.Float64
		}
		if lon.Valid {
			r.Longitude = &lon.Float64
		}
		if district.Valid {
			r.District = &district.String
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func dateOrNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateFormat)
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(dateFormat, s.String)
	if err != nil {
		return nil
	}
	return &t
}
