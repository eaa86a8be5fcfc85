package model

import "errors"

// Failure conditions that abort a whole fetch or import call. Per-page and
// per-record problems are contained and logged where they occur; these
// sentinels cover broken preconditions the caller has to act on.
var (
	// ErrCredentialsMissing means the Adzuna app ID or app key is absent
	// or empty. Surfaced before any HTTP request is made.
	ErrCredentialsMissing = errors.New("adzuna credentials missing")

	// ErrSnapshotNotFound means the snapshot path handed to the importer
	// does not exist.
	ErrSnapshotNotFound = errors.New("snapshot file not found")

	// ErrSnapshotFormat means the snapshot file exists but is not a valid
	// JSON array of postings.
	ErrSnapshotFormat = errors.New("snapshot file is not valid JSON")
)
