// Package fetcher pulls IT job postings from the Adzuna search API page by
// page and stages them as a dated JSON snapshot on disk. It never touches
// the database; the importer consumes the snapshot in a separate step.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/larsneumann/stellenradar/internal/model"
)

const (
	defaultBaseURL = "https://api.adzuna.com/v1/api/jobs/de/search"

	searchWhat     = "Softwareentwickler"
	searchCategory = "it-jobs"
	resultsPerPage = 50
)

// page mirrors the top-level Adzuna response. Results stay raw so the
// snapshot keeps full fidelity of whatever the API sent.
type page struct {
	Results []json.RawMessage `json:"results"`
}

// Fetcher downloads all pages of the fixed search query and writes them to
// one snapshot file per calendar day.
type Fetcher struct {
	appID       string
	appKey      string
	snapshotDir string
	client      *http.Client
	logger      *slog.Logger

	// BaseURL is the search endpoint without the trailing page number.
	// Overridable for tests.
	BaseURL string

	// Throttle is the pause between successful page requests and Sleep the
	// primitive that performs it. Tests substitute Sleep to run instantly.
	Throttle time.Duration
	Sleep    func(time.Duration)

	// Now supplies the date baked into the snapshot filename.
	Now func() time.Time
}

// New creates a fetcher writing snapshots into snapshotDir.
func New(appID, appKey, snapshotDir string, client *http.Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		appID:       appID,
		appKey:      appKey,
		snapshotDir: snapshotDir,
		client:      client,
		logger:      logger,
		BaseURL:     defaultBaseURL,
		Throttle:    time.Second,
		Sleep:       time.Sleep,
		Now:         time.Now,
	}
}

// FetchSnapshot pages through the search results until a page comes back
// empty, then writes everything collected to all_jobs_<date>.json and
// returns its path. A mid-pagination request failure is logged and the
// pages collected so far are still flushed; missing credentials, context
// cancellation, and artifact write failures abort with no snapshot.
func (f *Fetcher) FetchSnapshot(ctx context.Context) (string, error) {
	if f.appID == "" || f.appKey == "" {
		return "", fmt.Errorf("fetch snapshot: %w", model.ErrCredentialsMissing)
	}

	var all []json.RawMessage
	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			// A cancelled fetch must not claim a completed snapshot.
			return "", fmt.Errorf("fetch snapshot: %w", err)
		}

		results, err := f.fetchPage(ctx, pageNum)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("fetch snapshot: %w", ctx.Err())
			}
			// Degraded success: keep what we have, stop paginating.
			f.logger.Error("page request failed, flushing partial results",
				"page", pageNum,
				"collected", len(all),
				"error", err,
			)
			break
		}
		if len(results) == 0 {
			f.logger.Info("no more results, finishing pagination", "pages", pageNum-1)
			break
		}

		all = append(all, results...)
		f.logger.Info("page loaded", "page", pageNum, "results", len(results))

		f.Sleep(f.Throttle)
	}

	path, err := f.writeSnapshot(all)
	if err != nil {
		return "", fmt.Errorf("fetch snapshot: %w", err)
	}

	f.logger.Info("snapshot written", "path", path, "total", len(all))
	return path, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, pageNum int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("app_id", f.appID)
	params.Set("app_key", f.appKey)
	params.Set("what", searchWhat)
	params.Set("category", searchCategory)
	params.Set("results_per_page", strconv.Itoa(resultsPerPage))
	params.Set("content-type", "application/json")

	reqURL := fmt.Sprintf("%s/%d?%s", f.BaseURL, pageNum, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNum, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNum, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page %d: unexpected status %d", pageNum, resp.StatusCode)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("page %d: %w", pageNum, err)
	}

	return p.Results, nil
}

// writeSnapshot serializes the raw postings to the dated artifact path.
// Rerunning on the same day overwrites the same file.
func (f *Fetcher) writeSnapshot(records []json.RawMessage) (string, error) {
	if records == nil {
		records = []json.RawMessage{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.MkdirAll(f.snapshotDir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot dir: %w", err)
	}

	name := fmt.Sprintf("all_jobs_%s.json", f.Now().Format("2006-01-02"))
	path := filepath.Join(f.snapshotDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	return path, nil
}
