package export

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/larsneumann/stellenradar/internal/model"
)

// stubStore serves a fixed set of job rows.
type stubStore struct {
	model.Store
	rows []model.JobRow
}

func (s *stubStore) ListJobRows(_ context.Context) ([]model.JobRow, error) {
	return s.rows, nil
}

func TestWriteCSV(t *testing.T) {
	date := time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC)
	lat, lon := 52.52, 13.405
	district := "Mitte"

	store := &stubStore{rows: []model.JobRow{
		{
			PostedAt:    &date,
			Title:       "Python Developer",
			Company:     "ExampleCo",
			RedirectURL: "http://example.com",
			Latitude:    &lat,
			Longitude:   &lon,
			City:        "Berlin",
			District:    &district,
			Tech:        "Python",
		},
		// Nullable fields absent.
		{Title: "Java Entwickler", Company: "OtherCo", City: "München", Tech: "Java"},
	}}

	var buf strings.Builder
	if err := WriteCSV(context.Background(), store, &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(records))
	}
	if records[0][0] != "date" || records[0][9] != "tech" {
		t.Errorf("unexpected header: %v", records[0])
	}

	first := records[1]
	want := []string{"2025-09-08", "Python Developer", "ExampleCo", "false",
		"http://example.com", "52.52", "13.405", "Berlin", "Mitte", "Python"}
	for i := range want {
		if first[i] != want[i] {
			t.Errorf("row 1 col %d = %q, want %q", i, first[i], want[i])
		}
	}

	second := records[2]
	for _, i := range []int{0, 5, 6, 8} { // date, lat, lon, district
		if second[i] != "" {
			t.Errorf("row 2 col %d = %q, want empty for null value", i, second[i])
		}
	}
}
