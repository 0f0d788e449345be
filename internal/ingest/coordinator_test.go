package ingest

import (
	"testing"
	"time"

	"github.com/raceops/resultsync/internal/model"
	"github.com/raceops/resultsync/internal/scraper"
)

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{-1, 5 * time.Minute}, // clamped low
		{0, 5 * time.Minute},
		{1, 15 * time.Minute},
		{2, 45 * time.Minute},
		{3, 45 * time.Minute}, // clamped high
		{99, 45 * time.Minute},
	}

	for _, tt := range tests {
		if got := retryDelay(tt.attempt); got != tt.want {
			t.Errorf("retryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestFieldsProvidedJSON(t *testing.T) {
	got := fieldsProvidedJSON([]string{"bib", "name"})
	if string(got) != `["bib","name"]` {
		t.Errorf("fieldsProvidedJSON = %s, want [\"bib\",\"name\"]", got)
	}
}

func TestFieldsProvidedJSON_Empty(t *testing.T) {
	got := fieldsProvidedJSON(nil)
	if string(got) != "null" {
		t.Errorf("fieldsProvidedJSON(nil) = %s, want null", got)
	}
}

// TestBuildResults_DeterministicDedupKey guards the repository's dedup
// path (event+position+bib+display_name): re-running the same scrape
// through buildResults must yield identical key fields both times, or the
// repository's upsert lookup would never match the row it is meant to
// replace.
func TestBuildResults_DeterministicDedupKey(t *testing.T) {
	c := &Coordinator{}
	event := &model.Event{ID: "evt-1"}
	pos := 1
	scraped := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: &pos, Bib: "101", DisplayName: "Jane Doe"},
		},
	}

	first := c.buildResults(event, scraped, "https://example.com/results", "hopasports")
	second := c.buildResults(event, scraped, "https://example.com/results", "hopasports")

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("want 1 result per run, got %d and %d", len(first), len(second))
	}

	a, b := first[0], second[0]
	if a.EventID != b.EventID {
		t.Errorf("EventID changed across runs: %q vs %q", a.EventID, b.EventID)
	}
	if a.Position == nil || b.Position == nil || *a.Position != *b.Position {
		t.Errorf("Position changed across runs: %v vs %v", a.Position, b.Position)
	}
	if a.Bib != b.Bib {
		t.Errorf("Bib changed across runs: %q vs %q", a.Bib, b.Bib)
	}
	if a.DisplayName != b.DisplayName {
		t.Errorf("DisplayName changed across runs: %q vs %q", a.DisplayName, b.DisplayName)
	}
}
