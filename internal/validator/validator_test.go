package validator

import (
	"testing"

	"github.com/raceops/resultsync/internal/scraper"
)

func intPtr(n int) *int { return &n }

func TestValidate_EmptyResults(t *testing.T) {
	report := Validate(scraper.ScrapedResults{})
	if report.Total != 0 {
		t.Errorf("expected Total 0, got %d", report.Total)
	}
	if report.CompletenessScore != 0 {
		t.Errorf("expected CompletenessScore 0 on empty input, got %v", report.CompletenessScore)
	}
}

func TestValidate_FullyPopulated(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: intPtr(1), Bib: "101", DisplayName: "Jane Doe", FinishTime: "1:45:00"},
			{Position: intPtr(2), Bib: "102", DisplayName: "John Roe", FinishTime: "1:46:00"},
		},
	}

	report := Validate(results)
	if report.Total != 2 {
		t.Fatalf("expected Total 2, got %d", report.Total)
	}
	if report.CompletenessScore != 100 {
		t.Errorf("expected CompletenessScore 100, got %v", report.CompletenessScore)
	}
	if report.RowsWithAllFields != 2 {
		t.Errorf("expected RowsWithAllFields 2, got %d", report.RowsWithAllFields)
	}
	if len(report.CriticalErrors) != 0 {
		t.Errorf("expected no critical errors, got %v", report.CriticalErrors)
	}
}

func TestValidate_MissingNameIsCritical(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: intPtr(1), Bib: "101", DisplayName: "", FinishTime: "1:45:00"},
		},
	}

	report := Validate(results)
	if len(report.CriticalErrors) != 1 {
		t.Fatalf("expected 1 critical error for missing name, got %d: %v", len(report.CriticalErrors), report.CriticalErrors)
	}
}

func TestValidate_DuplicateBibWarns(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: intPtr(1), Bib: "101", DisplayName: "Jane Doe", FinishTime: "1:45:00"},
			{Position: intPtr(2), Bib: "101", DisplayName: "John Roe", FinishTime: "1:46:00"},
		},
	}

	report := Validate(results)
	found := false
	for _, w := range report.Warnings {
		if w == `duplicate bib "101" (2 rows)` {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate bib warning, got %v", report.Warnings)
	}
}

func TestValidate_DuplicatePositionWarns(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: intPtr(1), Bib: "101", DisplayName: "Jane Doe", FinishTime: "1:45:00"},
			{Position: intPtr(1), Bib: "102", DisplayName: "John Roe", FinishTime: "1:46:00"},
		},
	}

	report := Validate(results)
	found := false
	for _, w := range report.Warnings {
		if w == "duplicate position 1 (2 rows)" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate position warning, got %v", report.Warnings)
	}
}

func TestValidate_LowFieldPopulationWarns(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: intPtr(1), Bib: "101", DisplayName: "Jane Doe", FinishTime: "1:45:00"},
			{DisplayName: "John Roe"}, // missing position, bib, finish
			{DisplayName: "Alex Lee"}, // missing position, bib, finish
		},
	}

	report := Validate(results)
	foundPosition := false
	for _, w := range report.Warnings {
		if w == `field "position" populated in 33.3% of rows` {
			foundPosition = true
		}
	}
	if !foundPosition {
		t.Errorf("expected low-population warning for position field, got %v", report.Warnings)
	}
}

func TestValidate_ImplausibleFinishWarns(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: intPtr(1), Bib: "101", DisplayName: "Jane Doe", FinishTime: "9:00:00", DistanceName: "marathon"},
		},
	}

	report := Validate(results)
	found := false
	for _, w := range report.Warnings {
		if w == "bib 101: finish time implausible for marathon" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected implausible finish warning, got %v", report.Warnings)
	}
}

func TestValidate_BeatsWorldRecordWarns(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: intPtr(1), Bib: "101", DisplayName: "Jane Doe", FinishTime: "1:30:00", DistanceName: "marathon", Gender: "m"},
		},
	}

	report := Validate(results)
	found := false
	for _, w := range report.Warnings {
		if w == "bib 101: finish time beats the world record for marathon" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected world record warning, got %v", report.Warnings)
	}
}

func TestValidate_PlausibleFinishNoWarning(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{Position: intPtr(1), Bib: "101", DisplayName: "Jane Doe", FinishTime: "3:45:00", DistanceName: "marathon", Gender: "m"},
		},
	}

	report := Validate(results)
	for _, w := range report.Warnings {
		if w == "bib 101: finish time implausible for marathon" || w == "bib 101: finish time beats the world record for marathon" {
			t.Errorf("did not expect a plausibility warning for a normal finish, got %v", report.Warnings)
		}
	}
}

func TestValidate_CheckpointMonotonicityWarns(t *testing.T) {
	results := scraper.ScrapedResults{
		Results: []scraper.RawResult{
			{
				Position: intPtr(1), Bib: "101", DisplayName: "Jane Doe", FinishTime: "1:45:00",
				Checkpoints: []scraper.RawCheckpoint{
					{Name: "5km", Order: 1, CumulativeTime: "25:00"},
					{Name: "10km", Order: 2, CumulativeTime: "20:00"},
				},
			},
		},
	}

	report := Validate(results)
	if report.RowsWithCheckpoints != 1 {
		t.Errorf("expected RowsWithCheckpoints 1, got %d", report.RowsWithCheckpoints)
	}
	found := false
	for _, w := range report.Warnings {
		if w == `bib 101: checkpoint "10km" out of order` {
			found = true
		}
	}
	if !found {
		t.Errorf("expected monotonicity warning, got %v", report.Warnings)
	}
}
