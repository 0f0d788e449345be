// Package validator computes completeness and correctness statistics
// over a scraped event's results, shared by every organiser scraper's
// validateResults implementation.
package validator

import (
	"fmt"

	"github.com/raceops/resultsync/internal/checkpoint"
	"github.com/raceops/resultsync/internal/model"
	"github.com/raceops/resultsync/internal/normalize"
	"github.com/raceops/resultsync/internal/scraper"
)

// RequiredFields is the fixed field list completeness is averaged over.
// Checkpoint population, including the checkpoints a distance expects,
// is not part of the completeness score.
var RequiredFields = []string{"position", "bib", "name", "finish"}

// Validate computes a ValidationReport for a full ScrapedResults payload.
func Validate(results scraper.ScrapedResults) scraper.ValidationReport {
	report := scraper.ValidationReport{Total: len(results.Results)}
	if report.Total == 0 {
		return report
	}

	counts := make(map[string]int, len(RequiredFields))
	withAll := 0
	withCheckpoints := 0
	totalCheckpoints := 0

	seenBib := map[string]int{}
	seenPosition := map[int]int{}

	for _, r := range results.Results {
		if normalize.Name(r.DisplayName) == "" {
			report.CriticalErrors = append(report.CriticalErrors, fmt.Sprintf("bib %s: missing name", r.Bib))
		}

		present := map[string]bool{
			"position": r.Position != nil,
			"bib":      r.Bib != "",
			"name":     r.DisplayName != "",
			"finish":   r.FinishTime != "",
		}
		allPresent := true
		for _, f := range RequiredFields {
			if present[f] {
				counts[f]++
			} else {
				allPresent = false
			}
		}
		if allPresent {
			withAll++
		}

		if len(r.Checkpoints) > 0 {
			withCheckpoints++
			totalCheckpoints += len(r.Checkpoints)
			if violation, ok := monotonicityViolation(r.Checkpoints); ok {
				report.Warnings = append(report.Warnings, fmt.Sprintf("bib %s: checkpoint %q out of order", r.Bib, violation))
			}
		}

		if finish, ok := checkpoint.ParseTime(r.FinishTime); ok && r.DistanceName != "" {
			if checkpoint.IsImplausibleFinish(r.DistanceName, finish) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("bib %s: finish time implausible for %s", r.Bib, r.DistanceName))
			}
			if checkpoint.BeatsWorldRecord(r.DistanceName, r.Gender, finish) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("bib %s: finish time beats the world record for %s", r.Bib, r.DistanceName))
			}
		}

		if r.Bib != "" {
			seenBib[r.Bib]++
		}
		if r.Position != nil {
			seenPosition[*r.Position]++
		}
	}

	var sum float64
	for _, f := range RequiredFields {
		pct := 100 * float64(counts[f]) / float64(report.Total)
		report.FieldStats = append(report.FieldStats, scraper.FieldStats{Field: f, PopulatedPct: pct})
		sum += pct
		if pct < 50 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("field %q populated in %.1f%% of rows", f, pct))
		}
	}
	report.CompletenessScore = sum / float64(len(RequiredFields))
	report.RowsWithAllFields = withAll
	report.RowsWithCheckpoints = withCheckpoints
	if withCheckpoints > 0 {
		report.AvgCheckpointsPerResult = float64(totalCheckpoints) / float64(withCheckpoints)
	}

	for bib, n := range seenBib {
		if n > 1 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("duplicate bib %q (%d rows)", bib, n))
		}
	}
	for pos, n := range seenPosition {
		if n > 1 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("duplicate position %d (%d rows)", pos, n))
		}
	}

	return report
}

// monotonicityViolation converts raw checkpoint readings to the
// persistence model shape just long enough to reuse ValidateMonotonic.
func monotonicityViolation(raw []scraper.RawCheckpoint) (name string, violated bool) {
	cps := make([]model.TimingCheckpoint, len(raw))
	for i, c := range raw {
		cps[i] = model.TimingCheckpoint{
			Name:           c.Name,
			Order:          c.Order,
			CumulativeTime: c.CumulativeTime,
		}
	}
	idx, err := checkpoint.ValidateMonotonic(cps)
	if err == nil {
		return "", false
	}
	return checkpoint.OrderCheckpoints(cps)[idx].Name, true
}
