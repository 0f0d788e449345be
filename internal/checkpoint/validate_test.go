package checkpoint

import (
	"testing"

	"github.com/raceops/resultsync/internal/model"
)

func TestValidateMonotonic_NoViolation(t *testing.T) {
	cps := []model.TimingCheckpoint{
		{Name: "10km", Order: 2, CumulativeTime: "50:00"},
		{Name: "5km", Order: 1, CumulativeTime: "25:00"},
		{Name: "finish", Order: 3, CumulativeTime: "1:40:00"},
	}

	idx, err := ValidateMonotonic(cps)
	if err != nil {
		t.Fatalf("expected no violation, got %v at index %d", err, idx)
	}
}

func TestValidateMonotonic_Violation(t *testing.T) {
	cps := []model.TimingCheckpoint{
		{Name: "5km", Order: 1, CumulativeTime: "25:00"},
		{Name: "10km", Order: 2, CumulativeTime: "20:00"}, // earlier than the 5km split
		{Name: "finish", Order: 3, CumulativeTime: "1:40:00"},
	}

	idx, err := ValidateMonotonic(cps)
	if err == nil {
		t.Fatal("expected a monotonicity violation")
	}
	if cps[idx].Name != "10km" {
		t.Errorf("expected violation at 10km entry, got index %d (%s)", idx, cps[idx].Name)
	}
}

func TestValidateMonotonic_SkipsUnparsableTimes(t *testing.T) {
	cps := []model.TimingCheckpoint{
		{Name: "5km", Order: 1, CumulativeTime: "25:00"},
		{Name: "chip-error", Order: 2, CumulativeTime: "n/a"},
		{Name: "finish", Order: 3, CumulativeTime: "1:40:00"},
	}

	if _, err := ValidateMonotonic(cps); err != nil {
		t.Errorf("expected unparsable entries to be skipped, got %v", err)
	}
}

func TestOrderCheckpoints(t *testing.T) {
	cps := []model.TimingCheckpoint{
		{Name: "finish", Order: 3},
		{Name: "5km", Order: 1},
		{Name: "10km", Order: 2},
	}

	ordered := OrderCheckpoints(cps)
	want := []string{"5km", "10km", "finish"}
	for i, name := range want {
		if ordered[i].Name != name {
			t.Errorf("ordered[%d] = %q, want %q", i, ordered[i].Name, name)
		}
	}

	// original slice must be untouched
	if cps[0].Name != "finish" {
		t.Error("OrderCheckpoints must not mutate its input")
	}
}
