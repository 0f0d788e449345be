package checkpoint

import (
	"reflect"
	"testing"

	"github.com/raceops/resultsync/internal/model"
)

func TestNormalizeCheckpointName(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"T1", "T1"},
		{"transition 1", "T1"},
		{"Transition 2", "T2"},
		{"SWIM", "swim"},
		{"Cycle", "bike"},
		{"Run", "run"},
		{"run2", "run2"},
		{"Final", "finish"},
		{"End", "finish"},
		{"5 km", "5km"},
		{"5km", "5km"},
		{"10 k", "10km"},
		{"3 miles", "3mi"},
		{"unrecognized label", "unrecognized label"},
	}

	for _, tt := range tests {
		if got := NormalizeCheckpointName(tt.raw); got != tt.expected {
			t.Errorf("NormalizeCheckpointName(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}

func TestNormalizeCheckpointName_Idempotent(t *testing.T) {
	for _, raw := range []string{"5 km", "T1", "Transition 2", "Final"} {
		once := NormalizeCheckpointName(raw)
		twice := NormalizeCheckpointName(once)
		if once != twice {
			t.Errorf("NormalizeCheckpointName not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestDetectRaceType(t *testing.T) {
	tests := []struct {
		name     string
		expected model.RaceType
	}{
		{"Olympic Triathlon", model.RaceTypeTriathlon},
		{"Ironman 70.3", model.RaceTypeTriathlon},
		{"Sprint Duathlon", model.RaceTypeDuathlon},
		{"4x400m Relay", model.RaceTypeRelay},
		{"Ekiden Marathon", model.RaceTypeRelay},
		{"Ultra 50K", model.RaceTypeUltra},
		{"100K Trail Race", model.RaceTypeUltra},
		{"10K Road Race", model.RaceTypeRunning},
		{"Half Marathon", model.RaceTypeRunning},
	}

	for _, tt := range tests {
		if got := DetectRaceType(tt.name); got != tt.expected {
			t.Errorf("DetectRaceType(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestExpectedCheckpoints_Running(t *testing.T) {
	got := ExpectedCheckpoints(model.RaceTypeRunning, 21097)
	want := []string{"5km", "10km", "15km", "20km", "finish"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpectedCheckpoints(running, 21097) = %v, want %v", got, want)
	}
}

func TestExpectedCheckpoints_Triathlon(t *testing.T) {
	got := ExpectedCheckpoints(model.RaceTypeTriathlon, 0)
	want := []string{"swim", "T1", "bike", "T2", "run", "finish"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpectedCheckpoints(triathlon, 0) = %v, want %v", got, want)
	}
}

func TestExpectedCheckpoints_Relay(t *testing.T) {
	got := ExpectedCheckpoints(model.RaceTypeRelay, 20000)
	want := []string{"leg1", "leg2", "leg3", "leg4", "finish"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpectedCheckpoints(relay, 20000) = %v, want %v", got, want)
	}
}

func TestExpectedCheckpoints_Ultra(t *testing.T) {
	got := ExpectedCheckpoints(model.RaceTypeUltra, 50000)
	want := []string{"10km", "20km", "30km", "40km", "finish"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpectedCheckpoints(ultra, 50000) = %v, want %v", got, want)
	}
}

func TestDistanceMetersFor(t *testing.T) {
	tests := []struct {
		name     string
		expected int
	}{
		{"5K", 5000},
		{"Half Marathon", 21097},
		{"Boston Marathon", 42195},
		{"Sprint Triathlon Swim", 750},
		{"21km", 21000},
		{"13.1 Mile Race", 0}, // fractional markers are not parsed
		{"10km", 10000},
		{"3 miles", 4828},
		{"unrecognized distance", 0},
	}

	for _, tt := range tests {
		if got := DistanceMetersFor(tt.name); got != tt.expected {
			t.Errorf("DistanceMetersFor(%q) = %d, want %d", tt.name, got, tt.expected)
		}
	}
}

func TestCheckpointTypeFor(t *testing.T) {
	tests := []struct {
		normalized string
		expected   model.CheckpointType
	}{
		{"T1", model.CheckpointTransition},
		{"T2", model.CheckpointTransition},
		{"swim", model.CheckpointDiscipline},
		{"bike", model.CheckpointDiscipline},
		{"run", model.CheckpointDiscipline},
		{"run2", model.CheckpointDiscipline},
		{"5km", model.CheckpointDistance},
		{"finish", model.CheckpointDistance},
	}

	for _, tt := range tests {
		if got := CheckpointTypeFor(tt.normalized); got != tt.expected {
			t.Errorf("CheckpointTypeFor(%q) = %q, want %q", tt.normalized, got, tt.expected)
		}
	}
}
