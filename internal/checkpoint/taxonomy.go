// Package checkpoint provides the canonical checkpoint vocabulary and
// validation helpers shared by every organiser scraper.
package checkpoint

import (
	"strconv"
	"strings"

	"github.com/raceops/resultsync/internal/model"
)

// DistanceCatalogue maps named distances to metres.
var DistanceCatalogue = map[string]int{
	"5k":              5000,
	"10k":             10000,
	"15k":             15000,
	"half marathon":   21097,
	"marathon":        42195,
	"ultra 50k":       50000,
	"ultra 100k":      100000,
	"sprint triathlon swim": 750,
	"sprint triathlon bike": 20000,
	"sprint triathlon run":  5000,
	"olympic triathlon swim": 1500,
	"olympic triathlon bike": 40000,
	"olympic triathlon run":  10000,
	"duathlon run1": 5000,
	"duathlon bike": 20000,
	"duathlon run2": 2500,
}

// ExpectedCheckpoints returns the ordered checkpoint names expected for a
// race type. Triathlon and duathlon lists are fixed; relay legs (one per
// 5000 m) and running/ultra km markers are derived from distanceMeters.
func ExpectedCheckpoints(raceType model.RaceType, distanceMeters int) []string {
	switch raceType {
	case model.RaceTypeTriathlon:
		return []string{"swim", "T1", "bike", "T2", "run", "finish"}
	case model.RaceTypeDuathlon:
		return []string{"run1", "T1", "bike", "T2", "run2", "finish"}
	case model.RaceTypeRelay:
		legs := distanceMeters / 5000
		if legs < 1 {
			legs = 1
		}
		out := make([]string, 0, legs+1)
		for i := 1; i <= legs; i++ {
			out = append(out, "leg"+strconv.Itoa(i))
		}
		out = append(out, "finish")
		return out
	case model.RaceTypeUltra:
		return ultraKmMarkers(distanceMeters)
	default: // running
		return kmMarkers(distanceMeters)
	}
}

func kmMarkers(distanceMeters int) []string {
	km := distanceMeters / 1000
	out := make([]string, 0, km/5+2)
	for d := 5; d < km; d += 5 {
		out = append(out, strconv.Itoa(d)+"km")
	}
	return append(out, "finish")
}

func ultraKmMarkers(distanceMeters int) []string {
	km := distanceMeters / 1000
	out := make([]string, 0, km/10+2)
	for d := 10; d < km; d += 10 {
		out = append(out, strconv.Itoa(d)+"km")
	}
	return append(out, "finish")
}

// NormalizeCheckpointName lower-cases and maps raw organiser checkpoint
// labels to the canonical vocabulary.
//
//	NormalizeCheckpointName("5 km") == NormalizeCheckpointName("5km") == "5km"
//	NormalizeCheckpointName("T1") == NormalizeCheckpointName("transition 1") == "T1"
func NormalizeCheckpointName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")

	switch {
	case s == "transition 1" || s == "t1":
		return "T1"
	case s == "transition 2" || s == "t2":
		return "T2"
	case s == "swim":
		return "swim"
	case s == "bike" || s == "cycle":
		return "bike"
	case s == "run" || s == "run1":
		return "run"
	case s == "run2":
		return "run2"
	case s == "finish" || s == "final" || s == "end":
		return "finish"
	}

	if n, unit, ok := parseDistanceMarker(s); ok {
		switch unit {
		case "km", "k":
			return strconv.Itoa(n) + "km"
		case "mi", "mile", "miles":
			return strconv.Itoa(n) + "mi"
		}
	}

	return s
}

// parseDistanceMarker accepts "5 km", "5km", "5 k", "5mi", "5 miles".
func parseDistanceMarker(s string) (num int, unit string, ok bool) {
	s = strings.ReplaceAll(s, " ", "")
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, "", false
	}
	rest := s[i:]
	switch rest {
	case "km", "k":
		return n, "km", true
	case "mi", "mile", "miles":
		return n, "mi", true
	}
	return 0, "", false
}

// DistanceMetersFor resolves a free-form distance name to metres, checking
// the catalogue first, then a marathon/half-marathon substring match, then
// a name that is itself an "Nkm"/"Nmi" marker (spaces ignored, so "10 km"
// matches but "10km Road Race" does not). Returns 0 when nothing matches.
func DistanceMetersFor(name string) int {
	s := strings.ToLower(strings.TrimSpace(name))
	if m, ok := DistanceCatalogue[s]; ok {
		return m
	}

	switch {
	case strings.Contains(s, "half marathon") || strings.Contains(s, "half-marathon"):
		return DistanceCatalogue["half marathon"]
	case strings.Contains(s, "marathon"):
		return DistanceCatalogue["marathon"]
	}

	if n, unit, ok := parseDistanceMarker(s); ok {
		switch unit {
		case "km", "k":
			return n * 1000
		case "mi", "mile", "miles":
			return int(float64(n) * 1609.34)
		}
	}
	return 0
}

// CheckpointTypeFor classifies a normalized checkpoint name into the
// distance/transition/discipline taxonomy NormalizeCheckpointName feeds.
func CheckpointTypeFor(normalized string) model.CheckpointType {
	switch normalized {
	case "T1", "T2":
		return model.CheckpointTransition
	case "swim", "bike", "run", "run2":
		return model.CheckpointDiscipline
	default:
		return model.CheckpointDistance
	}
}

// DetectRaceType classifies a free-form distance name via substring rules,
// the same cascade shape as a lower-case-then-Contains classifier.
func DetectRaceType(distanceName string) model.RaceType {
	s := strings.ToLower(distanceName)
	switch {
	case strings.Contains(s, "triathlon") || strings.Contains(s, "ironman") || strings.Contains(s, "tri"):
		return model.RaceTypeTriathlon
	case strings.Contains(s, "duathlon"):
		return model.RaceTypeDuathlon
	case strings.Contains(s, "relay") || strings.Contains(s, "ekiden"):
		return model.RaceTypeRelay
	case strings.Contains(s, "ultra") || strings.Contains(s, "50k") || strings.Contains(s, "100k"):
		return model.RaceTypeUltra
	default:
		return model.RaceTypeRunning
	}
}
