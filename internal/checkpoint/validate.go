package checkpoint

import (
	"fmt"
	"sort"
	"time"

	"github.com/raceops/resultsync/internal/model"
)

// OrderCheckpoints sorts checkpoints by their declared Order field.
func OrderCheckpoints(cps []model.TimingCheckpoint) []model.TimingCheckpoint {
	sorted := make([]model.TimingCheckpoint, len(cps))
	copy(sorted, cps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// ValidateMonotonic checks that cumulative checkpoint times are
// non-decreasing by Order. Returns the index of the first violation within
// the Order-sorted sequence (as returned by OrderCheckpoints), or -1.
func ValidateMonotonic(cps []model.TimingCheckpoint) (violationIndex int, err error) {
	ordered := OrderCheckpoints(cps)
	var prev time.Duration
	havePrev := false
	for i, cp := range ordered {
		cur, ok := ParseTime(cp.CumulativeTime)
		if !ok {
			continue // unparsable cumulative time is a parsing concern, not a monotonicity one
		}
		if havePrev && cur < prev {
			return i, fmt.Errorf("checkpoint %q (order %d) cumulative time %s precedes prior checkpoint", cp.Name, cp.Order, cp.CumulativeTime)
		}
		prev, havePrev = cur, true
	}
	return -1, nil
}
