package matcher

import "testing"

func TestSimilarity_Identical(t *testing.T) {
	if got := similarity("john smith", "john smith"); got != 0 {
		t.Errorf("identical strings should score 0, got %v", got)
	}
}

func TestSimilarity_BothEmpty(t *testing.T) {
	if got := similarity("", ""); got != 0 {
		t.Errorf("two empty strings should score 0 (treated as identical), got %v", got)
	}
}

func TestSimilarity_CompletelyDifferent(t *testing.T) {
	got := similarity("abc", "xyz")
	if got != 1 {
		t.Errorf("disjoint strings should score 1, got %v", got)
	}
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	a := similarity("John Smith", "john smith")
	if a != 0 {
		t.Errorf("case should not affect similarity, got %v", a)
	}
}

func TestSimilarity_Monotonic(t *testing.T) {
	closer := similarity("john smith", "john smyth")
	farther := similarity("john smith", "robert jones")
	if closer >= farther {
		t.Errorf("expected closer match to score lower than farther match: closer=%v farther=%v", closer, farther)
	}
}

func TestSimilarity_IgnoresLocation(t *testing.T) {
	// same substrings in different order/position should still score
	// identically well regardless of where the match falls.
	a := similarity("smith john", "john smith")
	if a >= 0.5 {
		t.Errorf("reordered but fully overlapping words should still score well, got %v", a)
	}
}

func TestSimilarity_ShortOverlapIgnored(t *testing.T) {
	// a single shared letter falls below minMatchLength and is never
	// credited, even between identical single-character inputs.
	a := similarity("a", "a")
	if a != 1 {
		t.Errorf("single-letter overlap is below minMatchLength and should score 1 (no credited match), got %v", a)
	}
	b := similarity("ab", "xy")
	if b != 1 {
		t.Errorf("two-letter strings with no shared run should score 1, got %v", b)
	}
}
