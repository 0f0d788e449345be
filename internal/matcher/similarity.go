package matcher

import "strings"

// minMatchLength is the shortest common substring the scorer credits;
// shorter coincidental overlaps (single letters) are ignored.
const minMatchLength = 2

// similarity is a character-level scorer over two strings, lower is more
// similar, 0 means identical, 1 means no shared substring of at least
// minMatchLength. It repeatedly finds the longest common substring
// between what remains of each input and removes it from both sides,
// then scores on total matched characters over combined length - the
// same recursive-longest-match idea behind a quick ratio scorer, with no
// external dependency.
func similarity(a, b string) float64 {
	ra, rb := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	totalLen := len(ra) + len(rb)
	if totalLen == 0 {
		return 0
	}

	matched := 0
	for {
		aStart, bStart, length := longestCommonSubstring(ra, rb)
		if length < minMatchLength {
			break
		}
		matched += length * 2
		ra = removeRange(ra, aStart, length)
		rb = removeRange(rb, bStart, length)
	}

	return 1 - float64(matched)/float64(totalLen)
}

// longestCommonSubstring finds the longest run common to both inputs and
// returns its start index within a, its start index within b, and its
// length. Ties keep the first occurrence found scanning a left to right.
func longestCommonSubstring(a, b []rune) (aStart, bStart, length int) {
	best := 0
	bestA, bestB := -1, -1

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > best {
				best = k
				bestA, bestB = i, j
			}
		}
	}

	if bestA < 0 {
		return 0, 0, 0
	}
	return bestA, bestB, best
}

func removeRange(s []rune, start, length int) []rune {
	out := make([]rune, 0, len(s)-length)
	out = append(out, s[:start]...)
	out = append(out, s[start+length:]...)
	return out
}
