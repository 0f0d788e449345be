// Package normalize provides the canonical name form used for equality and
// similarity comparisons across athletes and race results.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Name lower-cases, strips Unicode combining marks (via NFD decomposition),
// strips non-alphanumeric/whitespace runes, and collapses whitespace.
// Idempotent: Name(Name(x)) == Name(x).
func Name(s string) string {
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}

	lowered := strings.ToLower(decomposed)

	var b strings.Builder
	b.Grow(len(lowered))
	lastWasSpace := false
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastWasSpace = false
		case unicode.IsSpace(r):
			if !lastWasSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			lastWasSpace = true
		default:
			// drop punctuation entirely, same as non-alphanumeric
		}
	}

	return strings.TrimSpace(b.String())
}

// Contains reports whether the normalized form of haystack contains the
// normalized form of needle as a substring.
func Contains(haystack, needle string) bool {
	return strings.Contains(Name(haystack), Name(needle))
}
