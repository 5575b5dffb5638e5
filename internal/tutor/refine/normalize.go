package refine

import (
	"strings"
	"unicode"
)

// Normalize lowercases s, strips all punctuation, and trims surrounding
// whitespace. Interior whitespace is preserved. Normalize is idempotent.
func Normalize(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.TrimSpace(stripped)
}

// SameContent reports whether a and b are equal after normalization, i.e.
// they differ at most in case, punctuation, and surrounding whitespace.
func SameContent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
