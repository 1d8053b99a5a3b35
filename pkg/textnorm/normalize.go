// Package textnorm provides the comparison key used by every search path:
// diacritic-insensitive, case-insensitive, whitespace-trimmed folding, so
// "Café" and "cafe" compare equal.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NFD decomposition separates base characters from combining marks (Mn),
// which are then stripped before recomposing.
var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns the canonical comparison key for s. Total: malformed input
// folds to itself, lower-cased and trimmed.
func Fold(s string) string {
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Contains reports whether needle occurs in haystack under folding.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// Equal reports whether two strings fold to the same key.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
