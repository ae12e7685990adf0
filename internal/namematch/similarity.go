// Package namematch provides pure string-similarity heuristics for service
// provider names. Nothing in this package has state or does I/O.
package namematch

import (
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

var distanceParams = levenshtein.NewParams()

// Distance returns the classic Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	return levenshtein.Distance(a, b, distanceParams)
}

// Similarity scores two names in [0,1]. Comparison is case-insensitive and
// trimmed; 1.0 means equal after normalization, 0 means either input is
// empty. Otherwise 1 − distance/max(len). Symmetric by construction.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(na)
	if l := utf8.RuneCountInString(nb); l > maxLen {
		maxLen = l
	}
	return 1.0 - float64(Distance(na, nb))/float64(maxLen)
}

// Normalize lowercases, trims, and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
