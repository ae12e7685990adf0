package namematch

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Thresholds for the name-identity decision.
const (
	similarThreshold   = 0.85
	variationScore     = 0.95
	initialsScore      = 0.90
	containmentScore   = 0.85
	nonExactConfidence = 0.95
)

// Match is the outcome of comparing two names for likely identity.
type Match struct {
	IsSimilar  bool
	Confidence float64
	Reasoning  string
}

// LikelySame decides whether two names probably refer to the same person.
// Exact normalized equality is the only way to get confidence 1.0; every
// other positive match is capped at 0.95.
func LikelySame(a, b string) Match {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return Match{IsSimilar: false, Confidence: 0, Reasoning: "one or both names empty"}
	}

	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return Match{IsSimilar: true, Confidence: 1.0, Reasoning: "exact match"}
	}

	score := Similarity(na, nb)
	reasoning := fmt.Sprintf("edit-distance similarity %.2f", score)

	if sharesVariation(na, nb) {
		if variationScore > score {
			score = variationScore
		}
		reasoning = "matching name variation (token order or abbreviated surname)"
	}

	// "Ramesh" and "Ramesh Kumar" share a root token and are usually the
	// same provider submitted with and without the family name.
	if tokenSubset(na, nb) && containmentScore > score {
		score = containmentScore
		reasoning = "one name contains all tokens of the other"
	}

	// Short names are treated as initialisms: "R.K." and "RK" are the same.
	if utf8.RuneCountInString(na) <= 3 && utf8.RuneCountInString(nb) <= 3 {
		ia, ib := initialsOf(na), initialsOf(nb)
		if ia != "" && ia == ib && utf8.RuneCountInString(ia) > 1 {
			if initialsScore > score {
				score = initialsScore
			}
			reasoning = "matching initials"
		}
	}

	confidence := score
	if confidence > nonExactConfidence {
		confidence = nonExactConfidence
	}
	return Match{
		IsSimilar:  score >= similarThreshold,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}

// tokenSubset reports whether the shorter name's tokens all appear in the
// longer name.
func tokenSubset(a, b string) bool {
	ta, tb := strings.Fields(a), strings.Fields(b)
	if len(ta) > len(tb) {
		ta, tb = tb, ta
	}
	if len(ta) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		set[t] = struct{}{}
	}
	for _, t := range ta {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func sharesVariation(a, b string) bool {
	va := NameVariations(a)
	vb := make(map[string]struct{})
	for _, v := range NameVariations(b) {
		vb[v] = struct{}{}
	}
	for _, v := range va {
		if _, ok := vb[v]; ok {
			return true
		}
	}
	return false
}

// initialsOf strips everything but letters and digits, so punctuated
// initialisms compare equal to bare ones.
func initialsOf(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
