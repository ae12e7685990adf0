package namematch

import (
	"sort"
	"strings"
)

// surnameAbbreviations maps common surnames to the short forms people
// actually write them as. Submissions in this domain routinely abbreviate
// family names ("Ramesh Kumar" -> "Ramesh Kr").
var surnameAbbreviations = map[string]string{
	"kumar":   "kr",
	"chandra": "ch",
	"prasad":  "pd",
	"sharma":  "shr",
	"verma":   "vr",
	"devi":    "dv",
}

// NameVariations expands a name into the set of spellings that should be
// treated as the same person: the normalized original, the reversed token
// order for two-token names, and every surname-abbreviation substitution of
// those. The result is sorted for determinism.
func NameVariations(name string) []string {
	base := Normalize(name)
	if base == "" {
		return nil
	}

	bases := []string{base}
	tokens := strings.Fields(base)
	if len(tokens) == 2 {
		// "last first" ordering is common for two-token names.
		bases = append(bases, tokens[1]+" "+tokens[0])
	}

	set := make(map[string]struct{}, len(bases)*2)
	for _, b := range bases {
		set[b] = struct{}{}
	}

	// Substitute abbreviated surnames in every base ordering.
	for _, variant := range bases {
		vt := strings.Fields(variant)
		for i, tok := range vt {
			abbr, ok := surnameAbbreviations[tok]
			if !ok {
				continue
			}
			sub := make([]string, len(vt))
			copy(sub, vt)
			sub[i] = abbr
			set[strings.Join(sub, " ")] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
