package namematch

import "strings"

// serviceTypeKeywords is scanned in order against the concatenation of the
// submitted name and business name; the first hit wins. Multi-word keywords
// come before their single-word cousins.
var serviceTypeKeywords = []struct {
	keyword string
	typ     string
}{
	{"hair stylist", "hair_stylist"},
	{"hairdresser", "hair_stylist"},
	{"barber", "hair_stylist"},
	{"property dealer", "property_dealer"},
	{"real estate", "property_dealer"},
	{"broker", "property_dealer"},
	{"painter", "painter"},
	{"plumber", "plumber"},
	{"electrician", "electrician"},
	{"carpenter", "carpenter"},
	{"mechanic", "mechanic"},
	{"driver", "driver"},
	{"singer", "singer"},
	{"tutor", "tutor"},
	{"cook", "cook"},
	{"caterer", "caterer"},
	{"tailor", "tailor"},
	{"photographer", "photographer"},
}

// ExtractServiceType infers a canonical service type from a name and an
// optional business name. Returns false when no keyword matches.
func ExtractServiceType(name, businessName string) (string, bool) {
	haystack := strings.ToLower(name + " " + businessName)
	for _, kw := range serviceTypeKeywords {
		if strings.Contains(haystack, kw.keyword) {
			return kw.typ, true
		}
	}
	return "", false
}
