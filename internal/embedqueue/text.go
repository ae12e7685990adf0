package embedqueue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adityakhanna/vouched/constants"
	"github.com/adityakhanna/vouched/internal/entity"
)

type enrichment struct {
	place   *entity.Place
	service *entity.Service
	user    *entity.User
}

// compositeText flattens the record snapshot and its enrichment context
// into the text the embedding model sees. Order is fixed so the same record
// always embeds the same way.
func compositeText(kind constants.TargetKind, payload Payload, e enrichment) string {
	var parts []string

	if payload.Title != "" {
		parts = append(parts, payload.Title)
	}
	if payload.Body != "" {
		parts = append(parts, payload.Body)
	}
	if len(payload.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(payload.Tags, ", "))
	}
	if payload.Rating != nil {
		parts = append(parts, fmt.Sprintf("rating: %.1f", *payload.Rating))
	}

	if e.place != nil {
		line := "place: " + e.place.Name
		if e.place.Address != nil && *e.place.Address != "" {
			line += ", " + *e.place.Address
		}
		if e.place.City != nil && *e.place.City != "" {
			line += ", " + *e.place.City
		}
		parts = append(parts, line)
	}

	if e.service != nil {
		line := "service: " + e.service.Name
		if e.service.ServiceType != nil && *e.service.ServiceType != "" {
			line += " (" + *e.service.ServiceType + ")"
		}
		if e.service.Address != nil && *e.service.Address != "" {
			line += ", " + *e.service.Address
		}
		parts = append(parts, line)
	}

	if e.user != nil && e.user.DisplayName != "" {
		switch kind {
		case constants.KindRecommendation:
			parts = append(parts, "recommended by "+e.user.DisplayName)
		default:
			parts = append(parts, "noted by "+e.user.DisplayName)
		}
	}

	if len(payload.Metadata) > 0 {
		keys := make([]string, 0, len(payload.Metadata))
		for k := range payload.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		kv := make([]string, 0, len(keys))
		for _, k := range keys {
			kv = append(kv, k+"="+payload.Metadata[k])
		}
		parts = append(parts, strings.Join(kv, " "))
	}

	return strings.Join(parts, "\n")
}
