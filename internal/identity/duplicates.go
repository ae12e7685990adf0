package identity

import (
	"context"
	"strings"

	"github.com/adityakhanna/vouched/internal/entity"
	"github.com/adityakhanna/vouched/internal/namematch"
)

const duplicateSearchLimit = 20

// exactBucketThreshold separates the exact-match bucket from similar names.
const exactBucketThreshold = 0.95

// DuplicateReport groups potential duplicates of a submission for manual
// review.
type DuplicateReport struct {
	ExactMatches       []entity.Service `json:"exact_matches"`
	SimilarNames       []entity.Service `json:"similar_names"`
	PhoneSuffixMatches []entity.Service `json:"phone_suffix_matches"`
}

// Empty reports whether the search found nothing at all.
func (d *DuplicateReport) Empty() bool {
	return len(d.ExactMatches) == 0 && len(d.SimilarNames) == 0 && len(d.PhoneSuffixMatches) == 0
}

// FindPotentialDuplicates searches by name similarity and by phone suffix
// (last 6 digits). It is read-only and intended for review tooling, not the
// upsert path.
func (r *Resolver) FindPotentialDuplicates(ctx context.Context, sub namematch.Submission) (*DuplicateReport, error) {
	report := &DuplicateReport{}

	name := strings.TrimSpace(sub.Name)
	if name != "" {
		candidates, err := r.services.SearchByName(ctx, name, duplicateSearchLimit)
		if err != nil {
			return nil, err
		}
		for _, cand := range candidates {
			match := namematch.LikelySame(name, cand.Name)
			switch {
			case match.Confidence > exactBucketThreshold:
				report.ExactMatches = append(report.ExactMatches, cand)
			case match.IsSimilar:
				report.SimilarNames = append(report.SimilarNames, cand)
			}
		}
	}

	if digits := namematch.NormalizePhone(sub.Phone); len(digits) >= 6 {
		suffix := digits[len(digits)-6:]
		matches, err := r.services.SearchByPhoneSuffix(ctx, suffix, duplicateSearchLimit)
		if err != nil {
			return nil, err
		}
		report.PhoneSuffixMatches = matches
	}

	r.logger.Info("identity.duplicates.searched",
		"query", name,
		"exact", len(report.ExactMatches),
		"similar", len(report.SimilarNames),
		"phone_suffix", len(report.PhoneSuffixMatches),
	)
	return report, nil
}
