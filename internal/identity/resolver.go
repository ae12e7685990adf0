// Package identity decides whether a freeform service submission refers to
// an already-known provider, and merges or creates accordingly.
package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/adityakhanna/vouched/constants"
	"github.com/adityakhanna/vouched/internal/common"
	"github.com/adityakhanna/vouched/internal/entity"
	"github.com/adityakhanna/vouched/internal/namematch"
	"github.com/adityakhanna/vouched/internal/repository"
)

// conflictConfidence is the fixed trust assigned when the same phone/email
// arrives with an unrelated name. We link rather than reject: a false merge
// is preferred over fragmenting a provider's history.
const conflictConfidence = 0.3

// Resolver performs service identity resolution against a ServiceRepository.
type Resolver struct {
	services repository.ServiceRepository
	policy   constants.ConflictPolicy
	logger   *slog.Logger
}

func NewResolver(services repository.ServiceRepository, policy constants.ConflictPolicy, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = constants.ConflictAutoMerge
	}
	return &Resolver{services: services, policy: policy, logger: logger}
}

// UpsertResult describes what resolution did with a submission.
type UpsertResult struct {
	ServiceID  uuid.UUID               `json:"service_id"`
	IsNew      bool                    `json:"is_new"`
	Action     constants.ResolveAction `json:"action"`
	Confidence float64                 `json:"confidence"`
	Reasoning  string                  `json:"reasoning"`
}

// UpsertService validates a submission, finds an existing service by
// normalized phone (first) or email (second), and creates, updates, or
// merges. All writes happen in one transaction; any failure rolls the whole
// operation back.
func (r *Resolver) UpsertService(ctx context.Context, sub namematch.Submission) (*UpsertResult, error) {
	cleaned, errs, ok := namematch.ValidateSubmission(sub)
	if !ok {
		return nil, common.InvalidArgumentError("invalid service submission: " + strings.Join(errs, "; "))
	}

	var result *UpsertResult
	err := r.services.RunInTx(ctx, func(repo repository.ServiceRepository) error {
		existing, err := r.lookup(ctx, repo, cleaned)
		if err != nil {
			return err
		}
		if existing == nil {
			result, err = r.create(ctx, repo, cleaned)
			return err
		}
		result, err = r.mergeInto(ctx, repo, existing, cleaned)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("identity.upsert.done",
		"service_id", result.ServiceID,
		"action", result.Action,
		"confidence", result.Confidence,
		"is_new", result.IsNew,
	)
	return result, nil
}

// lookup prefers phone over email: phone numbers are shared/reused less
// often than email addresses in this domain.
func (r *Resolver) lookup(ctx context.Context, repo repository.ServiceRepository, sub namematch.Submission) (*entity.Service, error) {
	if sub.Phone != "" {
		svc, err := repo.GetByPhone(ctx, sub.Phone)
		if err != nil || svc != nil {
			return svc, err
		}
	}
	if sub.Email != "" {
		return repo.GetByEmail(ctx, sub.Email)
	}
	return nil, nil
}

func (r *Resolver) create(ctx context.Context, repo repository.ServiceRepository, sub namematch.Submission) (*UpsertResult, error) {
	serviceType := sub.ServiceType
	if serviceType == "" {
		if inferred, ok := namematch.ExtractServiceType(sub.Name, sub.BusinessName); ok {
			serviceType = inferred
		}
	}

	svc := &entity.Service{
		Name:         sub.Name,
		Phone:        optional(sub.Phone),
		Email:        optional(sub.Email),
		ServiceType:  optional(serviceType),
		BusinessName: optional(sub.BusinessName),
		Address:      optional(sub.Address),
		Website:      optional(sub.Website),
		Metadata:     sub.Metadata,
	}
	id, err := repo.Create(ctx, svc)
	if err != nil {
		return nil, err
	}
	if err := repo.AddName(ctx, id, sub.Name, 1.0); err != nil {
		return nil, err
	}
	return &UpsertResult{
		ServiceID:  id,
		IsNew:      true,
		Action:     constants.ActionCreated,
		Confidence: 1.0,
		Reasoning:  "no existing service matched phone or email",
	}, nil
}

func (r *Resolver) mergeInto(ctx context.Context, repo repository.ServiceRepository, existing *entity.Service, sub namematch.Submission) (*UpsertResult, error) {
	match := namematch.LikelySame(sub.Name, existing.Name)
	if !match.IsSimilar {
		return r.conflictMerge(ctx, repo, existing, sub, match)
	}

	if !strings.EqualFold(strings.TrimSpace(sub.Name), strings.TrimSpace(existing.Name)) {
		if err := repo.AddName(ctx, existing.ID, sub.Name, match.Confidence); err != nil {
			return nil, err
		}
		if err := repo.UpdateCanonicalName(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	fields := r.backfillFields(existing, sub)
	action := constants.ActionMerged
	reasoning := "matched existing service; nothing new to add (" + match.Reasoning + ")"
	if len(fields) > 0 {
		if _, err := repo.Update(ctx, existing.ID, fields); err != nil {
			return nil, err
		}
		action = constants.ActionUpdated
		reasoning = "matched existing service; backfilled empty fields (" + match.Reasoning + ")"
	}

	return &UpsertResult{
		ServiceID:  existing.ID,
		IsNew:      false,
		Action:     action,
		Confidence: match.Confidence,
		Reasoning:  reasoning,
	}, nil
}

// backfillFields fills service fields that are currently empty from the
// submission. First write wins: a populated field is never overwritten.
func (r *Resolver) backfillFields(existing *entity.Service, sub namematch.Submission) map[string]any {
	fields := make(map[string]any)

	if isEmpty(existing.ServiceType) {
		serviceType := sub.ServiceType
		if serviceType == "" {
			if inferred, ok := namematch.ExtractServiceType(sub.Name, sub.BusinessName); ok {
				serviceType = inferred
			}
		}
		if serviceType != "" {
			fields["service_type"] = serviceType
		}
	}
	if isEmpty(existing.BusinessName) && sub.BusinessName != "" {
		fields["business_name"] = sub.BusinessName
	}
	if isEmpty(existing.Address) && sub.Address != "" {
		fields["address"] = sub.Address
	}
	if isEmpty(existing.Website) && sub.Website != "" {
		fields["website"] = sub.Website
	}
	if isEmpty(existing.Phone) && sub.Phone != "" {
		fields["phone"] = sub.Phone
	}
	if isEmpty(existing.Email) && sub.Email != "" {
		fields["email"] = sub.Email
	}
	return fields
}

// conflictMerge handles the same-identifier, unrelated-name case. The
// submission is linked as a low-trust variant; canonical name and all other
// fields stay untouched.
func (r *Resolver) conflictMerge(ctx context.Context, repo repository.ServiceRepository, existing *entity.Service, sub namematch.Submission, match namematch.Match) (*UpsertResult, error) {
	reasoning := "possible conflict: different name for same identifier (" + match.Reasoning + ")"
	r.logger.Warn("identity.upsert.conflict",
		"service_id", existing.ID,
		"existing_name", existing.Name,
		"submitted_name", sub.Name,
		"policy", string(r.policy),
	)

	if err := repo.AddName(ctx, existing.ID, sub.Name, conflictConfidence); err != nil {
		return nil, err
	}
	if r.policy == constants.ConflictFlagForReview {
		if err := repo.FlagConflict(ctx, existing.ID, sub.Name, reasoning); err != nil {
			return nil, err
		}
	}

	return &UpsertResult{
		ServiceID:  existing.ID,
		IsNew:      false,
		Action:     constants.ActionMerged,
		Confidence: conflictConfidence,
		Reasoning:  reasoning,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isEmpty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
