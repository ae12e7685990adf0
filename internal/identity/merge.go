package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/adityakhanna/vouched/internal/common"
	"github.com/adityakhanna/vouched/internal/repository"
)

// MergeServices folds the secondary service into the primary: all name
// variants and record references move over, the primary's canonical name is
// recomputed, and the secondary row is deleted. Atomic; any failure rolls
// everything back.
func (r *Resolver) MergeServices(ctx context.Context, primaryID, secondaryID uuid.UUID) error {
	if primaryID == secondaryID {
		return common.InvalidArgumentError("cannot merge a service into itself")
	}

	err := r.services.RunInTx(ctx, func(repo repository.ServiceRepository) error {
		primary, err := repo.GetByID(ctx, primaryID)
		if err != nil {
			return err
		}
		if primary == nil {
			return common.NotFoundError("primary service not found")
		}
		secondary, err := repo.GetByID(ctx, secondaryID)
		if err != nil {
			return err
		}
		if secondary == nil {
			return common.NotFoundError("secondary service not found")
		}

		if err := repo.ReassignReferences(ctx, secondaryID, primaryID); err != nil {
			return err
		}
		if err := repo.UpdateCanonicalName(ctx, primaryID); err != nil {
			return err
		}
		return repo.Delete(ctx, secondaryID)
	})
	if err != nil {
		r.logger.Error("identity.merge.failed",
			"primary_id", primaryID, "secondary_id", secondaryID, "error", err)
		return err
	}

	r.logger.Info("identity.merge.done", "primary_id", primaryID, "secondary_id", secondaryID)
	return nil
}
