package constants

// ResolveAction is the canonical outcome of a service identity resolution.
type ResolveAction string

// Stable values (returned to callers and logged as-is).
const (
	ActionCreated ResolveAction = "created" // no existing service matched; a new row was inserted
	ActionUpdated ResolveAction = "updated" // matched and at least one empty field was backfilled
	ActionMerged  ResolveAction = "merged"  // matched with nothing new to add, or a name conflict linked at low trust
)

// ConflictPolicy decides what happens when a submission shares a phone/email
// with an existing service but carries an unrelated name.
type ConflictPolicy string

const (
	// ConflictAutoMerge links the submission as a low-trust name variant.
	ConflictAutoMerge ConflictPolicy = "auto-merge"
	// ConflictFlagForReview links it and additionally queues a review row.
	ConflictFlagForReview ConflictPolicy = "flag-for-review"
)
