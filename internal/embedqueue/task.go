// Package embedqueue schedules background embedding generation for newly
// created records: bounded concurrency, priority front-insertion, retries
// with a fixed delay, and dead-letter drops after the retry budget.
package embedqueue

import (
	"time"

	"github.com/google/uuid"

	"github.com/adityakhanna/vouched/constants"
)

// Payload is a partial or full snapshot of the target record, captured at
// enqueue time. Missing pieces are fetched from the store when the task
// runs.
type Payload struct {
	UserID    uuid.UUID
	Title     string
	Body      string
	Tags      []string
	Rating    *float64
	ServiceID *uuid.UUID
	PlaceID   *uuid.UUID
	Metadata  map[string]string
}

// incomplete reports whether the snapshot is too thin to embed directly and
// the full record should be fetched instead.
func (p Payload) incomplete() bool {
	if p.UserID == uuid.Nil {
		return true
	}
	return p.Title == "" && p.Body == ""
}

// Task is an ephemeral, in-memory work item. IDs are not stable across
// process restarts; a restart loses all pending tasks.
type Task struct {
	ID         uuid.UUID
	Kind       constants.TargetKind
	RecordID   uuid.UUID
	Payload    Payload
	Priority   constants.Priority
	RetryCount int
	CreatedAt  time.Time
}
