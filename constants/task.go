package constants

// TargetKind identifies the record type an embedding task operates on.
type TargetKind string

const (
	KindAnnotation     TargetKind = "annotation"
	KindRecommendation TargetKind = "recommendation"
)

// Priority orders embedding tasks at enqueue time. High-priority tasks are
// inserted at the front of the queue; everything else appends.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)
