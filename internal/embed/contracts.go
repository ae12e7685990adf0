// Package embed defines the embedding-generation contract the task queue
// calls into, plus a shared JSON HTTP helper for provider clients.
package embed

import "context"

// Generator turns composite record text into a vector. Implementations are
// external, rate-limited services; transient failures are expected and
// absorbed by the queue's retry logic.
type Generator interface {
	AnnotationEmbedding(ctx context.Context, text string) ([]float32, error)
	RecommendationEmbedding(ctx context.Context, text string) ([]float32, error)
}
