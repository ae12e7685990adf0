package entity

import (
	"time"

	"github.com/google/uuid"
)

// Service represents a deduplicated real-world provider for data transfer
// between layers. A service is uniquely identified by phone OR email; at
// least one is always present. Name always reflects the highest-scoring
// known variant.
type Service struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Phone        *string           `json:"phone,omitempty"`
	Email        *string           `json:"email,omitempty"`
	ServiceType  *string           `json:"service_type,omitempty"`
	BusinessName *string           `json:"business_name,omitempty"`
	Address      *string           `json:"address,omitempty"`
	Website      *string           `json:"website,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ServiceNameVariant is one observed spelling of a service's name.
// Canonical name = argmax(frequency × confidence) over a service's variants,
// ties broken by frequency then confidence.
type ServiceNameVariant struct {
	ID         uuid.UUID `json:"id"`
	ServiceID  uuid.UUID `json:"service_id"`
	Name       string    `json:"name"`
	Frequency  int       `json:"frequency"`
	Confidence float64   `json:"confidence"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Score is the canonical-name ranking key for a variant.
func (v ServiceNameVariant) Score() float64 {
	return float64(v.Frequency) * v.Confidence
}
