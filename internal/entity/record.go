package entity

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation represents a user-submitted recommendation row for data
// transfer between layers. ServiceID and PlaceID are optional links resolved
// at submission time.
type Recommendation struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags,omitempty"`
	Rating      *float64   `json:"rating,omitempty"`
	ServiceID   *uuid.UUID `json:"service_id,omitempty"`
	PlaceID     *uuid.UUID `json:"place_id,omitempty"`
	Embedding   []float32  `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Annotation represents a short free-form note attached to a place or
// service by a user.
type Annotation struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Body      string     `json:"body"`
	Tags      []string   `json:"tags,omitempty"`
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
	PlaceID   *uuid.UUID `json:"place_id,omitempty"`
	Embedding []float32  `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Place is enrichment context for embedding generation.
type Place struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address *string   `json:"address,omitempty"`
	City    *string   `json:"city,omitempty"`
}

// User is enrichment context for embedding generation.
type User struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}
