package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adityakhanna/vouched/internal/entity"
)

// RecordRepository is the store contract the embedding queue works
// through: fetch target records, fetch enrichment context, write vectors
// back. Enrichment lookups return (nil, nil) when the row is absent.
type RecordRepository interface {
	GetAnnotation(ctx context.Context, id uuid.UUID) (*entity.Annotation, error)
	GetRecommendation(ctx context.Context, id uuid.UUID) (*entity.Recommendation, error)
	CreateAnnotation(ctx context.Context, a *entity.Annotation) (uuid.UUID, error)
	CreateRecommendation(ctx context.Context, rec *entity.Recommendation) (uuid.UUID, error)
	GetPlace(ctx context.Context, id uuid.UUID) (*entity.Place, error)
	GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	SetAnnotationEmbedding(ctx context.Context, id uuid.UUID, vector []float32) error
	SetRecommendationEmbedding(ctx context.Context, id uuid.UUID, vector []float32) error
}

type recordRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewRecordRepository(pool *pgxpool.Pool, logger *slog.Logger) RecordRepository {
	return &recordRepository{db: pool, logger: logger}
}

func (r *recordRepository) GetAnnotation(ctx context.Context, id uuid.UUID) (*entity.Annotation, error) {
	var a entity.Annotation
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, body, tags, service_id, place_id, created_at, updated_at
		 FROM annotations WHERE id = $1`, id).
		Scan(&a.ID, &a.UserID, &a.Body, &a.Tags, &a.ServiceID, &a.PlaceID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *recordRepository) GetRecommendation(ctx context.Context, id uuid.UUID) (*entity.Recommendation, error) {
	var rec entity.Recommendation
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, description, tags, rating, service_id, place_id, created_at, updated_at
		 FROM recommendations WHERE id = $1`, id).
		Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.Tags, &rec.Rating,
			&rec.ServiceID, &rec.PlaceID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepository) CreateAnnotation(ctx context.Context, a *entity.Annotation) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO annotations (id, user_id, body, tags, service_id, place_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
		id, a.UserID, a.Body, a.Tags, a.ServiceID, a.PlaceID)
	if err != nil {
		r.logger.Error("failed to create annotation", "user_id", a.UserID, "error", err)
		return uuid.Nil, err
	}
	a.ID = id
	return id, nil
}

func (r *recordRepository) CreateRecommendation(ctx context.Context, rec *entity.Recommendation) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO recommendations (id, user_id, title, description, tags, rating, service_id, place_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
		id, rec.UserID, rec.Title, rec.Description, rec.Tags, rec.Rating, rec.ServiceID, rec.PlaceID)
	if err != nil {
		r.logger.Error("failed to create recommendation", "user_id", rec.UserID, "error", err)
		return uuid.Nil, err
	}
	rec.ID = id
	return id, nil
}

func (r *recordRepository) GetPlace(ctx context.Context, id uuid.UUID) (*entity.Place, error) {
	var p entity.Place
	err := r.db.QueryRow(ctx,
		`SELECT id, name, address, city FROM places WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Address, &p.City)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *recordRepository) GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var s entity.Service
	err := r.db.QueryRow(ctx,
		`SELECT id, name, phone, email, service_type, business_name, address, website, metadata, created_at, updated_at
		 FROM services WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.ServiceType, &s.BusinessName,
			&s.Address, &s.Website, &s.Metadata, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *recordRepository) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var u entity.User
	err := r.db.QueryRow(ctx,
		`SELECT id, display_name FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *recordRepository) SetAnnotationEmbedding(ctx context.Context, id uuid.UUID, vector []float32) error {
	_, err := r.db.Exec(ctx,
		`UPDATE annotations SET embedding = $2, updated_at = now() WHERE id = $1`, id, vector)
	return err
}

func (r *recordRepository) SetRecommendationEmbedding(ctx context.Context, id uuid.UUID, vector []float32) error {
	_, err := r.db.Exec(ctx,
		`UPDATE recommendations SET embedding = $2, updated_at = now() WHERE id = $1`, id, vector)
	return err
}
