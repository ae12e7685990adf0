// Package recommend is the submission front door: it resolves the provider
// a record talks about, stores the record, and schedules embedding
// generation in the background.
package recommend

import (
	"context"
	"strings"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adityakhanna/vouched/constants"
	"github.com/adityakhanna/vouched/internal/embedqueue"
	"github.com/adityakhanna/vouched/internal/entity"
	"github.com/adityakhanna/vouched/internal/identity"
	"github.com/adityakhanna/vouched/internal/namematch"
	"github.com/adityakhanna/vouched/internal/repository"
)

// IdentityResolver resolves a provider submission to a service id.
type IdentityResolver interface {
	UpsertService(ctx context.Context, sub namematch.Submission) (*identity.UpsertResult, error)
}

// Enqueuer schedules background embedding work. Enqueue never blocks.
type Enqueuer interface {
	Enqueue(kind constants.TargetKind, recordID uuid.UUID, payload embedqueue.Payload, priority constants.Priority) uuid.UUID
}

// Service handles recommendation and annotation submission business logic.
type Service struct {
	records  repository.RecordRepository
	resolver IdentityResolver
	queue    Enqueuer
	logger   *slog.Logger
}

// NewService creates a new submission service.
func NewService(records repository.RecordRepository, resolver IdentityResolver, q Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		records:  records,
		resolver: resolver,
		queue:    q,
		logger:   logger,
	}
}

// SubmitRecommendationRequest represents recommendation submission parameters.
type SubmitRecommendationRequest struct {
	UserID   string
	Title    string
	Body     string
	Tags     []string
	Rating   *float64
	PlaceID  string
	Provider *namematch.Submission
	Priority constants.Priority
	Metadata map[string]string
}

// SubmitResult reports the stored record and the scheduled embedding task.
type SubmitResult struct {
	RecordID   uuid.UUID              `json:"record_id"`
	TaskID     uuid.UUID              `json:"task_id"`
	Resolution *identity.UpsertResult `json:"resolution,omitempty"`
}

// SubmitRecommendation resolves the named provider (if any), stores the
// recommendation, and enqueues embedding generation. The embedding runs in
// the background; the caller gets the record id back immediately.
func (s *Service) SubmitRecommendation(ctx context.Context, req SubmitRecommendationRequest) (*SubmitResult, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		s.logger.Error("invalid user_id for recommendation", "user_id", req.UserID, "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" && body == "" {
		s.logger.Error("recommendation missing content", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "title or body is required")
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 5) {
		return nil, status.Error(codes.InvalidArgument, "rating must be between 0 and 5")
	}

	placeID, err := parseOptionalID(req.PlaceID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "place_id must be a UUID")
	}

	var resolution *identity.UpsertResult
	var serviceID *uuid.UUID
	if req.Provider != nil {
		resolution, err = s.resolver.UpsertService(ctx, *req.Provider)
		if err != nil {
			s.logger.Error("provider resolution failed", "user_id", userID, "error", err)
			return nil, err
		}
		serviceID = &resolution.ServiceID
	}

	rec := &entity.Recommendation{
		UserID:      userID,
		Title:       title,
		Description: body,
		Tags:        req.Tags,
		Rating:      req.Rating,
		ServiceID:   serviceID,
		PlaceID:     placeID,
	}
	recordID, err := s.records.CreateRecommendation(ctx, rec)
	if err != nil {
		s.logger.Error("failed to store recommendation", "user_id", userID, "error", err)
		return nil, status.Error(codes.Internal, "failed to store recommendation")
	}

	taskID := s.queue.Enqueue(constants.KindRecommendation, recordID, embedqueue.Payload{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Tags:      req.Tags,
		Rating:    req.Rating,
		ServiceID: serviceID,
		PlaceID:   placeID,
		Metadata:  req.Metadata,
	}, priorityOrDefault(req.Priority))

	s.logger.Info("recommendation submitted",
		"user_id", userID, "record_id", recordID, "task_id", taskID,
		"has_provider", req.Provider != nil)

	return &SubmitResult{RecordID: recordID, TaskID: taskID, Resolution: resolution}, nil
}

// AddAnnotationRequest represents annotation submission parameters.
type AddAnnotationRequest struct {
	UserID   string
	Body     string
	Tags     []string
	PlaceID  string
	Provider *namematch.Submission
	Priority constants.Priority
	Metadata map[string]string
}

// AddAnnotation stores a short note against a place or provider and
// schedules its embedding.
func (s *Service) AddAnnotation(ctx context.Context, req AddAnnotationRequest) (*SubmitResult, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		s.logger.Error("invalid user_id for annotation", "user_id", req.UserID, "error", err)
		return nil, status.Error(codes.InvalidArgument, "user_id must be a UUID")
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		s.logger.Error("annotation missing body", "user_id", userID)
		return nil, status.Error(codes.InvalidArgument, "body is required")
	}

	placeID, err := parseOptionalID(req.PlaceID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "place_id must be a UUID")
	}

	var resolution *identity.UpsertResult
	var serviceID *uuid.UUID
	if req.Provider != nil {
		resolution, err = s.resolver.UpsertService(ctx, *req.Provider)
		if err != nil {
			s.logger.Error("provider resolution failed", "user_id", userID, "error", err)
			return nil, err
		}
		serviceID = &resolution.ServiceID
	}

	ann := &entity.Annotation{
		UserID:    userID,
		Body:      body,
		Tags:      req.Tags,
		ServiceID: serviceID,
		PlaceID:   placeID,
	}
	recordID, err := s.records.CreateAnnotation(ctx, ann)
	if err != nil {
		s.logger.Error("failed to store annotation", "user_id", userID, "error", err)
		return nil, status.Error(codes.Internal, "failed to store annotation")
	}

	taskID := s.queue.Enqueue(constants.KindAnnotation, recordID, embedqueue.Payload{
		UserID:    userID,
		Body:      body,
		Tags:      req.Tags,
		ServiceID: serviceID,
		PlaceID:   placeID,
		Metadata:  req.Metadata,
	}, priorityOrDefault(req.Priority))

	s.logger.Info("annotation submitted",
		"user_id", userID, "record_id", recordID, "task_id", taskID,
		"has_provider", req.Provider != nil)

	return &SubmitResult{RecordID: recordID, TaskID: taskID, Resolution: resolution}, nil
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func priorityOrDefault(p constants.Priority) constants.Priority {
	switch p {
	case constants.PriorityHigh, constants.PriorityNormal, constants.PriorityLow:
		return p
	default:
		return constants.PriorityNormal
	}
}
