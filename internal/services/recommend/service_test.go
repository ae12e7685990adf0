package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adityakhanna/vouched/constants"
	"github.com/adityakhanna/vouched/internal/embedqueue"
	"github.com/adityakhanna/vouched/internal/entity"
	"github.com/adityakhanna/vouched/internal/identity"
	"github.com/adityakhanna/vouched/internal/namematch"
)

type fakeRecords struct {
	recommendations map[uuid.UUID]*entity.Recommendation
	annotations     map[uuid.UUID]*entity.Annotation
	createErr       error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		recommendations: make(map[uuid.UUID]*entity.Recommendation),
		annotations:     make(map[uuid.UUID]*entity.Annotation),
	}
}

func (f *fakeRecords) GetAnnotation(_ context.Context, id uuid.UUID) (*entity.Annotation, error) {
	return f.annotations[id], nil
}

func (f *fakeRecords) GetRecommendation(_ context.Context, id uuid.UUID) (*entity.Recommendation, error) {
	return f.recommendations[id], nil
}

func (f *fakeRecords) CreateAnnotation(_ context.Context, a *entity.Annotation) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	a.ID = uuid.New()
	f.annotations[a.ID] = a
	return a.ID, nil
}

func (f *fakeRecords) CreateRecommendation(_ context.Context, rec *entity.Recommendation) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	rec.ID = uuid.New()
	f.recommendations[rec.ID] = rec
	return rec.ID, nil
}

func (f *fakeRecords) GetPlace(context.Context, uuid.UUID) (*entity.Place, error) { return nil, nil }

func (f *fakeRecords) GetService(context.Context, uuid.UUID) (*entity.Service, error) {
	return nil, nil
}

func (f *fakeRecords) GetUser(context.Context, uuid.UUID) (*entity.User, error) { return nil, nil }

func (f *fakeRecords) SetAnnotationEmbedding(context.Context, uuid.UUID, []float32) error {
	return nil
}

func (f *fakeRecords) SetRecommendationEmbedding(context.Context, uuid.UUID, []float32) error {
	return nil
}

type fakeResolver struct {
	result *identity.UpsertResult
	err    error
	calls  int
}

func (f *fakeResolver) UpsertService(_ context.Context, _ namematch.Submission) (*identity.UpsertResult, error) {
	f.calls++
	return f.result, f.err
}

type enqueued struct {
	kind     constants.TargetKind
	recordID uuid.UUID
	payload  embedqueue.Payload
	priority constants.Priority
}

type fakeQueue struct {
	tasks []enqueued
}

func (f *fakeQueue) Enqueue(kind constants.TargetKind, recordID uuid.UUID, payload embedqueue.Payload, priority constants.Priority) uuid.UUID {
	f.tasks = append(f.tasks, enqueued{kind: kind, recordID: recordID, payload: payload, priority: priority})
	return uuid.New()
}

func TestSubmitRecommendationResolvesStoresEnqueues(t *testing.T) {
	records := newFakeRecords()
	serviceID := uuid.New()
	resolver := &fakeResolver{result: &identity.UpsertResult{
		ServiceID:  serviceID,
		IsNew:      true,
		Action:     constants.ActionCreated,
		Confidence: 1.0,
	}}
	queue := &fakeQueue{}
	svc := NewService(records, resolver, queue, nil)

	rating := 4.0
	res, err := svc.SubmitRecommendation(context.Background(), SubmitRecommendationRequest{
		UserID:   uuid.NewString(),
		Title:    "Great electrician",
		Body:     "Rewired the whole flat in a day",
		Tags:     []string{"electrician"},
		Rating:   &rating,
		Provider: &namematch.Submission{Name: "Suresh Verma", Phone: "9876543210"},
	})
	if err != nil {
		t.Fatalf("SubmitRecommendation: %v", err)
	}

	if resolver.calls != 1 {
		t.Errorf("resolver called %d times, want 1", resolver.calls)
	}
	stored := records.recommendations[res.RecordID]
	if stored == nil {
		t.Fatal("recommendation was not stored")
	}
	if stored.ServiceID == nil || *stored.ServiceID != serviceID {
		t.Errorf("stored record not linked to resolved service")
	}
	if res.Resolution == nil || res.Resolution.Action != constants.ActionCreated {
		t.Errorf("resolution metadata not returned: %+v", res.Resolution)
	}
	if len(queue.tasks) != 1 {
		t.Fatalf("expected 1 enqueued task, got %d", len(queue.tasks))
	}
	task := queue.tasks[0]
	if task.kind != constants.KindRecommendation || task.recordID != res.RecordID {
		t.Errorf("wrong task enqueued: %+v", task)
	}
	if task.priority != constants.PriorityNormal {
		t.Errorf("priority = %q, want default normal", task.priority)
	}
	if task.payload.Title != "Great electrician" || task.payload.ServiceID == nil {
		t.Errorf("payload snapshot incomplete: %+v", task.payload)
	}
}

func TestSubmitRecommendationWithoutProvider(t *testing.T) {
	records := newFakeRecords()
	resolver := &fakeResolver{}
	queue := &fakeQueue{}
	svc := NewService(records, resolver, queue, nil)

	res, err := svc.SubmitRecommendation(context.Background(), SubmitRecommendationRequest{
		UserID:   uuid.NewString(),
		Body:     "The chaat stall near the station is excellent",
		Priority: constants.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("SubmitRecommendation: %v", err)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver should not run without a provider submission")
	}
	if res.Resolution != nil {
		t.Errorf("expected no resolution metadata, got %+v", res.Resolution)
	}
	if queue.tasks[0].priority != constants.PriorityHigh {
		t.Errorf("requested priority not forwarded")
	}
}

func TestSubmitRecommendationValidation(t *testing.T) {
	svc := NewService(newFakeRecords(), &fakeResolver{}, &fakeQueue{}, nil)

	cases := []struct {
		name string
		req  SubmitRecommendationRequest
	}{
		{"bad user id", SubmitRecommendationRequest{UserID: "nope", Body: "x"}},
		{"no content", SubmitRecommendationRequest{UserID: uuid.NewString()}},
		{"rating out of range", SubmitRecommendationRequest{UserID: uuid.NewString(), Body: "x", Rating: ptr(9.0)}},
		{"bad place id", SubmitRecommendationRequest{UserID: uuid.NewString(), Body: "x", PlaceID: "not-a-uuid"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitRecommendation(context.Background(), tc.req)
			if status.Code(err) != codes.InvalidArgument {
				t.Errorf("code = %v, want InvalidArgument", status.Code(err))
			}
		})
	}
}

func TestSubmitRecommendationResolverErrorPropagates(t *testing.T) {
	records := newFakeRecords()
	resolver := &fakeResolver{err: status.Error(codes.InvalidArgument, "invalid service submission")}
	queue := &fakeQueue{}
	svc := NewService(records, resolver, queue, nil)

	_, err := svc.SubmitRecommendation(context.Background(), SubmitRecommendationRequest{
		UserID:   uuid.NewString(),
		Body:     "body",
		Provider: &namematch.Submission{},
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", status.Code(err))
	}
	if len(records.recommendations) != 0 {
		t.Error("record stored despite resolver failure")
	}
	if len(queue.tasks) != 0 {
		t.Error("task enqueued despite resolver failure")
	}
}

func TestSubmitRecommendationStoreError(t *testing.T) {
	records := newFakeRecords()
	records.createErr = errors.New("connection reset")
	queue := &fakeQueue{}
	svc := NewService(records, &fakeResolver{}, queue, nil)

	_, err := svc.SubmitRecommendation(context.Background(), SubmitRecommendationRequest{
		UserID: uuid.NewString(),
		Body:   "body",
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want Internal", status.Code(err))
	}
	if len(queue.tasks) != 0 {
		t.Error("task enqueued despite store failure")
	}
}

func TestAddAnnotation(t *testing.T) {
	records := newFakeRecords()
	serviceID := uuid.New()
	resolver := &fakeResolver{result: &identity.UpsertResult{
		ServiceID: serviceID,
		Action:    constants.ActionMerged,
	}}
	queue := &fakeQueue{}
	svc := NewService(records, resolver, queue, nil)

	res, err := svc.AddAnnotation(context.Background(), AddAnnotationRequest{
		UserID:   uuid.NewString(),
		Body:     "Only takes cash, closed on Mondays",
		Provider: &namematch.Submission{Name: "Ramesh Kumar", Phone: "9876543210"},
	})
	if err != nil {
		t.Fatalf("AddAnnotation: %v", err)
	}
	stored := records.annotations[res.RecordID]
	if stored == nil {
		t.Fatal("annotation was not stored")
	}
	if stored.ServiceID == nil || *stored.ServiceID != serviceID {
		t.Error("annotation not linked to resolved service")
	}
	if len(queue.tasks) != 1 || queue.tasks[0].kind != constants.KindAnnotation {
		t.Errorf("annotation embedding task not enqueued: %+v", queue.tasks)
	}
}

func TestAddAnnotationRequiresBody(t *testing.T) {
	svc := NewService(newFakeRecords(), &fakeResolver{}, &fakeQueue{}, nil)

	_, err := svc.AddAnnotation(context.Background(), AddAnnotationRequest{
		UserID: uuid.NewString(),
		Body:   "   ",
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func ptr(f float64) *float64 { return &f }
