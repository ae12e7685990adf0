package embedqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/adityakhanna/vouched/internal/entity"
)

// fakeRecords is an in-memory RecordRepository.
type fakeRecords struct {
	mu              sync.Mutex
	annotations     map[uuid.UUID]*entity.Annotation
	recommendations map[uuid.UUID]*entity.Recommendation
	places          map[uuid.UUID]*entity.Place
	users           map[uuid.UUID]*entity.User
	annEmbeddings   map[uuid.UUID][]float32
	recEmbeddings   map[uuid.UUID][]float32
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		annotations:     make(map[uuid.UUID]*entity.Annotation),
		recommendations: make(map[uuid.UUID]*entity.Recommendation),
		places:          make(map[uuid.UUID]*entity.Place),
		users:           make(map[uuid.UUID]*entity.User),
		annEmbeddings:   make(map[uuid.UUID][]float32),
		recEmbeddings:   make(map[uuid.UUID][]float32),
	}
}

func (f *fakeRecords) GetAnnotation(_ context.Context, id uuid.UUID) (*entity.Annotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.annotations[id], nil
}

func (f *fakeRecords) GetRecommendation(_ context.Context, id uuid.UUID) (*entity.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recommendations[id], nil
}

func (f *fakeRecords) CreateAnnotation(_ context.Context, a *entity.Annotation) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.annotations[a.ID] = a
	return a.ID, nil
}

func (f *fakeRecords) CreateRecommendation(_ context.Context, rec *entity.Recommendation) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	f.recommendations[rec.ID] = rec
	return rec.ID, nil
}

func (f *fakeRecords) GetPlace(_ context.Context, id uuid.UUID) (*entity.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.places[id], nil
}

func (f *fakeRecords) GetService(_ context.Context, id uuid.UUID) (*entity.Service, error) {
	return nil, nil
}

func (f *fakeRecords) GetUser(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeRecords) SetAnnotationEmbedding(_ context.Context, id uuid.UUID, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.annEmbeddings[id] = vector
	return nil
}

func (f *fakeRecords) SetRecommendationEmbedding(_ context.Context, id uuid.UUID, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recEmbeddings[id] = vector
	return nil
}

func (f *fakeRecords) recEmbeddingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recEmbeddings)
}

// fakeGenerator is a controllable embed.Generator: it can fail the first N
// calls, block on a gate channel, and track concurrency.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	texts []string

	failFirst int           // fail this many leading calls
	gate      chan struct{} // when non-nil, block until a token arrives

	current     int32
	maxObserved int32
}

func (g *fakeGenerator) AnnotationEmbedding(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text)
}

func (g *fakeGenerator) RecommendationEmbedding(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text)
}

func (g *fakeGenerator) embed(ctx context.Context, text string) ([]float32, error) {
	cur := atomic.AddInt32(&g.current, 1)
	defer atomic.AddInt32(&g.current, -1)
	for {
		observed := atomic.LoadInt32(&g.maxObserved)
		if cur <= observed || atomic.CompareAndSwapInt32(&g.maxObserved, observed, cur) {
			break
		}
	}

	g.mu.Lock()
	g.calls++
	call := g.calls
	g.texts = append(g.texts, text)
	g.mu.Unlock()

	if g.gate != nil {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call <= g.failFirst {
		return nil, errors.New("transient embedding failure")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (g *fakeGenerator) peakConcurrency() int32 {
	return atomic.LoadInt32(&g.maxObserved)
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGenerator) textOrder() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.texts))
	copy(out, g.texts)
	return out
}
