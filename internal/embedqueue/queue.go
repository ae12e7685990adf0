package embedqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adityakhanna/vouched/constants"
	"github.com/adityakhanna/vouched/internal/embed"
	"github.com/adityakhanna/vouched/internal/repository"
)

// Queue is an in-process scheduler for embedding tasks. It is owned by the
// composition root and passed by reference; multiple independent queues can
// coexist.
type Queue struct {
	records repository.RecordRepository
	gen     embed.Generator
	logger  *slog.Logger

	maxConcurrent int
	maxRetries    int
	retryDelay    time.Duration
	taskTimeout   time.Duration
	pollInterval  time.Duration
	batchSize     int // reserved for a batched embeddings variant

	mu       sync.Mutex
	pending  []*Task
	inflight map[uuid.UUID]struct{}
	timers   map[uuid.UUID]*time.Timer
	running  bool
	closed   bool

	wg sync.WaitGroup
}

type Option func(*Queue)

func WithMaxConcurrent(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxConcurrent = n
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(q *Queue) {
		if n >= 0 {
			q.maxRetries = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.retryDelay = d
		}
	}
}

func WithTaskTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.taskTimeout = d
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.pollInterval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.batchSize = n
		}
	}
}

func New(records repository.RecordRepository, gen embed.Generator, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		records:       records,
		gen:           gen,
		logger:        logger,
		maxConcurrent: 3,
		maxRetries:    3,
		retryDelay:    5 * time.Second,
		taskTimeout:   2 * time.Minute,
		pollInterval:  200 * time.Millisecond,
		batchSize:     5,
		inflight:      make(map[uuid.UUID]struct{}),
		timers:        make(map[uuid.UUID]*time.Timer),
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// Enqueue appends a task and returns its id immediately. High priority
// inserts at the front of the queue. Callers get no completion signal;
// downstream failures surface only in logs.
func (q *Queue) Enqueue(kind constants.TargetKind, recordID uuid.UUID, payload Payload, priority constants.Priority) uuid.UUID {
	task := &Task{
		ID:        uuid.New(),
		Kind:      kind,
		RecordID:  recordID,
		Payload:   payload,
		Priority:  priority,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("queue.enqueue.rejected", "kind", kind, "record_id", recordID, "reason", "queue is shutting down")
		return uuid.Nil
	}
	if priority == constants.PriorityHigh {
		q.pending = append([]*Task{task}, q.pending...)
	} else {
		q.pending = append(q.pending, task)
	}
	start := !q.running
	if start {
		q.running = true
		q.wg.Add(1)
	}
	q.mu.Unlock()

	if start {
		go q.loop()
	}
	q.logger.Info("queue.task.enqueued",
		"task_id", task.ID, "kind", kind, "record_id", recordID, "priority", priority)
	return task.ID
}

// loop is the single active dispatcher: it fills free slots from the front
// of the queue and exits once both the queue and the in-flight set are
// empty. A later Enqueue restarts it.
func (q *Queue) loop() {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		if q.closed {
			q.running = false
			q.mu.Unlock()
			return
		}

		var batch []*Task
		for len(q.inflight) < q.maxConcurrent && len(q.pending) > 0 {
			task := q.pending[0]
			q.pending = q.pending[1:]
			q.inflight[task.ID] = struct{}{}
			batch = append(batch, task)
		}
		if len(q.pending) == 0 && len(q.inflight) == 0 {
			q.running = false
			q.mu.Unlock()
			q.logger.Debug("queue.loop.idle")
			return
		}
		for range batch {
			q.wg.Add(1)
		}
		q.mu.Unlock()

		for _, task := range batch {
			go q.run(task)
		}
		time.Sleep(q.pollInterval)
	}
}

// run executes one task to completion, retry, or drop. The in-flight
// marker is cleared on every path.
func (q *Queue) run(task *Task) {
	defer q.wg.Done()

	ctx := context.Background()
	if q.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.taskTimeout)
		defer cancel()
	}

	err := q.process(ctx, task)

	q.mu.Lock()
	delete(q.inflight, task.ID)
	closed := q.closed
	q.mu.Unlock()

	if err == nil {
		q.logger.Info("queue.task.done", "task_id", task.ID, "kind", task.Kind, "record_id", task.RecordID)
		return
	}

	if task.RetryCount >= q.maxRetries || closed {
		// Dead letter: no persisted record, log line only.
		q.logger.Error("queue.task.dropped",
			"task_id", task.ID, "kind", task.Kind, "record_id", task.RecordID,
			"retries", task.RetryCount, "error", err)
		return
	}

	task.RetryCount++
	q.logger.Warn("queue.task.retry",
		"task_id", task.ID, "kind", task.Kind, "record_id", task.RecordID,
		"attempt", task.RetryCount, "max_retries", q.maxRetries,
		"delay", q.retryDelay, "error", err)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.timers[task.ID] = time.AfterFunc(q.retryDelay, func() { q.requeueFront(task) })
	q.mu.Unlock()
}

// requeueFront puts a retried task ahead of everything already queued,
// regardless of its original priority.
func (q *Queue) requeueFront(task *Task) {
	q.mu.Lock()
	delete(q.timers, task.ID)
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append([]*Task{task}, q.pending...)
	start := !q.running
	if start {
		q.running = true
		q.wg.Add(1)
	}
	q.mu.Unlock()

	if start {
		go q.loop()
	}
}

// Status is a point-in-time snapshot for operational visibility.
type Status struct {
	QueueLength  int
	Processing   []uuid.UUID
	IsProcessing bool
}

func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	st := Status{
		QueueLength:  len(q.pending),
		IsProcessing: q.running,
	}
	for id := range q.inflight {
		st.Processing = append(st.Processing, id)
	}
	return st
}

// Clear empties the queue, the in-flight set, and any scheduled retries.
// Testing and administrative use only; tasks already executing finish but
// their results are no longer tracked.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.pending = nil
	q.inflight = make(map[uuid.UUID]struct{})
	q.logger.Info("queue.cleared")
}

// Shutdown stops accepting work, cancels scheduled retries, and waits for
// in-flight tasks to finish or the context to expire.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.complete")
	}
}

// process runs the per-task pipeline: complete the payload, fetch
// enrichment, build composite text, generate the vector, write it back.
func (q *Queue) process(ctx context.Context, task *Task) error {
	payload := task.Payload
	if payload.incomplete() {
		full, err := q.fetchPayload(ctx, task)
		if err != nil {
			return err
		}
		payload = full
	}

	enrich, err := q.fetchEnrichment(ctx, payload)
	if err != nil {
		return err
	}

	text := compositeText(task.Kind, payload, enrich)

	var vector []float32
	switch task.Kind {
	case constants.KindAnnotation:
		vector, err = q.gen.AnnotationEmbedding(ctx, text)
	case constants.KindRecommendation:
		vector, err = q.gen.RecommendationEmbedding(ctx, text)
	default:
		return fmt.Errorf("unknown target kind %q", task.Kind)
	}
	if err != nil {
		return fmt.Errorf("generate embedding: %w", err)
	}

	switch task.Kind {
	case constants.KindAnnotation:
		err = q.records.SetAnnotationEmbedding(ctx, task.RecordID, vector)
	case constants.KindRecommendation:
		err = q.records.SetRecommendationEmbedding(ctx, task.RecordID, vector)
	}
	if err != nil {
		return fmt.Errorf("write embedding: %w", err)
	}
	return nil
}

func (q *Queue) fetchPayload(ctx context.Context, task *Task) (Payload, error) {
	switch task.Kind {
	case constants.KindAnnotation:
		a, err := q.records.GetAnnotation(ctx, task.RecordID)
		if err != nil {
			return Payload{}, fmt.Errorf("fetch annotation: %w", err)
		}
		if a == nil {
			return Payload{}, fmt.Errorf("annotation %s not found", task.RecordID)
		}
		return Payload{
			UserID:    a.UserID,
			Body:      a.Body,
			Tags:      a.Tags,
			ServiceID: a.ServiceID,
			PlaceID:   a.PlaceID,
		}, nil
	case constants.KindRecommendation:
		rec, err := q.records.GetRecommendation(ctx, task.RecordID)
		if err != nil {
			return Payload{}, fmt.Errorf("fetch recommendation: %w", err)
		}
		if rec == nil {
			return Payload{}, fmt.Errorf("recommendation %s not found", task.RecordID)
		}
		return Payload{
			UserID:    rec.UserID,
			Title:     rec.Title,
			Body:      rec.Description,
			Tags:      rec.Tags,
			Rating:    rec.Rating,
			ServiceID: rec.ServiceID,
			PlaceID:   rec.PlaceID,
		}, nil
	}
	return Payload{}, fmt.Errorf("unknown target kind %q", task.Kind)
}

// fetchEnrichment pulls related context; each piece is independently
// nullable, but store errors propagate so the task can retry.
func (q *Queue) fetchEnrichment(ctx context.Context, payload Payload) (enrichment, error) {
	var e enrichment
	var err error
	if payload.PlaceID != nil {
		if e.place, err = q.records.GetPlace(ctx, *payload.PlaceID); err != nil {
			return e, fmt.Errorf("fetch place: %w", err)
		}
	}
	if payload.ServiceID != nil {
		if e.service, err = q.records.GetService(ctx, *payload.ServiceID); err != nil {
			return e, fmt.Errorf("fetch service: %w", err)
		}
	}
	if payload.UserID != uuid.Nil {
		if e.user, err = q.records.GetUser(ctx, payload.UserID); err != nil {
			return e, fmt.Errorf("fetch user: %w", err)
		}
	}
	return e, nil
}
