package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adityakhanna/vouched/constants"
	"github.com/adityakhanna/vouched/internal/common"
	"github.com/adityakhanna/vouched/internal/embed/openai"
	"github.com/adityakhanna/vouched/internal/embedqueue"
	"github.com/adityakhanna/vouched/internal/identity"
	"github.com/adityakhanna/vouched/internal/namematch"
	"github.com/adityakhanna/vouched/internal/repository"
	"github.com/adityakhanna/vouched/internal/services/recommend"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	services := repository.NewServiceRepository(pool, logger)
	records := repository.NewRecordRepository(pool, logger)

	resolver := identity.NewResolver(services, cfg.Identity.ConflictPolicy, logger)

	embedder := openai.NewClient(openai.Config{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout,
	}, logger)

	queue := embedqueue.New(records, embedder, logger,
		embedqueue.WithMaxConcurrent(cfg.Queue.MaxConcurrent),
		embedqueue.WithMaxRetries(cfg.Queue.MaxRetries),
		embedqueue.WithRetryDelay(cfg.Queue.RetryDelay),
		embedqueue.WithTaskTimeout(cfg.Queue.TaskTimeout),
		embedqueue.WithPollInterval(cfg.Queue.PollInterval),
		embedqueue.WithBatchSize(cfg.Queue.BatchSize),
	)

	svc := recommend.NewService(records, resolver, queue, logger)

	logger.Info("vouchedd started",
		"conflict_policy", cfg.Identity.ConflictPolicy,
		"queue_max_concurrent", cfg.Queue.MaxConcurrent,
		"embedding_model", cfg.Embedding.Model,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ingestStdin(ctx, svc, logger)
	}()

	select {
	case <-ctx.Done():
		logger.Info("signal received, shutting down")
	case <-done:
		logger.Info("input exhausted, shutting down")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)

	logger.Info("stopped")
}

// envelope is one line of NDJSON on stdin.
type envelope struct {
	Kind     string                `json:"kind"` // "recommendation" or "annotation"
	UserID   string                `json:"user_id"`
	Title    string                `json:"title,omitempty"`
	Body     string                `json:"body,omitempty"`
	Tags     []string              `json:"tags,omitempty"`
	Rating   *float64              `json:"rating,omitempty"`
	PlaceID  string                `json:"place_id,omitempty"`
	Provider *namematch.Submission `json:"provider,omitempty"`
	Priority constants.Priority    `json:"priority,omitempty"`
	Metadata map[string]string     `json:"metadata,omitempty"`
}

// ingestStdin consumes newline-delimited JSON submissions until EOF or
// cancellation. Bad lines are logged and skipped; the stream keeps going.
func ingestStdin(ctx context.Context, svc *recommend.Service, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			logger.Error("skipping malformed input line", "line", line, "error", err)
			continue
		}

		var err error
		switch env.Kind {
		case "annotation":
			_, err = svc.AddAnnotation(ctx, recommend.AddAnnotationRequest{
				UserID:   env.UserID,
				Body:     env.Body,
				Tags:     env.Tags,
				PlaceID:  env.PlaceID,
				Provider: env.Provider,
				Priority: env.Priority,
				Metadata: env.Metadata,
			})
		case "recommendation", "":
			_, err = svc.SubmitRecommendation(ctx, recommend.SubmitRecommendationRequest{
				UserID:   env.UserID,
				Title:    env.Title,
				Body:     env.Body,
				Tags:     env.Tags,
				Rating:   env.Rating,
				PlaceID:  env.PlaceID,
				Provider: env.Provider,
				Priority: env.Priority,
				Metadata: env.Metadata,
			})
		default:
			logger.Error("skipping line with unknown kind", "line", line, "kind", env.Kind)
			continue
		}
		if err != nil {
			logger.Error("submission rejected", "line", line, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("reading input", "error", err)
	}
}
