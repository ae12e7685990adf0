// Command dedupe-report searches the service store for potential duplicates
// of a provider and writes an XLSX workbook for manual review.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/adityakhanna/vouched/internal/common"
	"github.com/adityakhanna/vouched/internal/export"
	"github.com/adityakhanna/vouched/internal/identity"
	"github.com/adityakhanna/vouched/internal/namematch"
	"github.com/adityakhanna/vouched/internal/repository"
)

func main() {
	_ = godotenv.Load()

	name := flag.String("name", "", "provider name to search for")
	phone := flag.String("phone", "", "phone number to search for (suffix match on last 6 digits)")
	email := flag.String("email", "", "email to search for")
	jsonQuery := flag.String("json", "", "full submission as JSON (overrides -name/-phone/-email)")
	out := flag.String("out", "duplicates.xlsx", "output file path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var query namematch.Submission
	if *jsonQuery != "" {
		sub, err := identity.DecodeSubmission([]byte(*jsonQuery))
		if err != nil {
			logger.Error("invalid -json query", "error", err)
			os.Exit(2)
		}
		query = sub
	} else {
		query = namematch.Submission{Name: *name, Phone: *phone, Email: *email}
	}
	if query.Name == "" && query.Phone == "" && query.Email == "" {
		logger.Error("nothing to search for: pass -name, -phone, -email, or -json")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL env var is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
	resolver := identity.NewResolver(services, cfg.Identity.ConflictPolicy, logger)
	exporter := export.NewService(resolver, logger)

	data, err := exporter.DuplicateReviewXLSX(ctx, query)
	if err != nil {
		logger.Error("building report", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("writing report", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("report written", "path", *out)
}
