package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/adityakhanna/vouched/internal/entity"
	"github.com/adityakhanna/vouched/internal/identity"
	"github.com/adityakhanna/vouched/internal/namematch"
)

// DuplicateFinder searches for services a submission might duplicate.
type DuplicateFinder interface {
	FindPotentialDuplicates(ctx context.Context, sub namematch.Submission) (*identity.DuplicateReport, error)
}

// Service is a tiny façade over the resolver that produces XLSX bytes for
// manual duplicate review.
type Service struct {
	finder DuplicateFinder
	logger *slog.Logger
}

func NewService(finder DuplicateFinder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{finder: finder, logger: logger}
}

// DuplicateReviewXLSX runs a duplicate search for the query submission and
// returns an XLSX workbook (as bytes) with one row per candidate, grouped by
// match bucket.
func (s *Service) DuplicateReviewXLSX(ctx context.Context, query namematch.Submission) ([]byte, error) {
	start := time.Now()

	report, err := s.finder.FindPotentialDuplicates(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Duplicates"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Match Bucket",
		"Service ID",
		"Name",
		"Phone",
		"Email",
		"Service Type",
		"Business Name",
		"Address",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	rows := 0
	writeBucket := func(bucket string, services []entity.Service) {
		for _, svc := range services {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			write(1, bucket)
			write(2, svc.ID.String())
			write(3, svc.Name)
			write(4, deref(svc.Phone))
			write(5, deref(svc.Email))
			write(6, deref(svc.ServiceType))
			write(7, deref(svc.BusinessName))
			write(8, truncate(deref(svc.Address), 80))
			row++
			rows++
		}
	}
	writeBucket("exact", report.ExactMatches)
	writeBucket("similar", report.SimilarNames)
	writeBucket("phone suffix", report.PhoneSuffixMatches)

	_ = f.SetColWidth(sheet, "A", "A", 14) // bucket
	_ = f.SetColWidth(sheet, "B", "B", 38) // id
	_ = f.SetColWidth(sheet, "C", "C", 28) // name
	_ = f.SetColWidth(sheet, "D", "E", 22) // phone, email
	_ = f.SetColWidth(sheet, "F", "G", 22) // type, business
	_ = f.SetColWidth(sheet, "H", "H", 48) // address

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.duplicates.ok",
		"query_name", query.Name,
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
