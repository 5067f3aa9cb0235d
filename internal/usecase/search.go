package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cryptonews/internal/domain"
	"cryptonews/internal/repository"
)

// DatePolicy decides what happens to a record whose date text cannot be normalized.
type DatePolicy string

const (
	// DropUnparsed removes the record from the table and counts it in ResultTable.Dropped.
	DropUnparsed DatePolicy = "drop"
	// KeepUnparsed keeps the record with a nil NormalizedDate.
	KeepUnparsed DatePolicy = "keep"
)

func ParseDatePolicy(s string) (DatePolicy, error) {
	switch p := DatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DropUnparsed, nil
	case DropUnparsed, KeepUnparsed:
		return p, nil
	}
	return "", ErrUnknownPolicy
}

type SearchService struct {
	searcher   repository.NewsSearcher
	normalizer repository.DateNormalizer
	policy     DatePolicy
	logger     *slog.Logger
}

func NewSearchService(searcher repository.NewsSearcher, normalizer repository.DateNormalizer, policy DatePolicy, logger *slog.Logger) *SearchService {
	if policy == "" {
		policy = DropUnparsed
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{searcher: searcher, normalizer: normalizer, policy: policy, logger: logger}
}

// Execute crawls one window and returns its records with normalized dates,
// reindexed from 0. A window either succeeds whole or returns an error.
func (s *SearchService) Execute(ctx context.Context, window domain.SearchWindow) (domain.ResultTable, error) {
	if strings.TrimSpace(window.Query) == "" {
		return domain.ResultTable{}, ErrEmptyQuery
	}
	if window.To.Before(window.From) {
		return domain.ResultTable{}, ErrInvalidDateRange
	}

	raw, err := s.searcher.Search(ctx, window)
	if err != nil {
		return domain.ResultTable{}, err
	}

	table := domain.ResultTable{Window: window, Records: make([]domain.NewsRecord, 0, len(raw))}
	for _, rec := range raw {
		date, err := s.normalizer.Normalize(rec.RawDate)
		if err != nil {
			var perr *domain.DateParseError
			if !errors.As(err, &perr) {
				return domain.ResultTable{}, err
			}
			if s.policy == DropUnparsed {
				s.logger.Warn("dropping record with unparseable date", "title", rec.Title, "date", rec.RawDate, "error", err)
				table.Dropped++
				continue
			}
			s.logger.Warn("keeping record with unparseable date", "title", rec.Title, "date", rec.RawDate, "error", err)
		} else {
			d := date
			rec.NormalizedDate = &d
		}
		rec.Row = len(table.Records)
		table.Records = append(table.Records, rec)
	}

	s.logger.Info("search window done", "query", window.Query, "records", table.Len(), "dropped", table.Dropped)
	return table, nil
}
