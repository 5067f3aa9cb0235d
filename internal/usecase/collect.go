package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cryptonews/internal/domain"
	"cryptonews/internal/repository"
)

// MarketData is the subset of the market-data API the collector uses.
type MarketData interface {
	Asset(ctx context.Context, id string) (domain.Asset, error)
	PriceHistory(ctx context.Context, id string, from, to time.Time) ([]domain.PricePoint, error)
	Markets(ctx context.Context, id string) ([]domain.Market, error)
}

// NewsSearch runs one search window end to end.
type NewsSearch interface {
	Execute(ctx context.Context, window domain.SearchWindow) (domain.ResultTable, error)
}

// CollectService stores details, prices, markets and news of each crypto for one year.
type CollectService struct {
	market MarketData
	news   NewsSearch
	store  repository.Store
	year   int
	logger *slog.Logger
	newID  func() string
}

func NewCollectService(market MarketData, news NewsSearch, store repository.Store, year int, logger *slog.Logger) *CollectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectService{
		market: market,
		news:   news,
		store:  store,
		year:   year,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// HalfYearWindows splits year into Jan 1–Jun 30 and Jul 1–Dec 31.
func HalfYearWindows(query string, year int) []domain.SearchWindow {
	return []domain.SearchWindow{
		{Query: query, From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), To: time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC)},
		{Query: query, From: time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC), To: time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}
}

// Run collects every crypto in order; cryptos[i] is stored under cryptoId i.
// A failed step is logged and skipped, and all failures are returned joined.
func (s *CollectService) Run(ctx context.Context, cryptos []string) error {
	var errs []error
	for i, key := range cryptos {
		c := domain.Crypto{ID: i, Key: key}
		steps := []struct {
			name string
			fn   func(context.Context, domain.Crypto) error
		}{
			{"details", s.saveDetails},
			{"historic_prices", s.savePrices},
			{"markets", s.saveMarkets},
			{"news", s.saveNews},
		}
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(errs, err)...)
			}
			if err := step.fn(ctx, c); err != nil {
				s.logger.Error("collect step failed", "crypto", c.Key, "step", step.name, "error", err)
				errs = append(errs, fmt.Errorf("%s %s: %w", c.Key, step.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *CollectService) saveDetails(ctx context.Context, c domain.Crypto) error {
	asset, err := s.market.Asset(ctx, c.Key)
	if err != nil {
		return err
	}
	return s.store.SaveAsset(ctx, asset)
}

func (s *CollectService) savePrices(ctx context.Context, c domain.Crypto) error {
	from := time.Date(s.year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(s.year, time.December, 31, 0, 0, 0, 0, time.UTC)
	points, err := s.market.PriceHistory(ctx, c.Key, from, to)
	if err != nil {
		return err
	}
	s.logger.Info("price history fetched", "crypto", c.Key, "points", len(points))
	return s.store.SavePrices(ctx, c.ID, points)
}

func (s *CollectService) saveMarkets(ctx context.Context, c domain.Crypto) error {
	markets, err := s.market.Markets(ctx, c.Key)
	if err != nil {
		return err
	}
	s.logger.Info("markets fetched", "crypto", c.Key, "markets", len(markets))
	return s.store.SaveMarkets(ctx, c.ID, markets)
}

// saveNews stores each window as soon as it succeeds; a failed window is
// reported and the next one still runs.
func (s *CollectService) saveNews(ctx context.Context, c domain.Crypto) error {
	var errs []error
	for _, w := range HalfYearWindows(c.Key, s.year) {
		table, err := s.news.Execute(ctx, w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		runID := s.newID()
		if err := s.store.SaveNews(ctx, c.ID, runID, table); err != nil {
			errs = append(errs, err)
			continue
		}
		s.logger.Info("news saved", "crypto", c.Key, "run_id", runID,
			"from", w.From.Format("2006-01-02"), "to", w.To.Format("2006-01-02"), "rows", table.Len())
	}
	return errors.Join(errs...)
}
