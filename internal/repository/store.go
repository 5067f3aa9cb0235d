package repository

import (
	"context"

	"cryptonews/internal/domain"
)

// Store persists collected market data and news. cryptoID is the foreign key
// every row is attached to.
type Store interface {
	SaveAsset(ctx context.Context, asset domain.Asset) error
	SavePrices(ctx context.Context, cryptoID int, points []domain.PricePoint) error
	SaveMarkets(ctx context.Context, cryptoID int, markets []domain.Market) error
	SaveNews(ctx context.Context, cryptoID int, runID string, table domain.ResultTable) error
	Close(ctx context.Context) error
}
