package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cryptonews/internal/domain"
)

// Collection names. News goes to the configured collection.
const (
	detailsCollection = "details"
	pricesCollection  = "historic_prices"
	marketsCollection = "markets"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	news   string
	logger *slog.Logger
}

func NewStore(client *mongo.Client, dbName, newsCollection string, logger *slog.Logger) *Store {
	if newsCollection == "" {
		newsCollection = "news"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, db: client.Database(dbName), news: newsCollection, logger: logger}
}

func (s *Store) SaveAsset(ctx context.Context, a domain.Asset) error {
	_, err := s.db.Collection(detailsCollection).InsertOne(ctx, assetDocument(a))
	if err != nil {
		return fmt.Errorf("insert details %s: %w", a.ID, err)
	}
	return nil
}

func (s *Store) SavePrices(ctx context.Context, cryptoID int, points []domain.PricePoint) error {
	docs := make([]interface{}, len(points))
	for i, p := range points {
		docs[i] = bson.D{{Key: "cryptoId", Value: cryptoID}, {Key: "priceUsd", Value: p.PriceUsd}, {Key: "date", Value: p.Date}}
	}
	return s.insertMany(ctx, pricesCollection, docs)
}

func (s *Store) SaveMarkets(ctx context.Context, cryptoID int, markets []domain.Market) error {
	docs := make([]interface{}, len(markets))
	for i, m := range markets {
		docs[i] = marketDocument(cryptoID, m)
	}
	return s.insertMany(ctx, marketsCollection, docs)
}

func (s *Store) SaveNews(ctx context.Context, cryptoID int, runID string, table domain.ResultTable) error {
	docs := make([]interface{}, len(table.Records))
	for i, r := range table.Records {
		docs[i] = newsDocument(cryptoID, runID, r)
	}
	return s.insertMany(ctx, s.news, docs)
}

func (s *Store) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Disconnect(disconnectCtx)
}

func (s *Store) insertMany(ctx context.Context, collection string, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	opts := options.InsertMany().SetOrdered(false)
	_, err := s.db.Collection(collection).InsertMany(ctx, docs, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			s.logger.Info("duplicate documents skipped", "collection", collection)
			return nil
		}
		return fmt.Errorf("insert into %s failed: %w", collection, err)
	}
	return nil
}

func assetDocument(a domain.Asset) bson.D {
	return bson.D{
		{Key: "rank", Value: a.Rank},
		{Key: "symbol", Value: a.Symbol},
		{Key: "name", Value: a.Name},
		{Key: "supply", Value: a.Supply},
		{Key: "maxSupply", Value: a.MaxSupply},
		{Key: "marketCapUsd", Value: a.MarketCapUsd},
		{Key: "volumeUsd24Hr", Value: a.VolumeUsd24Hr},
		{Key: "priceUsd", Value: a.PriceUsd},
		{Key: "changePercent24Hr", Value: a.ChangePercent24Hr},
		{Key: "vwap24Hr", Value: a.Vwap24Hr},
		{Key: "explorer", Value: a.Explorer},
	}
}

func marketDocument(cryptoID int, m domain.Market) bson.D {
	return bson.D{
		{Key: "cryptoId", Value: cryptoID},
		{Key: "exchangeId", Value: m.ExchangeID},
		{Key: "quoteId", Value: m.QuoteID},
		{Key: "baseSymbol", Value: m.BaseSymbol},
		{Key: "quoteSymbol", Value: m.QuoteSymbol},
		{Key: "volumeUsd24Hr", Value: m.VolumeUsd24Hr},
		{Key: "priceUsd", Value: m.PriceUsd},
		{Key: "volumePercent", Value: m.VolumePercent},
	}
}

func newsDocument(cryptoID int, runID string, r domain.NewsRecord) bson.D {
	var date interface{}
	if d := r.NewsDate(); d != "" {
		date = d
	}
	return bson.D{
		{Key: "cryptoId", Value: cryptoID},
		{Key: "runId", Value: runID},
		{Key: "title", Value: r.Title},
		{Key: "media", Value: r.Media},
		{Key: "news_date", Value: date},
		{Key: "description", Value: r.Description},
		{Key: "link", Value: r.Link},
	}
}
