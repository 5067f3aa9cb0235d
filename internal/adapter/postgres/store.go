// Package postgres stores collected rows in PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"cryptonews/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS details (
	rank TEXT, symbol TEXT, name TEXT, supply TEXT, max_supply TEXT,
	market_cap_usd TEXT, volume_usd_24hr TEXT, price_usd TEXT,
	change_percent_24hr TEXT, vwap_24hr TEXT, explorer TEXT
);
CREATE TABLE IF NOT EXISTS historic_prices (
	crypto_id INTEGER NOT NULL, price_usd TEXT, date TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS markets (
	crypto_id INTEGER NOT NULL, exchange_id TEXT, quote_id TEXT, base_symbol TEXT,
	quote_symbol TEXT, volume_usd_24hr TEXT, price_usd TEXT, volume_percent TEXT
);
CREATE TABLE IF NOT EXISTS news (
	crypto_id INTEGER NOT NULL, run_id TEXT NOT NULL, title TEXT NOT NULL, media TEXT,
	news_date TEXT, description TEXT, link TEXT
);`

const (
	insertDetails = `INSERT INTO details (rank, symbol, name, supply, max_supply, market_cap_usd, volume_usd_24hr, price_usd, change_percent_24hr, vwap_24hr, explorer)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	insertPrice  = `INSERT INTO historic_prices (crypto_id, price_usd, date) VALUES ($1, $2, $3)`
	insertMarket = `INSERT INTO markets (crypto_id, exchange_id, quote_id, base_symbol, quote_symbol, volume_usd_24hr, price_usd, volume_percent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertNews = `INSERT INTO news (crypto_id, run_id, title, media, news_date, description, link) VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

type Store struct {
	DB *sql.DB
}

// Open connects and pings the database behind dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveAsset stores the asset summary. The asset id is not a column.
func (s *Store) SaveAsset(ctx context.Context, a domain.Asset) error {
	_, err := s.DB.ExecContext(ctx, insertDetails,
		a.Rank, a.Symbol, a.Name, a.Supply, a.MaxSupply, a.MarketCapUsd,
		a.VolumeUsd24Hr, a.PriceUsd, a.ChangePercent24Hr, a.Vwap24Hr, a.Explorer)
	if err != nil {
		return fmt.Errorf("insert details %s: %w", a.ID, err)
	}
	return nil
}

// SavePrices drops the millisecond timestamp and keeps the parsed date.
func (s *Store) SavePrices(ctx context.Context, cryptoID int, points []domain.PricePoint) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range points {
			if _, err := tx.ExecContext(ctx, insertPrice, cryptoID, p.PriceUsd, p.Date); err != nil {
				return fmt.Errorf("insert price: %w", err)
			}
		}
		return nil
	})
}

// SaveMarkets drops baseId, which cryptoID already identifies.
func (s *Store) SaveMarkets(ctx context.Context, cryptoID int, markets []domain.Market) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, m := range markets {
			if _, err := tx.ExecContext(ctx, insertMarket, cryptoID, m.ExchangeID, m.QuoteID,
				m.BaseSymbol, m.QuoteSymbol, m.VolumeUsd24Hr, m.PriceUsd, m.VolumePercent); err != nil {
				return fmt.Errorf("insert market %s: %w", m.ExchangeID, err)
			}
		}
		return nil
	})
}

func (s *Store) SaveNews(ctx context.Context, cryptoID int, runID string, table domain.ResultTable) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, r := range table.Records {
			if _, err := tx.ExecContext(ctx, insertNews, cryptoID, runID, r.Title, r.Media,
				nullString(r.NewsDate()), r.Description, r.Link); err != nil {
				return fmt.Errorf("insert news row %d: %w", r.Row, err)
			}
		}
		return nil
	})
}

func (s *Store) Close(context.Context) error {
	return s.DB.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
