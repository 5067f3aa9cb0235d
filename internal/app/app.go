// Package app wires configuration into the services used by the binaries.
package app

import (
	"context"
	"log/slog"

	"cryptonews/internal/adapter/browser"
	"cryptonews/internal/adapter/coincap"
	"cryptonews/internal/adapter/google"
	"cryptonews/internal/adapter/httpclient"
	mongoAdapter "cryptonews/internal/adapter/mongo"
	"cryptonews/internal/adapter/postgres"
	"cryptonews/internal/config"
	"cryptonews/internal/normalizer"
	"cryptonews/internal/repository"
	"cryptonews/internal/usecase"
)

// NewSearchService builds the browser-backed news search for one window at a time.
func NewSearchService(cfg *config.Config, logger *slog.Logger) (*usecase.SearchService, error) {
	policy, err := usecase.ParseDatePolicy(cfg.Search.DatePolicy)
	if err != nil {
		return nil, err
	}

	opener := browser.Opener(browser.Options{
		ExecPath:     cfg.Browser.ExecPath,
		FetchTimeout: cfg.Browser.FetchTimeout,
		UserAgent:    cfg.Browser.UserAgent,
		Logger:       logger,
	})
	pager := google.NewPager(opener, google.NewExtractor(logger),
		google.WithHost(cfg.Search.Host),
		google.WithMaxPages(cfg.Search.MaxPages),
		google.WithDelays(cfg.Search.PageDelay, cfg.Search.FinalDelay),
		google.WithLogger(logger),
	)
	return usecase.NewSearchService(pager, normalizer.New(), policy, logger), nil
}

func NewMarketClient(cfg *config.Config) *coincap.Client {
	return coincap.NewClient(httpclient.NewClient(cfg.CoinCap.Timeout), cfg.CoinCap.BaseURL, cfg.CoinCap.APIKey)
}

// OpenStore connects the configured storage driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}
	switch cfg.Storage.Driver {
	case "mongo":
		client, err := mongoAdapter.NewClient(ctx, cfg.Storage.MongoURI)
		if err != nil {
			return nil, err
		}
		return mongoAdapter.NewStore(client, cfg.Storage.DBName, cfg.Storage.CollectionName, logger), nil
	default:
		st, err := postgres.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close(ctx)
			return nil, err
		}
		return st, nil
	}
}
