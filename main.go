package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cryptonews/internal/app"
	"cryptonews/internal/config"
	"cryptonews/internal/logger"
	"cryptonews/internal/usecase"
)

const collectYear = 2024

func main() {
	cfg, err := config.Load(slog.Default())
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn("close storage", "error", err)
		}
	}()

	search, err := app.NewSearchService(cfg, log)
	if err != nil {
		log.Error("build search", "error", err)
		os.Exit(1)
	}

	collector := usecase.NewCollectService(app.NewMarketClient(cfg), search, store, collectYear, log)
	log.Info("collection started", "cryptos", cfg.Cryptos, "year", collectYear)
	if err := collector.Run(ctx, cfg.Cryptos); err != nil {
		log.Error("collection finished with errors", "error", err)
		stop()
		os.Exit(1)
	}
	log.Info("collection finished")
}
