package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"cryptonews/internal/app"
	"cryptonews/internal/config"
	"cryptonews/internal/domain"
	"cryptonews/internal/handler/httpapi"
	"cryptonews/internal/logger"
	"cryptonews/internal/repository"
	"cryptonews/internal/usecase"
)

func main() {
	root := &cobra.Command{
		Use:           "scraper-cli",
		Short:         "Search dated news and collect crypto market data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(searchCMD(), collectCMD(), serveCMD())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(slog.Default())
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func searchCMD() *cobra.Command {
	var (
		from, to string
		save     bool
		cryptoID int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Crawl every result page of one query and date window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			fromDate, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			toDate, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			search, err := app.NewSearchService(cfg, log)
			if err != nil {
				return err
			}
			table, err := search.Execute(ctx, domain.SearchWindow{Query: args[0], From: fromDate, To: toDate})
			if err != nil {
				return err
			}
			printTable(cmd, table)

			if !save {
				return nil
			}
			store, err := app.OpenStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())
			runID := uuid.NewString()
			if err := store.SaveNews(ctx, cryptoID, runID, table); err != nil {
				return err
			}
			log.Info("news saved", "run_id", runID, "rows", table.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day of the window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day of the window (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&save, "save", false, "store the rows with the configured storage driver")
	cmd.Flags().IntVar(&cryptoID, "crypto-id", 0, "cryptoId stored with the rows when --save is set")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func collectCMD() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Store details, prices, markets and news of every configured crypto",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			store, err := app.OpenStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			search, err := app.NewSearchService(cfg, log)
			if err != nil {
				return err
			}
			return usecase.NewCollectService(app.NewMarketClient(cfg), search, store, year, log).Run(ctx, cfg.Cryptos)
		},
	}
	cmd.Flags().IntVar(&year, "year", 2024, "calendar year to collect")
	return cmd
}

func serveCMD() *cobra.Command {
	var withStore bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /search over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			var store repository.Store
			if withStore {
				if store, err = app.OpenStore(ctx, cfg, log); err != nil {
					return err
				}
				defer store.Close(context.Background())
			}
			search, err := app.NewSearchService(cfg, log)
			if err != nil {
				return err
			}

			e := echo.New()
			e.HideBanner = true
			httpapi.NewScrapeHandler(search, store, log).Register(e)

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = e.Shutdown(shutdownCtx)
			}()

			log.Info("http server listening", "addr", cfg.Server.Addr)
			if err := e.Start(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withStore, "store", false, "open the configured storage so requests may set save")
	return cmd
}

func printTable(cmd *cobra.Command, table domain.ResultTable) {
	out := cmd.OutOrStdout()
	if table.Len() == 0 {
		fmt.Fprintln(out, "no articles found")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tDATE\tMEDIA\tTITLE\tLINK")
	for _, r := range table.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Row, r.NewsDate(), r.Media, r.Title, r.Link)
	}
	w.Flush()
	if table.Dropped > 0 {
		fmt.Fprintf(out, "%d articles dropped: unrecognized date\n", table.Dropped)
	}
}
