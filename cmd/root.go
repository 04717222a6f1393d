// Package cmd defines the graver command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/cemetery"
	"github.com/ChaseHampton/graver/internal/client"
	"github.com/ChaseHampton/graver/internal/config"
	"github.com/ChaseHampton/graver/internal/db"
	"github.com/ChaseHampton/graver/internal/logging"
	"github.com/ChaseHampton/graver/internal/memorial"
	"github.com/ChaseHampton/graver/internal/metrics"
	"github.com/ChaseHampton/graver/internal/search"
)

var version = "dev"

type appKeyType string

const appKey appKeyType = "app"

// App holds the services shared by every subcommand.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Driver     *client.Driver
	Memorials  *memorial.Parser
	Cemeteries *cemetery.Parser
	Searcher   *search.Worker

	storeOnce sync.Once
	store     *db.Store
	storeErr  error

	metricsServer *http.Server
}

func newApp(cfg config.Config, logger *zap.Logger) *App {
	driver := client.NewDriver(client.OptionsFromConfig(cfg.HTTP, logger))
	return &App{
		Config:     cfg,
		Logger:     logger,
		Driver:     driver,
		Memorials:  memorial.NewParser(driver, logger),
		Cemeteries: cemetery.NewParser(driver, logger),
		Searcher: search.NewWorker(driver, search.Options{
			BaseURL:  cfg.Site.BaseURL,
			PageSize: cfg.Search.PageSize,
			Logger:   logger,
		}),
	}
}

// Store opens the database on first use.
func (a *App) Store(ctx context.Context) (*db.Store, error) {
	a.storeOnce.Do(func() {
		a.store, a.storeErr = db.Open(ctx, a.Config.DB)
		if a.storeErr == nil {
			a.Logger.Debug("database opened", zap.String("driver", a.Config.DB.Driver), zap.String("dsn", a.Config.DB.DSN))
		}
	})
	return a.store, a.storeErr
}

func (a *App) serveMetrics() {
	if a.Config.Metrics.Addr == "" {
		return
	}
	metrics.Init()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metricsServer = &http.Server{Addr: a.Config.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	a.Logger.Info("serving metrics", zap.String("addr", a.Config.Metrics.Addr))
}

func (a *App) Close() {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.Logger.Warn("failed to stop metrics server", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Warn("failed to close database", zap.Error(err))
		}
	}
	a.Logger.Debug("http driver finished", zap.Int("retries", a.Driver.Retries()))
	_ = a.Logger.Sync()
}

type rootOptions struct {
	configFile string
	dbDSN      string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "graver",
		Short:         "Scrape memorials and cemeteries from Find a Grave",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			if opts.dbDSN != "" {
				cfg.DB.DSN = opts.dbDSN
			}
			if opts.logLevel != "" {
				cfg.Logging.Level = opts.logLevel
			}

			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return err
			}
			logger = logger.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))

			app := newApp(cfg, logger)
			app.serveMetrics()
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, toml or json)")
	cmd.PersistentFlags().StringVar(&opts.dbDSN, "db", "", "database name (results will be stored here)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	for _, sub := range []*cobra.Command{
		newScrapeURLCmd(),
		newScrapeFileCmd(),
		newSearchCmd(),
		newCemeteryCmd(),
		newShowCmd(),
	} {
		cmd.AddCommand(closingApp(sub))
	}
	return cmd
}

// closingApp closes the App once sub's RunE returns, whether or not it failed.
func closingApp(sub *cobra.Command) *cobra.Command {
	run := sub.RunE
	sub.RunE = func(cmd *cobra.Command, args []string) error {
		defer func() {
			if app, ok := cmd.Context().Value(appKey).(*App); ok && app != nil {
				app.Close()
			}
		}()
		return run(cmd, args)
	}
	return sub
}

func resolveApp(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey).(*App)
	if !ok || app == nil {
		return nil, errors.New("application services not initialized")
	}
	return app, nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
