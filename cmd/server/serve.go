package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sheikh-saqib/farmer-portal/internal/apiclient"
	"github.com/sheikh-saqib/farmer-portal/internal/config"
	"github.com/sheikh-saqib/farmer-portal/internal/events/kafka"
	"github.com/sheikh-saqib/farmer-portal/internal/events/logsink"
	interfaces "github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/logging"
	"github.com/sheikh-saqib/farmer-portal/internal/market"
	"github.com/sheikh-saqib/farmer-portal/internal/server"
	"github.com/sheikh-saqib/farmer-portal/internal/session"
	"github.com/sheikh-saqib/farmer-portal/internal/storage/memory"
	"github.com/sheikh-saqib/farmer-portal/internal/storage/postgres"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := market.Load(cfg.Market.CatalogFile)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	publisher, closePublisher := openPublisher(cfg.Events, logger)
	defer closePublisher.Close()

	backend := apiclient.New(cfg.Backend.Endpoints, &http.Client{Timeout: cfg.Backend.Timeout}, logger)

	sessions := session.NewManager(session.Config{
		InitialBalance:        cfg.Ledger.InitialBalance,
		CreditApprovedFunding: cfg.Ledger.CreditApprovedFunding,
		ToastDuration:         cfg.Notify.ToastDuration,
		Catalog:               catalog,
		Backend:               backend,
		Store:                 store,
		Events:                publisher,
		Logger:                logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(sessions, catalog, logger).Router(cfg.Server.Mode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Str("events", cfg.Events.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		evictIdle(gctx, sessions, cfg.Server.SessionIdle, logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		logger.Info().Msg("shutting down")
		errHTTP := srv.Shutdown(shutdownCtx)
		errSessions := sessions.Close(shutdownCtx)
		return errors.Join(errHTTP, errSessions)
	})
	return g.Wait()
}

func evictIdle(ctx context.Context, sessions *session.Manager, maxIdle time.Duration, logger zerolog.Logger) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Evict(ctx, maxIdle); n > 0 {
				logger.Debug().Int("evicted", n).Msg("idle sessions evicted")
			}
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(ctx context.Context, cfg config.StorageConfig) (interfaces.SessionStore, io.Closer, error) {
	switch cfg.Driver {
	case config.StoragePostgres:
		store, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return memory.NewMemorySessionStore(), nopCloser{}, nil
	}
}

func openPublisher(cfg config.EventsConfig, logger zerolog.Logger) (interfaces.EventPublisher, io.Closer) {
	switch cfg.Driver {
	case config.EventsKafka:
		p := kafka.NewPublisher(cfg.Brokers, cfg.Topic)
		return p, p
	case config.EventsNone:
		return nil, nopCloser{}
	default:
		return logsink.NewPublisher(logger), nopCloser{}
	}
}
