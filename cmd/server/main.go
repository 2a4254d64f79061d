package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jimdaga/kamus/internal/config"
	"github.com/jimdaga/kamus/internal/database"
	"github.com/jimdaga/kamus/internal/definitions"
	"github.com/jimdaga/kamus/internal/events"
	"github.com/jimdaga/kamus/internal/logging"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/jimdaga/kamus/internal/streams"
	"github.com/jimdaga/kamus/internal/webhook"
	"github.com/jimdaga/kamus/internal/worker"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	db, err := database.Init(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, logger); err != nil {
		return err
	}

	if cfg.SeedDevData {
		if cfg.IsProduction() {
			logger.Warn("SEED_DEV_DATA ignored in production")
		} else if err := database.SeedDevData(db, logger, cfg.AdminEmail); err != nil {
			return err
		}
	}

	if err := initEncryption(cfg, logger); err != nil {
		return err
	}

	defs := definitions.NewStore(db)
	notifier := webhook.NewClient(cfg.ModerationWebhookURL, cfg.WebhookSecret, cfg.WebhookStubMode, logger)

	if !cfg.ServerEnabled() {
		stopScheduler, err := worker.StartScheduler(cfg, logger)
		if err != nil {
			return err
		}
		defer stopScheduler()

		logger.Info("running in worker mode")
		return worker.Run(cfg, logger, defs, notifier)
	}

	bus := events.NewBus(logger)
	if cfg.RedisURL != "" {
		stop, err := startBackground(cfg, logger, bus, defs, notifier)
		if err != nil {
			return err
		}
		defer stop()
	} else {
		logger.Warn("REDIS_URL not set, background jobs and event stream disabled")
	}

	return serve(cfg, logger, db, bus)
}

func initEncryption(cfg *config.Config, logger *slog.Logger) error {
	if cfg.EncryptionKey == "" {
		if cfg.IsProduction() {
			return errors.New("ENCRYPTION_KEY is required in production")
		}
		logger.Warn("ENCRYPTION_KEY not set, OAuth tokens are stored unencrypted")
		return nil
	}
	return models.InitEncryption(cfg.EncryptionKey)
}

// startBackground wires the Redis-backed subscribers and, in "all" mode, the embedded worker.
func startBackground(cfg *config.Config, logger *slog.Logger, bus *events.Bus, defs *definitions.Store, notifier worker.Notifier) (stop func(), err error) {
	var stops []func()
	stop = func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	publisher, err := streams.NewPublisher(cfg.RedisURL, logger)
	if err != nil {
		return nil, err
	}
	stops = append(stops, func() { publisher.Close() })
	stops = append(stops, publisher.Subscribe(bus))

	client, err := worker.NewClient(cfg.RedisURL, logger)
	if err != nil {
		stop()
		return nil, err
	}
	stops = append(stops, func() { client.Close() })
	stops = append(stops, client.Subscribe(bus))

	if cfg.WorkerEnabled() {
		stopWorker, err := worker.Start(cfg, logger, defs, notifier)
		if err != nil {
			stop()
			return nil, err
		}
		stops = append(stops, stopWorker)

		stopScheduler, err := worker.StartScheduler(cfg, logger)
		if err != nil {
			stop()
			return nil, err
		}
		stops = append(stops, stopScheduler)
	}

	return stop, nil
}

func serve(cfg *config.Config, logger *slog.Logger, db *gorm.DB, bus *events.Bus) error {
	router, err := newRouter(cfg, logger, db, bus)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
