package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hardware-management-api/internal"
	"hardware-management-api/internal/config"
	"hardware-management-api/internal/logger"
	"hardware-management-api/internal/scheduler"
	"hardware-management-api/internal/store"
	"hardware-management-api/internal/store/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New(cfg.Environment, cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	st, err := openStore(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}

	srv, err := internal.NewServer(cfg, st, log)
	if err != nil {
		log.Fatal("failed to build server", zap.Error(err))
	}

	sched := scheduler.New(st, srv.Revoked, srv.Notifier, cfg.ReminderSchedule, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server starting",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("environment", cfg.Environment),
			zap.Bool("postgres", cfg.DBDSN != ""),
			zap.Bool("demo_mode", cfg.DemoMode),
			zap.Duration("jwt_expiry", cfg.JWTExpiry))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("scheduler stop failed", zap.Error(err))
	}
	if err := srv.Close(shutdownCtx); err != nil {
		log.Error("server close failed", zap.Error(err))
	}
}

// openStore picks PostgreSQL when DB_DSN is set and the seeded in-memory
// store otherwise. Demo mode seeds an empty database.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.DBDSN == "" {
		log.Warn("DB_DSN not set, using the in-memory store")
		return store.NewSeededMemory(), nil
	}

	pg, err := postgres.Open(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(pg.DB(), logger.Named(log, "migrate")); err != nil {
		_ = pg.Close()
		return nil, err
	}
	if cfg.DemoMode {
		n, err := store.Seed(ctx, pg, time.Now())
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		log.Info("demo data seeded", zap.Int("assets_created", n))
	}
	return pg, nil
}
