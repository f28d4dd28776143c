package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"vetward/internal/config"
	"vetward/internal/database"
	"vetward/internal/pkg/logger"
	"vetward/internal/pkg/metrics"
	"vetward/internal/repository"
	"vetward/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	l := logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		l.Fatal().Err(err).Msg("database connect failed")
	}
	if err := repository.Migrate(db); err != nil {
		l.Fatal().Err(err).Msg("migration failed")
	}

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}
	srv := server.New(cfg, db, l, rec)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		l.Info().
			Str("addr", httpServer.Addr).
			Str("env", cfg.AppEnv).
			Str("clinic_timezone", cfg.ClinicTimezone).
			Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	srv.Hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	l.Info().Msg("server stopped")
}
