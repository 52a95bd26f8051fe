package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Uniqueq123/app/internal/api"
	"github.com/Uniqueq123/app/internal/backup"
	"github.com/Uniqueq123/app/internal/config"
	"github.com/Uniqueq123/app/internal/handlers"
	"github.com/Uniqueq123/app/internal/presence"
	"github.com/Uniqueq123/app/internal/relay"
	"github.com/Uniqueq123/app/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local message log
	local, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("sqlite open failed")
	}
	defer local.Close()
	logger.Info().Str("path", cfg.SQLitePath).Msg("opened message log")

	// Remote backup store (optional)
	var remote *store.PostgresStore
	if cfg.DatabaseURL != "" {
		remote, err = store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("backup store connection failed")
		}
		defer remote.Close()
		logger.Info().Msg("connected to backup store")
	} else {
		logger.Warn().Msg("DATABASE_URL not set, backup disabled")
	}

	// Redis last-seen mirror (optional)
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Presence and routing
	registry := presence.NewRegistry()
	var lastSeen relay.LastSeenStore
	if redisStore != nil {
		lastSeen = redisStore
	}
	router := relay.NewRouter(registry, local, lastSeen, logger)

	// Backup synchronizer. The restore must finish before the server
	// accepts connections so that live inserts cannot claim ids the
	// backup still owns.
	var syncer *backup.Synchronizer
	if remote != nil {
		syncer = backup.NewSynchronizer(local, remote, cfg.BackupInterval, logger)
		restored, err := syncer.Restore(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("startup restore failed")
		} else if restored > 0 {
			logger.Info().Int("rows", restored).Msg("restored messages from backup")
		}
		go syncer.Run(ctx)
	}

	// HTTP surface
	var remoteStore store.BackupStore
	if remote != nil {
		remoteStore = remote
	}
	h := handlers.NewHandler(local, remoteStore, redisStore, registry, syncer)
	mux := api.NewRouter(logger, h, relay.ServeWS(router, logger))

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Dur("backup_interval", cfg.BackupInterval).
			Msg("starting chat relay server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	cancel() // stops the backup loop; an in-flight push completes or fails

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
