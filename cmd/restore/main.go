// Command restore runs the backup restore pass once: every record in
// the remote backup store is pulled into the local message log,
// skipping rows that already exist. Useful after data loss when the
// server itself is not running.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Uniqueq123/app/internal/backup"
	"github.com/Uniqueq123/app/internal/config"
	"github.com/Uniqueq123/app/internal/store"
)

func main() {
	cfg := config.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required for restore")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	local, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("sqlite open failed")
	}
	defer local.Close()

	remote, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("backup store connection failed")
	}
	defer remote.Close()

	sync := backup.NewSynchronizer(local, remote, cfg.BackupInterval, logger)
	restored, err := sync.Restore(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("restore failed")
	}

	logger.Info().Int("restored", restored).Msg("restore finished")
}
