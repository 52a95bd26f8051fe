// Package backup reconciles the local message log with the remote
// backup store: a fixed-interval watermark push plus a startup restore.
package backup

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Uniqueq123/app/internal/metrics"
	"github.com/Uniqueq123/app/internal/models"
)

// LocalStore is the slice of the durable store the synchronizer needs.
type LocalStore interface {
	MessagesSince(ctx context.Context, timestamp string) ([]models.Message, error)
	RestoreMessage(ctx context.Context, m models.Message) (bool, error)
}

// RemoteStore is the remote backup target.
type RemoteStore interface {
	UpsertRecords(ctx context.Context, recs []models.BackupRecord) error
	FetchAll(ctx context.Context) ([]models.BackupRecord, error)
}

// Synchronizer pushes unbacked-up rows to the remote store on a fixed
// interval and repairs local gaps from the remote store at startup.
// The watermark is in-memory only; after a restart the restore pass
// plus idempotent upserts cover the rows pushed before the crash.
type Synchronizer struct {
	local    LocalStore
	remote   RemoteStore
	interval time.Duration
	logger   zerolog.Logger

	mu        sync.Mutex
	watermark string
}

// NewSynchronizer creates a synchronizer with the watermark at the
// epoch origin.
func NewSynchronizer(local LocalStore, remote RemoteStore, interval time.Duration, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		local:     local,
		remote:    remote,
		interval:  interval,
		logger:    logger.With().Str("component", "backup").Logger(),
		watermark: models.EpochOrigin,
	}
}

// Run performs an initial push, then pushes on the configured interval
// until ctx is cancelled. All failures are logged and retried on the
// next tick; none are fatal. Restore is not called here: it must run
// to completion before live writes begin, or a fresh store can hand a
// new message an id the backup still owns.
func (s *Synchronizer) Run(ctx context.Context) {
	if err := s.PushOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial backup push failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.PushOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("backup push failed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// PushOnce pushes every row newer than the watermark. The watermark
// advances to the newest pushed timestamp only after the remote store
// confirms the batch, so a failed push leaves the same candidate set
// for the next tick.
func (s *Synchronizer) PushOnce(ctx context.Context) error {
	s.mu.Lock()
	wm := s.watermark
	s.mu.Unlock()

	msgs, err := s.local.MessagesSince(ctx, wm)
	if err != nil {
		metrics.BackupPushes.WithLabelValues("error").Inc()
		return err
	}
	if len(msgs) == 0 {
		metrics.BackupPushes.WithLabelValues("empty").Inc()
		s.logger.Debug().Str("watermark", wm).Msg("no new messages to back up")
		return nil
	}

	batchID := uuid.NewString()
	recs := make([]models.BackupRecord, len(msgs))
	max := wm
	for i, m := range msgs {
		recs[i] = models.BackupRecordFrom(m)
		if m.Timestamp > max {
			max = m.Timestamp
		}
	}

	if err := s.remote.UpsertRecords(ctx, recs); err != nil {
		metrics.BackupPushes.WithLabelValues("error").Inc()
		s.logger.Error().
			Err(err).
			Str("batch_id", batchID).
			Int("rows", len(recs)).
			Str("watermark", wm).
			Msg("remote push failed, watermark unchanged")
		return err
	}

	s.mu.Lock()
	s.watermark = max
	s.mu.Unlock()

	metrics.BackupPushes.WithLabelValues("ok").Inc()
	metrics.BackupRowsPushed.Add(float64(len(recs)))
	s.logger.Info().
		Str("batch_id", batchID).
		Int("rows", len(recs)).
		Str("watermark", max).
		Msg("backed up messages")
	return nil
}

// Restore pulls every remote record into the local store, skipping ids
// that already exist. Row-level failures are logged and skipped; only
// a failed remote read is returned as an error. Returns the number of
// rows actually inserted.
func (s *Synchronizer) Restore(ctx context.Context) (int, error) {
	recs, err := s.remote.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		s.logger.Info().Msg("no messages to restore from backup")
		return 0, nil
	}

	restored := 0
	failed := 0
	for _, r := range recs {
		m, err := r.Message()
		if err != nil {
			metrics.RestoreRows.WithLabelValues("failed").Inc()
			s.logger.Warn().Err(err).Str("message_id", r.MessageID).Msg("skipping malformed backup record")
			failed++
			continue
		}
		inserted, err := s.local.RestoreMessage(ctx, m)
		if err != nil {
			metrics.RestoreRows.WithLabelValues("failed").Inc()
			s.logger.Warn().Err(err).Int64("id", m.ID).Msg("failed to restore message")
			failed++
			continue
		}
		if inserted {
			metrics.RestoreRows.WithLabelValues("restored").Inc()
			restored++
		} else {
			metrics.RestoreRows.WithLabelValues("present").Inc()
		}
	}

	s.logger.Info().
		Int("total", len(recs)).
		Int("restored", restored).
		Int("failed", failed).
		Msg("restore pass complete")
	return restored, nil
}

// Watermark returns the current backup watermark.
func (s *Synchronizer) Watermark() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}
