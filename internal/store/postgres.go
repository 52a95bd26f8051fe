package store

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Uniqueq123/app/internal/models"
)

// PostgresStore is the remote backup store, a Postgres projection of
// the local message log keyed by message_id.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the backup database and ensures the
// backup table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates the backup table if it doesn't exist. message_id
// is the unique conflict key that makes pushes idempotent.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS chat_messages_backup (
			message_id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL,
			receiver_id TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			client_id TEXT,
			is_call_record BOOLEAN NOT NULL DEFAULT FALSE,
			call_type TEXT,
			call_duration INTEGER,
			sqlite_id TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// UpsertRecords writes a batch of backup records. Conflicting keys are
// left untouched, so re-pushing an already-backed-up batch is a no-op.
func (s *PostgresStore) UpsertRecords(ctx context.Context, recs []models.BackupRecord) error {
	if len(recs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range recs {
		batch.Queue(`
			INSERT INTO chat_messages_backup (message_id, sender_id, receiver_id, content, timestamp, client_id, is_call_record, call_type, call_duration, sqlite_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (message_id) DO NOTHING
		`,
			r.MessageID,
			r.SenderID,
			r.ReceiverID,
			r.Content,
			r.Timestamp,
			textOrNull(r.ClientID),
			r.IsCallRecord,
			textOrNull(r.CallType),
			durationOrNull(r.CallDuration, r.IsCallRecord),
			r.SQLiteID,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range recs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// FetchAll returns every backup record ordered ascending by timestamp.
func (s *PostgresStore) FetchAll(ctx context.Context) ([]models.BackupRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT message_id, sender_id, receiver_id, content, timestamp, client_id, is_call_record, call_type, call_duration, sqlite_id
		FROM chat_messages_backup
		ORDER BY timestamp ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.BackupRecord
	for rows.Next() {
		var (
			r            models.BackupRecord
			clientID     sql.NullString
			callType     sql.NullString
			callDuration sql.NullInt64
		)
		err := rows.Scan(
			&r.MessageID,
			&r.SenderID,
			&r.ReceiverID,
			&r.Content,
			&r.Timestamp,
			&clientID,
			&r.IsCallRecord,
			&callType,
			&callDuration,
			&r.SQLiteID,
		)
		if err != nil {
			return nil, err
		}
		r.ClientID = clientID.String
		r.CallType = callType.String
		r.CallDuration = int(callDuration.Int64)
		recs = append(recs, r)
	}

	return recs, rows.Err()
}

func textOrNull(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// durationOrNull mirrors nullDuration: call records keep an explicit
// zero, plain messages store NULL.
func durationOrNull(n int, isCall bool) *int {
	if !isCall && n == 0 {
		return nil
	}
	return &n
}
