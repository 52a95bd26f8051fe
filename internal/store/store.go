package store

import (
	"context"

	"github.com/Uniqueq123/app/internal/models"
)

// MessageStore is the durable local message log. SQLiteStore implements
// this interface; the relay router and backup synchronizer depend on it
// rather than on the concrete type.
type MessageStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Write path. InsertMessage assigns the row id and server timestamp
	// and fills them into m.
	InsertMessage(ctx context.Context, m *models.Message) (int64, error)

	// Read paths
	MessagesForUser(ctx context.Context, userID string) ([]models.Message, error)
	MessagesSince(ctx context.Context, timestamp string) ([]models.Message, error)
	CountMessages(ctx context.Context) (int64, error)

	// RestoreMessage inserts a row with its original id, skipping ids
	// that already exist. Reports whether a row was actually inserted.
	RestoreMessage(ctx context.Context, m models.Message) (bool, error)
}

// BackupStore is the remote projection of the message log.
type BackupStore interface {
	Close()
	Ping(ctx context.Context) error

	// UpsertRecords writes a batch keyed by message_id; records whose
	// key already exists are treated as already backed up, not errors.
	UpsertRecords(ctx context.Context, recs []models.BackupRecord) error

	// FetchAll returns every backup record ordered ascending by
	// timestamp.
	FetchAll(ctx context.Context) ([]models.BackupRecord, error)
}
