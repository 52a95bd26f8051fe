package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Uniqueq123/app/internal/models"
)

// SQLiteStore is the durable local message log.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the message database.
// If dbPath is empty, defaults to "./data/chat_messages.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chat_messages.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates the messages table if it doesn't exist. Column
// names match the wire field names so restored rows round-trip exactly.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		senderId TEXT NOT NULL,
		receiverId TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		clientId TEXT,
		isCallRecord INTEGER NOT NULL DEFAULT 0,
		callType TEXT,
		callDuration INTEGER,
		audioData TEXT,
		messageType TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp);
	CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(senderId);
	CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiverId);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertMessage appends a message to the log. The row id and the server
// timestamp are assigned here and written back into m. Ids are strictly
// increasing; timestamps are non-decreasing in id order because this is
// the only writer of new rows.
func (s *SQLiteStore) InsertMessage(ctx context.Context, m *models.Message) (int64, error) {
	m.Timestamp = models.Now()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (senderId, receiverId, content, timestamp, clientId, isCallRecord, callType, callDuration, audioData, messageType)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.SenderID,
		m.ReceiverID,
		m.Content,
		m.Timestamp,
		nullStr(m.ClientID),
		boolInt(m.IsCallRecord),
		nullStr(m.CallType),
		nullDuration(m.CallDuration, m.IsCallRecord),
		nullStr(m.AudioData),
		nullStr(m.MessageType),
	)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	m.ID = id
	return id, nil
}

// MessagesForUser returns the full history where the user is sender or
// receiver, ascending by timestamp. An empty history yields an empty
// slice, not nil.
func (s *SQLiteStore) MessagesForUser(ctx context.Context, userID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, senderId, receiverId, content, timestamp, clientId, isCallRecord, callType, callDuration, audioData, messageType
		FROM messages
		WHERE senderId = ? OR receiverId = ?
		ORDER BY timestamp ASC, id ASC
	`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MessagesSince returns rows with timestamp strictly greater than the
// given watermark, ascending. Used by the backup synchronizer.
func (s *SQLiteStore) MessagesSince(ctx context.Context, timestamp string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, senderId, receiverId, content, timestamp, clientId, isCallRecord, callType, callDuration, audioData, messageType
		FROM messages
		WHERE timestamp > ?
		ORDER BY timestamp ASC, id ASC
	`, timestamp)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// CountMessages returns the total number of stored messages.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// RestoreMessage inserts a row with its original id, skipping ids that
// already exist. Reports whether a row was actually inserted. Used by
// the startup restore pass.
func (s *SQLiteStore) RestoreMessage(ctx context.Context, m models.Message) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages (id, senderId, receiverId, content, timestamp, clientId, isCallRecord, callType, callDuration, audioData, messageType)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID,
		m.SenderID,
		m.ReceiverID,
		m.Content,
		m.Timestamp,
		nullStr(m.ClientID),
		boolInt(m.IsCallRecord),
		nullStr(m.CallType),
		nullDuration(m.CallDuration, m.IsCallRecord),
		nullStr(m.AudioData),
		nullStr(m.MessageType),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	msgs := []models.Message{}
	for rows.Next() {
		var (
			m            models.Message
			clientID     sql.NullString
			isCallRecord int
			callType     sql.NullString
			callDuration sql.NullInt64
			audioData    sql.NullString
			messageType  sql.NullString
		)
		err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Content,
			&m.Timestamp,
			&clientID,
			&isCallRecord,
			&callType,
			&callDuration,
			&audioData,
			&messageType,
		)
		if err != nil {
			return nil, err
		}
		m.ClientID = clientID.String
		m.IsCallRecord = isCallRecord != 0
		m.CallType = callType.String
		m.CallDuration = int(callDuration.Int64)
		m.AudioData = audioData.String
		m.MessageType = messageType.String
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullDuration stores NULL for plain messages but keeps an explicit
// zero for call records: an instantly rejected call has duration 0.
func nullDuration(n int, isCall bool) any {
	if isCall {
		return n
	}
	if n == 0 {
		return nil
	}
	return n
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
