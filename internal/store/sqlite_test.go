package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Uniqueq123/app/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestInsertAssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		m := models.Message{SenderID: "a", ReceiverID: "b", Content: "hi"}
		id, err := s.InsertMessage(ctx, &m)
		if err != nil {
			t.Fatal(err)
		}
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		if m.ID != id {
			t.Fatalf("id not written back: %d vs %d", m.ID, id)
		}
		if m.Timestamp == "" {
			t.Fatal("timestamp not assigned")
		}
		last = id
	}

	count, err := s.CountMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Fatalf("expected 5 rows, got %d", count)
	}
}

func TestMessagesForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, pair := range [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}} {
		m := models.Message{SenderID: pair[0], ReceiverID: pair[1], Content: "x"}
		if _, err := s.InsertMessage(ctx, &m); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := s.MessagesForUser(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages for a, got %d", len(msgs))
	}
	if msgs[0].Timestamp > msgs[1].Timestamp {
		t.Fatal("history not ascending by timestamp")
	}

	// Unknown user yields an empty, non-nil history.
	empty, err := s.MessagesForUser(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty slice, got %v", empty)
	}
}

func TestMessagesSinceIsStrictlyGreater(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m1 := models.Message{SenderID: "a", ReceiverID: "b", Content: "one"}
	if _, err := s.InsertMessage(ctx, &m1); err != nil {
		t.Fatal(err)
	}
	m2 := models.Message{SenderID: "a", ReceiverID: "b", Content: "two"}
	if _, err := s.InsertMessage(ctx, &m2); err != nil {
		t.Fatal(err)
	}

	all, err := s.MessagesSince(ctx, models.EpochOrigin)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows since epoch, got %d", len(all))
	}

	// The boundary row itself is excluded.
	after, err := s.MessagesSince(ctx, m1.Timestamp)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range after {
		if m.ID == m1.ID && m.Timestamp == m1.Timestamp {
			t.Fatal("since query returned the boundary row")
		}
	}

	none, err := s.MessagesSince(ctx, m2.Timestamp)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no rows past the newest timestamp, got %d", len(none))
	}
}

func TestRestoreMessageIgnoresExistingIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := models.Message{
		ID:         42,
		SenderID:   "a",
		ReceiverID: "b",
		Content:    "restored",
		Timestamp:  "2024-01-01T00:00:00.000Z",
		ClientID:   "c-1",
	}

	inserted, err := s.RestoreMessage(ctx, m)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Fatal("first restore should insert")
	}

	inserted, err = s.RestoreMessage(ctx, m)
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Fatal("second restore must be ignored")
	}

	count, err := s.CountMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 row, got %d", count)
	}

	msgs, err := s.MessagesForUser(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].ID != 42 || msgs[0].ClientID != "c-1" {
		t.Fatalf("restored row mismatch: %+v", msgs)
	}
}

func TestInsertAfterRestoreContinuesPastRestoredIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	restored := models.Message{
		ID:         9,
		SenderID:   "a",
		ReceiverID: "b",
		Content:    "historical",
		Timestamp:  "2024-01-01T00:00:09.000Z",
	}
	if _, err := s.RestoreMessage(ctx, restored); err != nil {
		t.Fatal(err)
	}

	// A fresh insert must not reuse an id the restore just claimed.
	live := models.Message{SenderID: "a", ReceiverID: "b", Content: "live"}
	id, err := s.InsertMessage(ctx, &live)
	if err != nil {
		t.Fatal(err)
	}
	if id <= restored.ID {
		t.Fatalf("live insert got id %d, want greater than restored max %d", id, restored.ID)
	}

	msgs, err := s.MessagesForUser(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected both rows in history, got %d", len(msgs))
	}
	if msgs[0].Content != "historical" {
		t.Fatalf("restored row missing from history: %+v", msgs)
	}
}

func TestCallRecordRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := models.Message{
		SenderID:     "a",
		ReceiverID:   "b",
		Content:      "Video call",
		IsCallRecord: true,
		CallType:     "video",
		CallDuration: 73,
	}
	if _, err := s.InsertMessage(ctx, &m); err != nil {
		t.Fatal(err)
	}

	msgs, err := s.MessagesForUser(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	got := msgs[0]
	if !got.IsCallRecord || got.CallType != "video" || got.CallDuration != 73 {
		t.Fatalf("call metadata lost: %+v", got)
	}
}

func TestZeroDurationCallRecordKeepsValue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// An instantly rejected call is a real 0-second call, not "no
	// duration".
	call := models.Message{
		SenderID:     "a",
		ReceiverID:   "b",
		Content:      "Voice call",
		IsCallRecord: true,
		CallType:     "voice",
		CallDuration: 0,
	}
	if _, err := s.InsertMessage(ctx, &call); err != nil {
		t.Fatal(err)
	}
	plain := models.Message{SenderID: "a", ReceiverID: "b", Content: "hi"}
	if _, err := s.InsertMessage(ctx, &plain); err != nil {
		t.Fatal(err)
	}

	var isNull bool
	if err := s.db.QueryRow(`SELECT callDuration IS NULL FROM messages WHERE id = ?`, call.ID).Scan(&isNull); err != nil {
		t.Fatal(err)
	}
	if isNull {
		t.Fatal("zero-duration call record collapsed to NULL")
	}
	if err := s.db.QueryRow(`SELECT callDuration IS NULL FROM messages WHERE id = ?`, plain.ID).Scan(&isNull); err != nil {
		t.Fatal(err)
	}
	if !isNull {
		t.Fatal("plain message should carry no duration")
	}

	// Same rule on the restore path.
	backed := models.Message{
		ID:           50,
		SenderID:     "a",
		ReceiverID:   "b",
		Content:      "Voice call",
		Timestamp:    "2024-01-01T00:00:50.000Z",
		IsCallRecord: true,
		CallType:     "voice",
	}
	if _, err := s.RestoreMessage(ctx, backed); err != nil {
		t.Fatal(err)
	}
	if err := s.db.QueryRow(`SELECT callDuration IS NULL FROM messages WHERE id = ?`, backed.ID).Scan(&isNull); err != nil {
		t.Fatal(err)
	}
	if isNull {
		t.Fatal("restored zero-duration call record collapsed to NULL")
	}
}
