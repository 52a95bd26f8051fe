package relay

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	relayclient "github.com/Uniqueq123/app/clients/go/relay"
	"github.com/Uniqueq123/app/internal/models"
	"github.com/Uniqueq123/app/internal/presence"
)

func startTestServer(t *testing.T) (*httptest.Server, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	router := NewRouter(presence.NewRegistry(), store, nil, zerolog.Nop())
	srv := httptest.NewServer(ServeWS(router, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, store
}

func dialAndAuth(t *testing.T, url, userID string) *relayclient.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := relayclient.Dial(ctx, url, userID)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	// Wait for the authenticated confirmation so ordering against other
	// clients is deterministic.
	waitFor(t, c, "authenticated")
	return c
}

func waitFor(t *testing.T, c *relayclient.Client, event string) relayclient.Frame {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case f, ok := <-c.Events:
			if !ok {
				t.Fatalf("connection closed while waiting for %s", event)
			}
			if f.Event == event {
				return f
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", event)
		}
	}
}

func TestWebsocketMessageRoundTrip(t *testing.T) {
	srv, _ := startTestServer(t)

	alice := dialAndAuth(t, srv.URL, "alice")
	bob := dialAndAuth(t, srv.URL, "bob")

	if err := alice.SendMessage("bob", "hello over the wire", nil); err != nil {
		t.Fatal(err)
	}

	f := waitFor(t, bob, "new_message")
	m, err := relayclient.DecodeMessage(f)
	if err != nil {
		t.Fatal(err)
	}
	if m.SenderID != "alice" || m.Content != "hello over the wire" || m.ID == 0 {
		t.Fatalf("unexpected delivery: %+v", m)
	}

	ack := waitFor(t, alice, "message_sent")
	if ack.Event != "message_sent" {
		t.Fatalf("sender not acked: %+v", ack)
	}
}

func TestWebsocketSnapshotOnAuthenticate(t *testing.T) {
	srv, store := startTestServer(t)

	// Pre-existing history for carol.
	store.msgs = append(store.msgs, models.Message{
		ID: 1, SenderID: "dave", ReceiverID: "carol",
		Content: "earlier", Timestamp: "2024-01-01T00:00:01.000Z",
	})
	store.nextID = 1

	carol := dialAndAuth(t, srv.URL, "carol")

	f := waitFor(t, carol, "all_messages")
	msgs, err := relayclient.DecodeMessages(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Content != "earlier" {
		t.Fatalf("snapshot missing history: %v", msgs)
	}
}

func TestWebsocketSignalPassThrough(t *testing.T) {
	srv, _ := startTestServer(t)

	alice := dialAndAuth(t, srv.URL, "alice")
	bob := dialAndAuth(t, srv.URL, "bob")

	err := alice.Signal("webrtc-offer", "bob", map[string]any{"sdp": "v=0"})
	if err != nil {
		t.Fatal(err)
	}

	f := waitFor(t, bob, "webrtc-offer")
	if f.Event != "webrtc-offer" {
		t.Fatalf("signal renamed: %s", f.Event)
	}
}
