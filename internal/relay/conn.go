package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/Uniqueq123/app/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBufferSize = 64
)

// Conn wraps one websocket connection. Reads happen on a single
// goroutine, which gives per-connection event ordering; writes go
// through a buffered channel drained by the write pump.
type Conn struct {
	id     string
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger zerolog.Logger

	// userID is owned by the reader goroutine; it is set during
	// authenticate handling and read only from that same loop.
	userID string
}

func newConn(ws *websocket.Conn, logger zerolog.Logger) *Conn {
	id := ulid.Make().String()
	return &Conn{
		id:     id,
		ws:     ws,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger.With().Str("conn", id).Logger(),
	}
}

// ID returns the connection's opaque handle.
func (c *Conn) ID() string { return c.id }

// UserID returns the authenticated user, or "" before authenticate.
func (c *Conn) UserID() string { return c.userID }

// SetUserID records the authenticated user.
func (c *Conn) SetUserID(userID string) { c.userID = userID }

// Send enqueues a frame for delivery. A closed connection or a full
// buffer drops the frame and reports false; slow consumers lose frames
// rather than stalling the relay.
func (c *Conn) Send(event string, data any) bool {
	f := struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: event, Data: data}

	b, err := json.Marshal(f)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- b:
		return true
	default:
		c.logger.Warn().Str("event", event).Msg("send buffer full, frame dropped")
		return false
	}
}

// readLoop consumes inbound frames until the peer goes away, then
// unregisters the connection.
func (c *Conn) readLoop(ctx context.Context, router *Router) {
	defer func() {
		close(c.done)
		router.HandleDisconnect(ctx, c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}

		var f models.Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.logger.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}
		router.HandleFrame(ctx, c, f)
	}
}

// writeLoop drains the send channel and keeps the connection alive
// with pings.
func (c *Conn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case b := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
