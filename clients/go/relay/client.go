// Package relay provides a websocket client for the chat relay server.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned when the client connection has been closed.
var ErrClosed = errors.New("relay: connection closed")

// Frame is the wire envelope for every event in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message mirrors the server's message shape.
type Message struct {
	ID           int64  `json:"id"`
	SenderID     string `json:"senderId"`
	ReceiverID   string `json:"receiverId"`
	Content      string `json:"content"`
	Timestamp    string `json:"timestamp"`
	ClientID     string `json:"clientId,omitempty"`
	IsCallRecord bool   `json:"isCallRecord"`
	CallType     string `json:"callType,omitempty"`
	CallDuration int    `json:"callDuration,omitempty"`
	AudioData    string `json:"audioData,omitempty"`
	MessageType  string `json:"messageType,omitempty"`
}

// SendOptions carries the optional fields of a send.
type SendOptions struct {
	ClientID     string
	IsCallRecord bool
	CallType     string
	CallDuration int
	AudioData    string
	MessageType  string
}

// Client is a chat relay websocket client. Inbound frames are delivered
// on Events; the client does not interpret them beyond decoding the
// envelope.
type Client struct {
	UserID string
	Events <-chan Frame

	ws     *websocket.Conn
	events chan Frame

	mu     sync.Mutex
	closed bool
}

// Dial connects to the relay at baseURL (http(s) or ws(s) scheme) and
// authenticates as userID. The caller should drain Events.
func Dial(ctx context.Context, baseURL, userID string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("relay: unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		UserID: userID,
		ws:     ws,
		events: make(chan Frame, 64),
	}
	c.Events = c.events

	if err := c.emit("authenticate", userID); err != nil {
		ws.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

// SendMessage sends a chat message to receiverID.
func (c *Client) SendMessage(receiverID, content string, opts *SendOptions) error {
	payload := map[string]any{
		"senderId":   c.UserID,
		"receiverId": receiverID,
		"content":    content,
	}
	if opts != nil {
		if opts.ClientID != "" {
			payload["clientId"] = opts.ClientID
		}
		if opts.IsCallRecord {
			payload["isCallRecord"] = true
			payload["callType"] = opts.CallType
			payload["callDuration"] = opts.CallDuration
		}
		if opts.AudioData != "" {
			payload["audioData"] = opts.AudioData
			payload["messageType"] = opts.MessageType
		}
	}
	return c.emit("send_message", payload)
}

// Typing signals that the user started typing to receiverID.
func (c *Client) Typing(receiverID string) error {
	return c.emit("typing", map[string]string{"receiverId": receiverID})
}

// StopTyping signals that the user stopped typing to receiverID.
func (c *Client) StopTyping(receiverID string) error {
	return c.emit("stop_typing", map[string]string{"receiverId": receiverID})
}

// Signal relays a call-signaling event (e.g. "webrtc-offer") to
// targetID. payload is merged with the routing fields.
func (c *Client) Signal(event, targetID string, payload map[string]any) error {
	body := map[string]any{"to": targetID, "from": c.UserID}
	for k, v := range payload {
		body[k] = v
	}
	return c.emit(event, body)
}

// Close shuts the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.ws.Close()
}

func (c *Client) emit(event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.ws.WriteJSON(Frame{Event: event, Data: b})
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		var f Frame
		if err := c.ws.ReadJSON(&f); err != nil {
			return
		}
		select {
		case c.events <- f:
		default:
			// Slow consumers lose frames rather than wedging the read.
		}
	}
}

// DecodeMessages decodes an all_messages frame body.
func DecodeMessages(f Frame) ([]Message, error) {
	var msgs []Message
	if err := json.Unmarshal(f.Data, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DecodeMessage decodes a new_message frame body.
func DecodeMessage(f Frame) (Message, error) {
	var m Message
	err := json.Unmarshal(f.Data, &m)
	return m, err
}
