// Package relay dispatches inbound connection events: presence
// registration, message persistence and delivery, typing indicators,
// and call signaling.
package relay

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/Uniqueq123/app/internal/metrics"
	"github.com/Uniqueq123/app/internal/models"
	"github.com/Uniqueq123/app/internal/presence"
	"github.com/Uniqueq123/app/internal/store"
)

// Session is a live connection as seen by the router. UserID is set on
// authenticate and read only from the connection's own event loop.
type Session interface {
	presence.Conn
	UserID() string
	SetUserID(userID string)
}

// LastSeenStore mirrors presence transitions into an external cache.
type LastSeenStore interface {
	MarkOnline(ctx context.Context, userID, timestamp string) error
	MarkOffline(ctx context.Context, userID, timestamp string) error
}

// Router routes inbound frames to their handlers. One router serves all
// connections; per-connection ordering comes from each connection
// feeding its frames in sequentially.
type Router struct {
	registry *presence.Registry
	local    store.MessageStore
	lastSeen LastSeenStore // nil when Redis is not configured
	logger   zerolog.Logger
}

// NewRouter creates a router. lastSeen may be nil.
func NewRouter(registry *presence.Registry, local store.MessageStore, lastSeen LastSeenStore, logger zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		local:    local,
		lastSeen: lastSeen,
		logger:   logger.With().Str("component", "relay").Logger(),
	}
}

// HandleFrame dispatches one inbound frame from a connection.
func (r *Router) HandleFrame(ctx context.Context, s Session, f models.Frame) {
	switch f.Event {
	case models.EventAuthenticate:
		r.handleAuthenticate(ctx, s, f.Data)
	case models.EventSendMessage:
		r.handleSendMessage(ctx, s, f.Data)
	case models.EventTyping:
		r.relayIndicator(s, f.Data, models.EventUserTyping)
	case models.EventStopTyping:
		r.relayIndicator(s, f.Data, models.EventUserStoppedTyping)
	case models.EventRecording:
		r.relayIndicator(s, f.Data, models.EventUserRecording)
	case models.EventStopRecording:
		r.relayIndicator(s, f.Data, models.EventUserStoppedRecording)
	default:
		if models.SignalEvents[f.Event] {
			r.relaySignal(s, f)
			return
		}
		r.logger.Debug().Str("event", f.Event).Str("conn", s.ID()).Msg("unknown event")
	}
}

// HandleDisconnect removes the connection's presence binding. Safe to
// call for connections that never authenticated.
func (r *Router) HandleDisconnect(ctx context.Context, s Session) {
	userID, ok := r.registry.Unregister(s)
	if !ok {
		return
	}
	metrics.OnlineUsers.Set(float64(r.registry.Count()))
	if r.lastSeen != nil {
		if err := r.lastSeen.MarkOffline(ctx, userID, models.Now()); err != nil {
			r.logger.Warn().Err(err).Str("user", userID).Msg("failed to record last seen")
		}
	}
	r.logger.Info().Str("user", userID).Str("conn", s.ID()).Msg("user disconnected")
}

func (r *Router) handleAuthenticate(ctx context.Context, s Session, data json.RawMessage) {
	userID := decodeUserID(data)
	if userID == "" {
		r.logger.Warn().Str("conn", s.ID()).Msg("authenticate without userId")
		return
	}

	prev := r.registry.Register(userID, s)
	s.SetUserID(userID)
	metrics.OnlineUsers.Set(float64(r.registry.Count()))
	if prev != nil {
		// Last authenticate wins; the superseded connection is not told.
		r.logger.Info().Str("user", userID).Str("old_conn", prev.ID()).Str("conn", s.ID()).Msg("presence superseded")
	}
	if r.lastSeen != nil {
		if err := r.lastSeen.MarkOnline(ctx, userID, models.Now()); err != nil {
			r.logger.Warn().Err(err).Str("user", userID).Msg("failed to record last seen")
		}
	}

	s.Send(models.EventAuthenticated, models.AuthenticatedPayload{UserID: userID})
	r.sendHistory(ctx, s, userID)
	r.logger.Info().Str("user", userID).Str("conn", s.ID()).Msg("user authenticated")
}

func (r *Router) handleSendMessage(ctx context.Context, s Session, data json.RawMessage) {
	var p models.SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		metrics.MessagesRejected.WithLabelValues("invalid_payload").Inc()
		s.Send(models.EventMessageError, models.MessageErrorPayload{Error: "invalid message data"})
		return
	}

	// Voice messages carry the payload in audioData; everything else
	// needs content.
	if p.SenderID == "" || p.ReceiverID == "" || (p.Content == "" && p.AudioData == "") {
		metrics.MessagesRejected.WithLabelValues("invalid_payload").Inc()
		r.logger.Warn().Str("conn", s.ID()).Msg("rejected message with missing fields")
		s.Send(models.EventMessageError, models.MessageErrorPayload{Error: "senderId, receiverId and content are required"})
		return
	}

	m := models.Message{
		SenderID:     p.SenderID,
		ReceiverID:   p.ReceiverID,
		Content:      p.Content,
		ClientID:     p.ClientID,
		IsCallRecord: p.IsCallRecord,
		CallType:     p.CallType,
		CallDuration: p.CallDuration,
		AudioData:    p.AudioData,
		MessageType:  p.MessageType,
	}
	id, err := r.local.InsertMessage(ctx, &m)
	if err != nil {
		metrics.MessagesRejected.WithLabelValues("store_error").Inc()
		r.logger.Error().Err(err).Str("sender", p.SenderID).Msg("failed to store message")
		s.Send(models.EventMessageError, models.MessageErrorPayload{Error: "failed to store message"})
		return
	}
	metrics.MessagesStored.Inc()

	// Deliver to the receiver if online; offline receivers get the row
	// on their next authenticate snapshot.
	if conn, ok := r.registry.Resolve(p.ReceiverID); ok {
		conn.Send(models.EventNewMessage, m)
		metrics.MessagesDelivered.WithLabelValues("online").Inc()
	} else {
		metrics.MessagesDelivered.WithLabelValues("offline").Inc()
		r.logger.Debug().Str("receiver", p.ReceiverID).Msg("receiver offline, stored for later")
	}

	// The sender is acked whether or not the receiver was online.
	s.Send(models.EventMessageSent, models.MessageSentPayload{
		Success:   true,
		ClientID:  p.ClientID,
		MessageID: id,
		Timestamp: m.Timestamp,
	})

	// Full snapshot refresh for the sender after every send.
	r.sendHistory(ctx, s, p.SenderID)
}

func (r *Router) relayIndicator(s Session, data json.RawMessage, outEvent string) {
	senderID := s.UserID()
	if senderID == "" {
		r.logger.Debug().Str("conn", s.ID()).Msg("indicator from unauthenticated connection")
		return
	}

	var p models.IndicatorPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ReceiverID == "" {
		r.logger.Debug().Str("conn", s.ID()).Msg("indicator without receiverId")
		return
	}

	conn, ok := r.registry.Resolve(p.ReceiverID)
	if !ok {
		// Expected offline state, not an error.
		r.logger.Debug().Str("receiver", p.ReceiverID).Str("event", outEvent).Msg("indicator dropped, receiver offline")
		return
	}
	conn.Send(outEvent, models.SenderPayload{SenderID: senderID})
	metrics.IndicatorsRelayed.WithLabelValues(outEvent).Inc()
}

// relaySignal passes a call-signaling frame verbatim to the target
// user's connection. No persistence, no ack to the sender.
func (r *Router) relaySignal(s Session, f models.Frame) {
	var p models.SignalPayload
	if err := json.Unmarshal(f.Data, &p); err != nil || p.To == "" {
		r.logger.Debug().Str("event", f.Event).Str("conn", s.ID()).Msg("signal without target")
		return
	}

	conn, ok := r.registry.Resolve(p.To)
	if !ok {
		r.logger.Debug().Str("target", p.To).Str("event", f.Event).Msg("signal dropped, target offline")
		return
	}
	conn.Send(f.Event, f.Data)
	metrics.SignalsRelayed.WithLabelValues(f.Event).Inc()
}

// sendHistory pushes the user's full message history as one
// all_messages frame. An empty history still produces a frame with an
// empty array.
func (r *Router) sendHistory(ctx context.Context, s Session, userID string) {
	msgs, err := r.local.MessagesForUser(ctx, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user", userID).Msg("failed to load message history")
		return
	}
	s.Send(models.EventAllMessages, msgs)
}

func decodeUserID(data json.RawMessage) string {
	// The client may send either a bare string id or {"userId": ...}.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var p models.AuthenticatePayload
	if err := json.Unmarshal(data, &p); err == nil {
		return p.UserID
	}
	return ""
}
