package models

import "encoding/json"

// Inbound event names.
const (
	EventAuthenticate  = "authenticate"
	EventSendMessage   = "send_message"
	EventTyping        = "typing"
	EventStopTyping    = "stop_typing"
	EventRecording     = "recording"
	EventStopRecording = "stop_recording"
)

// Outbound event names.
const (
	EventAuthenticated        = "authenticated"
	EventAllMessages          = "all_messages"
	EventMessageSent          = "message_sent"
	EventMessageError         = "message_error"
	EventNewMessage           = "new_message"
	EventUserTyping           = "user_typing"
	EventUserStoppedTyping    = "user_stopped_typing"
	EventUserRecording        = "user_recording"
	EventUserStoppedRecording = "user_stopped_recording"
)

// Call-signaling event names. These are relayed verbatim to the target
// connection under the same name.
var SignalEvents = map[string]bool{
	"webrtc-offer":         true,
	"webrtc-answer":        true,
	"webrtc-ice-candidate": true,
	"webrtc-end-call":      true,
	"webrtc-reject-call":   true,
	"video-offer":          true,
	"video-answer":         true,
	"video-ice-candidate":  true,
	"video-end-call":       true,
	"video-reject-call":    true,
}

// Frame is the wire envelope for every event in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AuthenticatePayload is the object form of the authenticate event. The
// bare-string form (data is just the userId) is also accepted.
type AuthenticatePayload struct {
	UserID string `json:"userId"`
}

// AuthenticatedPayload confirms a successful authenticate.
type AuthenticatedPayload struct {
	UserID string `json:"userId"`
}

// SendMessagePayload is the send_message request body. Voice messages
// carry AudioData and a "voice" MessageType; plain text carries Content.
type SendMessagePayload struct {
	SenderID     string `json:"senderId"`
	ReceiverID   string `json:"receiverId"`
	Content      string `json:"content"`
	ClientID     string `json:"clientId,omitempty"`
	IsCallRecord bool   `json:"isCallRecord,omitempty"`
	CallType     string `json:"callType,omitempty"`
	CallDuration int    `json:"callDuration,omitempty"`
	AudioData    string `json:"audioData,omitempty"`
	MessageType  string `json:"messageType,omitempty"`
}

// MessageSentPayload acknowledges a persisted message to its sender,
// echoing the client correlation id alongside the assigned row id.
type MessageSentPayload struct {
	Success   bool   `json:"success"`
	ClientID  string `json:"clientId,omitempty"`
	MessageID int64  `json:"messageId"`
	Timestamp string `json:"timestamp"`
}

// MessageErrorPayload reports a failed send to the originating
// connection only.
type MessageErrorPayload struct {
	Error string `json:"error"`
}

// IndicatorPayload is the body of typing/recording events.
type IndicatorPayload struct {
	ReceiverID string `json:"receiverId"`
}

// SenderPayload is the body of relayed typing/recording notifications.
type SenderPayload struct {
	SenderID string `json:"senderId"`
}

// SignalPayload is the partial decode of a call-signaling event. Only
// the target is inspected; the frame body is relayed untouched.
type SignalPayload struct {
	To   string `json:"to"`
	From string `json:"from"`
}
