package models

import "time"

// TimestampLayout renders timestamps with fixed-width milliseconds so
// that lexical ordering of stored values matches chronological order.
// The store compares and indexes timestamps as strings.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// EpochOrigin is the zero backup watermark.
const EpochOrigin = "1970-01-01T00:00:00.000Z"

// Now returns the current UTC time in the storage timestamp format.
func Now() string {
	return time.Now().UTC().Format(TimestampLayout)
}

// Message is a chat message in the local message log. ID and Timestamp
// are assigned by the store at insert time and never change afterwards.
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
