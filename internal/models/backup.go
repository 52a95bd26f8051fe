package models

import "strconv"

// BackupRecord is the remote-store projection of a Message. MessageID is
// the string form of the local row id and is the unique conflict key in
// the backup table; SQLiteID carries the same value for traceability.
type BackupRecord struct {
	MessageID    string `json:"message_id"`
	SenderID     string `json:"sender_id"`
	ReceiverID   string `json:"receiver_id"`
	Content      string `json:"content"`
	Timestamp    string `json:"timestamp"`
	ClientID     string `json:"client_id,omitempty"`
	IsCallRecord bool   `json:"is_call_record"`
	CallType     string `json:"call_type,omitempty"`
	CallDuration int    `json:"call_duration,omitempty"`
	SQLiteID     string `json:"sqlite_id"`
}

// BackupRecordFrom projects a local message into its backup form.
func BackupRecordFrom(m Message) BackupRecord {
	id := strconv.FormatInt(m.ID, 10)
	return BackupRecord{
		MessageID:    id,
		SenderID:     m.SenderID,
		ReceiverID:   m.ReceiverID,
		Content:      m.Content,
		Timestamp:    m.Timestamp,
		ClientID:     m.ClientID,
		IsCallRecord: m.IsCallRecord,
		CallType:     m.CallType,
		CallDuration: m.CallDuration,
		SQLiteID:     id,
	}
}

// Message converts a backup record back into a local message, restoring
// the original row id. Fails if MessageID is not numeric.
func (r BackupRecord) Message() (Message, error) {
	id, err := strconv.ParseInt(r.MessageID, 10, 64)
	if err != nil {
		return Message{}, err
	}
	return Message{
		ID:           id,
		SenderID:     r.SenderID,
		ReceiverID:   r.ReceiverID,
		Content:      r.Content,
		Timestamp:    r.Timestamp,
		ClientID:     r.ClientID,
		IsCallRecord: r.IsCallRecord,
		CallType:     r.CallType,
		CallDuration: r.CallDuration,
	}, nil
}
