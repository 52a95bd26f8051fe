package handlers

import (
	"net/http"
	"sort"
)

// BackupStats describes the synchronizer's current position.
type BackupStats struct {
	Enabled   bool   `json:"enabled"`
	Watermark string `json:"watermark,omitempty"`
}

// StatsResponse represents the stats endpoint response.
type StatsResponse struct {
	OnlineUsers   int         `json:"online_users"`
	Online        []string    `json:"online"`
	TotalMessages int64       `json:"total_messages"`
	Backup        BackupStats `json:"backup"`
}

// Stats reports presence and store counters for operators.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.local.CountMessages(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count messages")
		return
	}

	online := h.registry.Online()
	sort.Strings(online)

	resp := StatsResponse{
		OnlineUsers:   len(online),
		Online:        online,
		TotalMessages: total,
	}
	if h.sync != nil {
		resp.Backup = BackupStats{Enabled: true, Watermark: h.sync.Watermark()}
	}

	h.JSON(w, http.StatusOK, resp)
}
