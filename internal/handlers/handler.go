package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Uniqueq123/app/internal/backup"
	"github.com/Uniqueq123/app/internal/presence"
	"github.com/Uniqueq123/app/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers. Backup,
// redis, and sync are nil when their backing services are not
// configured.
type Handler struct {
	local    store.MessageStore
	remote   store.BackupStore
	redis    *store.RedisStore
	registry *presence.Registry
	sync     *backup.Synchronizer
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(local store.MessageStore, remote store.BackupStore, redis *store.RedisStore, registry *presence.Registry, sync *backup.Synchronizer) *Handler {
	return &Handler{
		local:    local,
		remote:   remote,
		redis:    redis,
		registry: registry,
		sync:     sync,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
