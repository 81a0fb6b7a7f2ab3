package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
)

type KVHandler struct {
	storage interfaces.KeyValueStorage
	logger  arbor.ILogger
}

func NewKVHandler(storage interfaces.KeyValueStorage, logger arbor.ILogger) *KVHandler {
	return &KVHandler{
		storage: storage,
		logger:  logger,
	}
}

// maskValue hides stored secrets in list responses. API keys are stored
// here, so values never leave the server unmasked.
func maskValue(value string) string {
	if len(value) <= 8 {
		return "********"
	}
	return value[:4] + "..." + value[len(value)-4:]
}

// ListHandler handles GET /api/kv
func (h *KVHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	pairs, err := h.storage.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list key/value pairs")
		WriteError(w, http.StatusInternalServerError, "Failed to list keys")
		return
	}

	type maskedPair struct {
		Key         string `json:"key"`
		Value       string `json:"value"`
		Description string `json:"description,omitempty"`
	}
	masked := make([]maskedPair, 0, len(pairs))
	for _, pair := range pairs {
		masked = append(masked, maskedPair{
			Key:         pair.Key,
			Value:       maskValue(pair.Value),
			Description: pair.Description,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"keys":  masked,
		"count": len(masked),
	})
}

// SetHandler handles POST /api/kv
func (h *KVHandler) SetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		Key         string `json:"key"`
		Value       string `json:"value"`
		Description string `json:"description,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		WriteError(w, http.StatusBadRequest, "Missing key")
		return
	}

	if err := h.storage.Set(r.Context(), req.Key, req.Value, req.Description); err != nil {
		h.logger.Error().Err(err).Str("key", req.Key).Msg("Failed to store key")
		WriteError(w, http.StatusInternalServerError, "Failed to store key")
		return
	}

	WriteSuccess(w, "Key stored")
}

// DeleteHandler handles DELETE /api/kv/{key}
func (h *KVHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	key := pathTail(r.URL.Path, "/api/kv/")
	if key == "" {
		WriteError(w, http.StatusBadRequest, "Missing key")
		return
	}

	if err := h.storage.Delete(r.Context(), key); err != nil {
		if err == interfaces.ErrKeyNotFound {
			WriteError(w, http.StatusNotFound, "Key not found")
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to delete key")
		WriteError(w, http.StatusInternalServerError, "Failed to delete key")
		return
	}

	WriteSuccess(w, "Key deleted")
}
