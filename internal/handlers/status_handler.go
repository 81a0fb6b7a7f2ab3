package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/services/status"
)

type StatusHandler struct {
	statusSvc *status.Service
	logger    arbor.ILogger
}

func NewStatusHandler(statusSvc *status.Service, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		statusSvc: statusSvc,
		logger:    logger,
	}
}

// StatusHandler handles GET /api/status
func (h *StatusHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ai":      h.statusSvc.AIStatus(),
		"version": common.GetVersion(),
	})
}

// EnableAIHandler handles POST /api/status/ai/enable
func (h *StatusHandler) EnableAIHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	h.statusSvc.EnableAI(r.Context())
	h.logger.Info().Msg("AI features re-enabled via API")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ai": h.statusSvc.AIStatus(),
	})
}
