package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/portfolio"
)

type PortfolioHandler struct {
	service *portfolio.Service
	logger  arbor.ILogger
}

func NewPortfolioHandler(service *portfolio.Service, logger arbor.ILogger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger,
	}
}

// ListHandler handles GET /api/portfolio
func (h *PortfolioHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	positions, err := h.service.ListPositions(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list positions")
		WriteError(w, http.StatusInternalServerError, "Failed to list positions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"count":     len(positions),
	})
}

// CreateHandler handles POST /api/portfolio
func (h *PortfolioHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var position models.Position
	if !DecodeJSON(w, r, &position) {
		return
	}
	if position.Ticker == "" {
		WriteError(w, http.StatusBadRequest, "Missing ticker")
		return
	}
	if position.Units < 0 {
		WriteError(w, http.StatusBadRequest, "Units cannot be negative")
		return
	}

	if err := h.service.AddPosition(r.Context(), &position); err != nil {
		h.logger.Error().Err(err).Str("ticker", position.Ticker).Msg("Failed to add position")
		WriteError(w, http.StatusInternalServerError, "Failed to add position")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"position": position,
	})
}

// GetHandler handles GET /api/portfolio/{id}
func (h *PortfolioHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	id := pathTail(r.URL.Path, "/api/portfolio/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing position id")
		return
	}

	position, err := h.service.GetPosition(r.Context(), id)
	if err != nil {
		if err == interfaces.ErrPositionNotFound {
			WriteError(w, http.StatusNotFound, "Position not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("Failed to get position")
		WriteError(w, http.StatusInternalServerError, "Failed to get position")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"position": position,
	})
}

// UpdateHandler handles PUT /api/portfolio/{id}
func (h *PortfolioHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}

	id := pathTail(r.URL.Path, "/api/portfolio/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing position id")
		return
	}

	var position models.Position
	if !DecodeJSON(w, r, &position) {
		return
	}
	position.ID = id

	if err := h.service.UpdatePosition(r.Context(), &position); err != nil {
		if err == interfaces.ErrPositionNotFound {
			WriteError(w, http.StatusNotFound, "Position not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("Failed to update position")
		WriteError(w, http.StatusInternalServerError, "Failed to update position")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"position": position,
	})
}

// DeleteHandler handles DELETE /api/portfolio/{id}
func (h *PortfolioHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	id := pathTail(r.URL.Path, "/api/portfolio/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing position id")
		return
	}

	if err := h.service.RemovePosition(r.Context(), id); err != nil {
		if err == interfaces.ErrPositionNotFound {
			WriteError(w, http.StatusNotFound, "Position not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("Failed to delete position")
		WriteError(w, http.StatusInternalServerError, "Failed to delete position")
		return
	}

	WriteSuccess(w, "Position deleted")
}

// RefreshHandler handles POST /api/portfolio/refresh
func (h *PortfolioHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		Model string `json:"model,omitempty"`
	}
	// Body is optional for refresh
	if r.Body != nil && r.ContentLength > 0 {
		if !DecodeJSON(w, r, &req) {
			return
		}
	}

	summary, err := h.service.RefreshQuotes(r.Context(), req.Model)
	if err != nil {
		h.logger.Error().Err(err).Msg("Portfolio refresh failed")
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
	})
}

// pathTail returns the path segment after prefix, stripped of any further
// slashes. Empty when the path does not extend past the prefix.
func pathTail(path, prefix string) string {
	tail := strings.TrimPrefix(path, prefix)
	if tail == path {
		return ""
	}
	if i := strings.IndexByte(tail, '/'); i >= 0 {
		tail = tail[:i]
	}
	return tail
}
