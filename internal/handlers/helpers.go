package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/augur/internal/aierrors"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// DecodeJSON decodes a request body into dst. Returns false (and writes a
// 400 response) when the body is not valid JSON for dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON request body")
		return false
	}
	return true
}

// statusForKind maps a classified error kind to an HTTP status code.
func statusForKind(kind aierrors.Kind) int {
	switch kind {
	case aierrors.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case aierrors.KindAuthentication:
		return http.StatusUnauthorized
	case aierrors.KindInvalidRequest:
		return http.StatusBadRequest
	case aierrors.KindModelUnavailable:
		return http.StatusNotFound
	case aierrors.KindMalformedPayload, aierrors.KindUpstream:
		return http.StatusBadGateway
	case aierrors.KindAnomalousPrice:
		return http.StatusUnprocessableEntity
	case aierrors.KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteClassifiedError writes a failure from the AI layer with a status
// derived from its kind, exposing the kind so clients can branch on it
// (quota failures disable AI features in the UI, auth failures redirect
// to credential settings).
func WriteClassifiedError(w http.ResponseWriter, err error) error {
	ce, ok := aierrors.AsClassified(err)
	if !ok {
		return WriteError(w, http.StatusInternalServerError, err.Error())
	}

	body := map[string]interface{}{
		"status": "error",
		"error":  ce.Message,
		"kind":   string(ce.Kind),
	}
	if ce.Engine != "" {
		body["engine"] = ce.Engine
	}
	if ce.Kind == aierrors.KindAnomalousPrice {
		body["price"] = ce.Price
	}

	return WriteJSON(w, statusForKind(ce.Kind), body)
}
