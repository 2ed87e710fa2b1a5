package handlers

import (
	"encoding/json"
	"net/http"

	"starry-api/internal/apperr"
	"starry-api/internal/logger"
)

// ErrorResponse is the standardized JSON error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// sendJSON writes a JSON response with the given status
func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("Error encoding response")
	}
}

// sendError maps an error to its status and client-facing message.
// Non-operational errors become a 500 with no detail leaked.
func sendError(w http.ResponseWriter, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Log.WithError(err).Error("Request failed")
	}
	sendJSON(w, status, ErrorResponse{Error: apperr.MessageOf(err)})
}

// sendValidationError reports a 400 with the validation message
func sendValidationError(w http.ResponseWriter, err error) {
	sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
