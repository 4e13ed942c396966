package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/galleria"
)

// ErrorResponse is the JSON body of every error reply. Details is only set
// for store-operation and unexpected failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SignedURLResponse is the body of a successful signed-url request.
type SignedURLResponse struct {
	SignedURL string `json:"signedUrl"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Details: details,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// StatusForStage maps an issuance stage to its HTTP status.
func StatusForStage(stage galleria.Stage) int {
	switch stage {
	case galleria.StageValidation:
		return http.StatusBadRequest
	case galleria.StageNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	var ie *galleria.IssueError
	if errors.As(err, &ie) {
		status := StatusForStage(ie.Stage)
		if status >= http.StatusInternalServerError {
			slog.Error("request error", "stage", ie.Stage, "key", ie.Key, "error", err)
		} else {
			slog.Info("request rejected", "stage", ie.Stage, "key", ie.Key, "error", err)
		}

		var details string
		if ie.Stage == galleria.StageStoreOperation || ie.Stage == galleria.StageUnexpected {
			details = ie.Details
		}
		WriteError(w, status, ie.Message, details)
		return
	}

	slog.Error("request error", "error", err)

	switch {
	case errors.Is(err, galleria.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not found", "")
	case errors.Is(err, galleria.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid path", "")
	case errors.Is(err, galleria.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, err.Error(), "")
	case errors.Is(err, ErrObjectsDisabled):
		WriteError(w, http.StatusNotFound, "not found", "")
	default:
		WriteError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
