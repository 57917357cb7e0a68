package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/streamhub/backend/internal/apierror"
	"github.com/streamhub/backend/internal/logging"
)

// envelope is the uniform response wrapper for successful calls.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// errorBody is the uniform shape of failed calls.
type errorBody struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// handlerFunc is an http.HandlerFunc that may fail with a classified error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle is the error boundary wrapping every endpoint: any returned error
// is classified through the apierror taxonomy and rendered as the standard
// error body with the matching status. Unrecognized errors default to 500
// with their message surfaced.
func handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		apiErr := apierror.From(err)
		status := apiErr.Status()

		logger := logging.FromContext(r.Context())
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "status", status, "error", err)
		} else {
			logger.Warn("request returned client error", "status", status, "error", err)
		}

		writeJSON(r.Context(), w, status, errorBody{Message: apiErr.Message, Success: false})
	}
}

// respond renders a success envelope.
func respond(ctx context.Context, w http.ResponseWriter, status int, data any, message string) error {
	writeJSON(ctx, w, status, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}
