package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorResponse represents a JSON error response body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct{}

// NewErrorResponder creates a new error responder.
func NewErrorResponder() *errorResponder {
	return &errorResponder{}
}

// NotFound sends a 404 Not Found response.
func (e *errorResponder) NotFound(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)

	slog.Warn("not found", "error", err)

	resp := errorResponse{
		Error:   "not_found",
		Message: "The requested resource was not found",
	}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}

// InternalError sends a 500 Internal Server Error response.
// The response body contains a JSON error message.
func (e *errorResponder) InternalError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	// Log the error for debugging
	slog.Error("internal server error", "error", err)

	// Write JSON error response
	resp := errorResponse{
		Error:   "internal_error",
		Message: "An internal server error occurred",
	}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}

// BadRequest sends a 400 Bad Request response.
// The response body contains a JSON error message.
func (e *errorResponder) BadRequest(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	// Log the error for debugging
	slog.Warn("bad request", "error", err)

	// Determine error message
	message := "Invalid request"
	if err != nil {
		message = err.Error()
	}

	// Write JSON error response
	resp := errorResponse{
		Error:   "bad_request",
		Message: message,
	}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}
