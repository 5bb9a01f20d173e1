// Package errors provides structured error responses for the timeline JSON API.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/narvanalabs/timeline/internal/loader"
)

// Error codes for structured API responses.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeFetchFailed   = "FETCH_FAILED"
	CodeInternalError = "INTERNAL_ERROR"
)

// APIError represents a structured API error response.
type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithRequestID returns a copy of the error with the request ID set.
func (e *APIError) WithRequestID(requestID string) *APIError {
	return &APIError{
		Code:      e.Code,
		Message:   e.Message,
		Details:   e.Details,
		RequestID: requestID,
	}
}

// New creates a new APIError with the given code and message.
func New(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *APIError {
	return New(CodeNotFound, message)
}

// NewInternalError creates an internal server error.
func NewInternalError(message string) *APIError {
	return New(CodeInternalError, message)
}

// FromError converts a load error into an APIError. Fetch failures become
// FETCH_FAILED with the upstream status in the details.
func FromError(err error) *APIError {
	var fetchErr *loader.FetchError
	if stderrors.As(err, &fetchErr) {
		apiErr := New(CodeFetchFailed, "timeline data could not be fetched")
		if fetchErr.StatusCode != 0 {
			apiErr.Details = map[string]any{"upstream_status": fetchErr.StatusCode}
		}
		return apiErr
	}
	return NewInternalError("timeline could not be loaded")
}

// HTTPStatusCode returns the appropriate HTTP status code for the error.
func (e *APIError) HTTPStatusCode() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeFetchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an APIError as a JSON response.
func WriteError(w http.ResponseWriter, err *APIError) {
	WriteJSON(w, err.HTTPStatusCode(), err)
}
