package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/mankind/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest  = apierr.CodeInvalidRequest
	CodeInvalidPlayerID = apierr.CodeInvalidPlayerID
	CodePlayerNotFound  = apierr.CodePlayerNotFound
	CodeDuelNotFound    = apierr.CodeDuelNotFound
	CodeInternalError   = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// parseLimit reads the optional ?limit= query parameter. 0 means "use the
// default".
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, NewInvalidRequestError("limit must be a non-negative integer")
	}
	return limit, nil
}
