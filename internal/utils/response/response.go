// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client (except
// the CSV export). Rather than repeating the same three lines (set header,
// set status, encode JSON) in every handler, we centralise them here, along
// with the mapping from registration errors to HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aanand-mishra/phone-roster/internal/registration"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, …).
// Error responses always look like:
//
//	{ "status": "error", "error": "student not found in class list" }
//
// Field and Owner are only set for validation and conflict errors;
// RequestID echoes the X-Request-ID the server logged the request under.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status    string `json:"status"`               // always "error"
	Error     string `json:"error"`                // human-readable error detail
	Field     string `json:"field,omitempty"`      // offending input on validation errors
	Owner     string `json:"owner,omitempty"`      // current holder on conflicts
	RequestID string `json:"request_id,omitempty"` // for matching a report to the logs
}

// StatusError is the Status of every error envelope. Use it instead of a
// raw string literal so a typo is caught by the compiler.
const StatusError = "error"

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// FromError maps a registration error to its HTTP status and envelope:
//
//	*ValidationError → 400 Bad Request (with field)
//	ErrNotFound      → 404 Not Found
//	*ConflictError   → 409 Conflict (with owner name)
//	anything else    → 500 Internal Server Error, generic message
//
// Storage causes are never echoed to the client; they are already logged by
// the service.
// ─────────────────────────────────────────────────────────────────────────────
func FromError(err error) (int, Response) {
	var (
		verr     *registration.ValidationError
		conflict *registration.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		resp := GeneralError(verr)
		resp.Field = verr.Field
		return http.StatusBadRequest, resp
	case errors.Is(err, registration.ErrNotFound):
		return http.StatusNotFound, GeneralError(registration.ErrNotFound)
	case errors.As(err, &conflict):
		resp := GeneralError(conflict)
		resp.Owner = conflict.OwnerName
		return http.StatusConflict, resp
	default:
		return http.StatusInternalServerError, GeneralError(registration.ErrStorage)
	}
}
