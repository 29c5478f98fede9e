// Package roster contains the HTTP handlers for the student directory and
// phone submissions.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN
// ────────────────────────────────────────────────────────────
// Each exported function accepts its dependency (the registration service)
// once at startup and returns the http.HandlerFunc the router calls on
// every request:
//
//	router.HandleFunc("GET /api/students", roster.List(svc))
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/phone-roster/internal/export"
	"github.com/aanand-mishra/phone-roster/internal/http/middleware"
	"github.com/aanand-mishra/phone-roster/internal/registration"
	"github.com/aanand-mishra/phone-roster/internal/types"
	"github.com/aanand-mishra/phone-roster/internal/utils/response"
)

// Registrar is what the handlers need from the registration service.
type Registrar interface {
	Lookup(ctx context.Context, reg string) (types.Student, bool)
	Submit(ctx context.Context, reg, phone string) (registration.Submission, error)
	ListAll(ctx context.Context) []types.Student
}

// SubmitRequest is the PUT /api/students/{reg}/phone body.
type SubmitRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// Register mounts every roster route on mux.
//
// Route table:
//
//	GET /api/students                  → directory, optional ?q= filter
//	GET /api/students/export.csv       → directory as CSV download
//	GET /api/students/{reg}            → one student
//	PUT /api/students/{reg}/phone      → submit / update phone number
//	GET /api/progress                  → submitted vs roster size
func Register(mux *http.ServeMux, svc Registrar) {
	mux.HandleFunc("GET /api/students", List(svc))
	mux.HandleFunc("GET /api/students/export.csv", Export(svc))
	mux.HandleFunc("GET /api/students/{reg}", Get(svc))
	mux.HandleFunc("PUT /api/students/{reg}/phone", Submit(svc))
	mux.HandleFunc("GET /api/progress", Progress(svc))
}

// writeError sends an error envelope tagged with the request id, if any.
func writeError(w http.ResponseWriter, r *http.Request, status int, body response.Response) {
	body.RequestID = middleware.RequestID(r.Context())
	response.WriteJSON(w, status, body)
}

// List handles GET /api/students. Returns [] (not null) when nothing matches.
func List(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		slog.Debug("listing students", slog.String("q", q))

		students := registration.Filter(svc.ListAll(r.Context()), q)
		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Get handles GET /api/students/{reg}.
//
//	200 OK: the student
//	404 Not Found: no such reg number (or the store could not be read)
func Get(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := r.PathValue("reg")

		student, ok := svc.Lookup(r.Context(), reg)
		if !ok {
			writeError(w, r, http.StatusNotFound, response.GeneralError(registration.ErrNotFound))
			return
		}
		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit handles PUT /api/students/{reg}/phone
//
// Request body (JSON):
//
//	{ "phone_number": "03001234567" }
//
// Success response (200 OK):
//
//	{ "student": { ... }, "kind": "first_submission" }
//
// Error responses:
//
//	400 Bad Request: empty/malformed body or validation failure
//	404 Not Found: reg number not on the roster
//	409 Conflict: number already used by another student
//	500 Internal: storage failure
//
// ─────────────────────────────────────────────────────────────────────────────
func Submit(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := r.PathValue("reg")

		var req SubmitRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			writeError(w, r, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		sub, err := svc.Submit(r.Context(), reg, req.PhoneNumber)
		if err != nil {
			status, body := response.FromError(err)
			writeError(w, r, status, body)
			return
		}

		response.WriteJSON(w, http.StatusOK, sub)
	}
}

// Progress handles GET /api/progress.
func Progress(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, registration.Count(svc.ListAll(r.Context())))
	}
}

// Export handles GET /api/students/export.csv.
func Export(svc Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))

		if err := export.WriteCSV(w, svc.ListAll(r.Context())); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("csv export failed",
				slog.String("request_id", middleware.RequestID(r.Context())),
				slog.String("error", err.Error()))
		}
	}
}
