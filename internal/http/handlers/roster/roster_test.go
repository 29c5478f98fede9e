package roster_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/phone-roster/internal/config"
	"github.com/aanand-mishra/phone-roster/internal/http/handlers/roster"
	"github.com/aanand-mishra/phone-roster/internal/http/middleware"
	"github.com/aanand-mishra/phone-roster/internal/registration"
	"github.com/aanand-mishra/phone-roster/internal/storage/sqlite"
	"github.com/aanand-mishra/phone-roster/internal/types"
	"github.com/aanand-mishra/phone-roster/internal/utils/response"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.Path = filepath.Join(t.TempDir(), "students.db")
	cfg.Storage.ConnectTimeout = 2 * time.Second

	db, err := sqlite.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := registration.New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, svc.Initialize(context.Background()))

	mux := http.NewServeMux()
	roster.Register(mux, svc)

	srv := httptest.NewServer(middleware.Logging(slog.New(slog.NewTextHandler(io.Discard, nil)), mux))
	t.Cleanup(srv.Close)
	return srv
}

func put(t *testing.T, srv *httptest.Server, reg, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/students/"+reg+"/phone", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestSubmit_OK(t *testing.T) {
	srv := newServer(t)

	resp := put(t, srv, "2023130", `{"phone_number":"03001234567"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sub := decode[registration.Submission](t, resp)
	assert.Equal(t, registration.FirstSubmission, sub.Kind)
	assert.Equal(t, "Arsalan Khalil", sub.Student.Name)
	assert.Equal(t, "03001234567", sub.Student.Phone())
}

func TestErrorCarriesRequestID(t *testing.T) {
	srv := newServer(t)

	id := "5f0c1a52-8f0e-4c1e-9d8a-2b7f6a3e9c11"
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/students/9999999", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.HeaderRequestID, id)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[response.Response](t, resp)
	assert.Equal(t, id, body.RequestID)
	assert.Equal(t, id, resp.Header.Get(middleware.HeaderRequestID))

	resp = put(t, srv, "2023130", `{"phone_number":"123"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, resp.Header.Get(middleware.HeaderRequestID), decode[response.Response](t, resp).RequestID)
}

func TestSubmit_Errors(t *testing.T) {
	srv := newServer(t)
	require.Equal(t, http.StatusOK, put(t, srv, "2023130", `{"phone_number":"03001234567"}`).StatusCode)

	tests := []struct {
		name, reg, body string
		status          int
		wantErr         string
		owner           string
	}{
		{"empty body", "2023130", "", http.StatusBadRequest, "request body is empty", ""},
		{"malformed json", "2023130", "{", http.StatusBadRequest, "", ""},
		{"missing phone", "2023130", `{}`, http.StatusBadRequest, registration.ErrMissingField.Error(), ""},
		{"bad reg", "20231", `{"phone_number":"03001234567"}`, http.StatusBadRequest, registration.ErrBadRegFormat.Error(), ""},
		{"bad phone", "2023130", `{"phone_number":"0300123456"}`, http.StatusBadRequest, registration.ErrBadPhoneFormat.Error(), ""},
		{"unknown reg", "9999999", `{"phone_number":"03001234567"}`, http.StatusNotFound, registration.ErrNotFound.Error(), ""},
		{"conflict", "2023682", `{"phone_number":"03001234567"}`, http.StatusConflict, "this number is already used by Arsalan Khalil", "Arsalan Khalil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := put(t, srv, tt.reg, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode[response.Response](t, resp)
			assert.Equal(t, response.StatusError, body.Status)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, body.Error)
			}
			assert.Equal(t, tt.owner, body.Owner)
		})
	}
}

func TestGet(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/students/2023773")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[types.Student](t, resp)
	assert.Equal(t, "Zain", st.Name)
	assert.Nil(t, st.PhoneNumber)

	resp2, err := srv.Client().Get(srv.URL + "/api/students/9999999")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestList_Filter(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/students?q=hamza")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	students := decode[[]types.Student](t, resp)
	var names []string
	for _, st := range students {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"Hamza Mukhtar", "Hamza Saeed", "Muhammad Hamza khan"}, names)
}

func TestList_All(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/students")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Len(t, decode[[]types.Student](t, resp), 22)
}

func TestProgress(t *testing.T) {
	srv := newServer(t)
	require.Equal(t, http.StatusOK, put(t, srv, "2023130", `{"phone_number":"03001234567"}`).StatusCode)

	resp, err := srv.Client().Get(srv.URL + "/api/progress")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, registration.Progress{Submitted: 1, Total: 22}, decode[registration.Progress](t, resp))
}

func TestExport(t *testing.T) {
	srv := newServer(t)
	require.Equal(t, http.StatusOK, put(t, srv, "2023130", `{"phone_number":"03001234567"}`).StatusCode)

	resp, err := srv.Client().Get(srv.URL + "/api/students/export.csv")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "student_records.csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 23)
	assert.Equal(t, "Name,Registration No,Phone Number,Status", lines[0])
	assert.Equal(t, "Abdul Ahad Ali Khan,2023004,,Pending", lines[1])
	assert.Contains(t, lines, "Arsalan Khalil,2023130,03001234567,Submitted")
}
