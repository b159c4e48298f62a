package adapthttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"habits/internal/app"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		h      http.HandlerFunc
		want   []string
	}{
		{
			name:   "explicit status",
			method: http.MethodDelete,
			path:   "/api/habits/3",
			h:      func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			want:   []string{"DELETE", "/api/habits/3", " 404 "},
		},
		{
			name:   "implicit 200",
			method: http.MethodGet,
			path:   "/api/history",
			h:      func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("{}")) },
			want:   []string{"GET", "/api/history", " 200 "},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLog(t)
			s := &Server{}
			s.loggingMiddleware(tc.h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, nil))
			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("log line %q missing %q", buf.String(), w)
				}
			}
		})
	}
}

func TestFail(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{app.ErrUserExists, http.StatusBadRequest, "User already exists"},
		{fmt.Errorf("wrapped: %w", app.ErrHabitNotFound), http.StatusNotFound, "Habit not found"},
		{app.ErrSessionExpired, http.StatusUnauthorized, "Unauthorized"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "disk on fire"},
	}
	captureLog(t)
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		fail(rec, tc.err)
		if rec.Code != tc.status {
			t.Errorf("%v: expected status %d, got %d", tc.err, tc.status, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: body not json: %v", tc.err, err)
		}
		if body["error"] != tc.msg {
			t.Errorf("%v: expected %q, got %q", tc.err, tc.msg, body["error"])
		}
	}
}

func TestNoStore(t *testing.T) {
	rec := httptest.NewRecorder()
	noStore(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected no-store, got %q", got)
	}
}
