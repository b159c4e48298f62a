package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"habits/internal/app"
)

// publicErrors maps service errors to the status and message clients show.
var publicErrors = []struct {
	err     error
	status  int
	message string
}{
	{app.ErrUserExists, http.StatusBadRequest, "User already exists"},
	{app.ErrMissingCredentials, http.StatusBadRequest, "Username and password are required"},
	{app.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
	{app.ErrSessionNotFound, http.StatusUnauthorized, "Unauthorized"},
	{app.ErrSessionExpired, http.StatusUnauthorized, "Unauthorized"},
	{app.ErrUserNotFound, http.StatusUnauthorized, "Unauthorized"},
	{app.ErrHabitNotFound, http.StatusNotFound, "Habit not found"},
	{app.ErrHabitNameRequired, http.StatusBadRequest, "Habit name is required"},
	{app.ErrCoachUnavailable, http.StatusInternalServerError, "Coach is unavailable right now. Try again in a minute."},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, key, text string) {
	writeJSON(w, status, map[string]string{key: text})
}

// fail reports err to the client, translating known service errors.
func fail(w http.ResponseWriter, err error) {
	for _, pe := range publicErrors {
		if errors.Is(err, pe.err) {
			writeMessage(w, pe.status, "error", pe.message)
			return
		}
	}
	log.Printf("internal error: %v", err)
	writeMessage(w, http.StatusInternalServerError, "error", err.Error())
}

func badRequest(w http.ResponseWriter, err error) {
	writeMessage(w, http.StatusBadRequest, "error", err.Error())
}

func methodNotAllowed(w http.ResponseWriter) {
	writeMessage(w, http.StatusMethodNotAllowed, "error", "method not allowed")
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// positiveQuery reads a positive integer query parameter, or fallback.
func positiveQuery(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
