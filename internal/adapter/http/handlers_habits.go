package adapthttp

import (
	"net/http"
	"strconv"

	"habits/internal/app"
)

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.habits.List(r.Context(), user.ID)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, &body); err != nil {
			badRequest(w, err)
			return
		}
		h, err := s.habits.Create(r.Context(), user.ID, body.Name)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleHabit(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(w, app.ErrHabitNotFound)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h, err := s.habits.Toggle(r.Context(), user.ID, id)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": h.ID, "completed": h.Completed})

	case http.MethodDelete:
		err := s.habits.Delete(r.Context(), user.ID, id)
		if err != nil {
			fail(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "message", "Deleted")

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleHabitsReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	user := userFromContext(r)
	if err := s.habits.Reset(r.Context(), user.ID); err != nil {
		fail(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "message", "All habits reset")
}
