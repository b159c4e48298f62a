package adapthttp

import (
	"net/http"

	"habits/internal/app"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	user := userFromContext(r)
	days := positiveQuery(r, "days", app.HistoryDays)

	counts, err := s.history.Recent(r.Context(), user.ID, days)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
