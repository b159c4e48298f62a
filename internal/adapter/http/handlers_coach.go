package adapthttp

import (
	"log"
	"net/http"
)

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	user := userFromContext(r)
	advice, err := s.coach.Advice(r.Context(), user.ID)
	if err != nil {
		log.Printf("coach: %v", err)
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"advice": advice})
}
