package adapthttp

import (
	"net/http"

	"habits/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc     *app.AuthService
	habits      *app.HabitService
	history     *app.HistoryService
	coach       *app.CoachService
	oidcConfig  *OIDCConfig
	forwardAuth bool
}

// New creates a Server wired to the given application services.
func New(as *app.AuthService, hs *app.HabitService, hist *app.HistoryService, cs *app.CoachService) *Server {
	return &Server{
		authSvc:    as,
		habits:     hs,
		history:    hist,
		coach:      cs,
		oidcConfig: &OIDCConfig{},
	}
}

// WithOIDC enables single sign-on through the given provider.
func (s *Server) WithOIDC(cfg *OIDCConfig) *Server {
	if cfg != nil {
		s.oidcConfig = cfg
	}
	return s
}

// WithForwardAuth trusts the Remote-User header set by a fronting proxy.
func (s *Server) WithForwardAuth() *Server {
	s.forwardAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/register", s.handleRegister)
	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/sso/login", s.handleSSOLogin)
	api.HandleFunc("/sso/callback", s.handleSSOCallback)

	api.Handle("/habits", s.authMiddleware(http.HandlerFunc(s.handleHabits)))
	api.Handle("/habits/reset", s.authMiddleware(http.HandlerFunc(s.handleHabitsReset)))
	api.Handle("/habits/{id}", s.authMiddleware(http.HandlerFunc(s.handleHabit)))
	api.Handle("/history", s.authMiddleware(http.HandlerFunc(s.handleHistory)))
	api.Handle("/ai-coach", s.authMiddleware(http.HandlerFunc(s.handleCoach)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return s.loggingMiddleware(noStore(root))
}
