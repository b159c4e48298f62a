// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"time"

	"habits/internal/app"
)

const stateCookie = "oauth_state"

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readCredentials decodes a POSTed username and password, answering the
// request itself when it cannot.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var req credentials
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return req, false
	}
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err)
		return req, false
	}
	return req, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := readCredentials(w, r)
	if !ok {
		return
	}
	if _, err := s.authSvc.Register(r.Context(), req.Username, req.Password); err != nil {
		fail(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "message", "User created successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := readCredentials(w, r)
	if !ok {
		return
	}
	user, token, err := s.authSvc.Login(r.Context(), req.Username, req.Password, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		fail(w, err)
		return
	}
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged in", "user": user.Username})
}

// handleLogout always clears the cookie, even for unknown sessions.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := s.authSvc.Logout(r.Context(), c.Value); err != nil {
			log.Printf("logout: %v", err)
		}
	}
	s.clearCookie(w, sessionCookie)
	writeMessage(w, http.StatusOK, "message", "Logged out")
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.authSvc.SessionTTL() / time.Second),
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", HttpOnly: true, MaxAge: -1})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"sso_enabled": s.oidcConfig.Enabled})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		writeMessage(w, http.StatusNotFound, "error", "sso disabled")
		return
	}
	state, err := randomState()
	if err != nil {
		fail(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // the provider redirects back cross-site
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oidcConfig.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		writeMessage(w, http.StatusNotFound, "error", "sso disabled")
		return
	}

	want, err := r.Cookie(stateCookie)
	if err != nil || !app.ConstantTimeCompare(r.URL.Query().Get("state"), want.Value) {
		writeMessage(w, http.StatusBadRequest, "error", "invalid state")
		return
	}

	s.clearCookie(w, stateCookie)

	username, err := s.oidcConfig.Username(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Printf("sso: %v", err)
		writeMessage(w, http.StatusBadGateway, "error", "single sign-on failed")
		return
	}

	user, sessionToken, err := s.authSvc.LoginWithUser(r.Context(), username, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		fail(w, err)
		return
	}

	s.setSessionCookie(w, sessionToken)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged in", "user": user.Username})
}

func randomState() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
