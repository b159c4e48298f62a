// Package tracker keeps the client's view of habits, session and history in
// step with the habit service. Local state changes only after the service
// acknowledges a call; nothing is applied optimistically.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"

	"habits/internal/adapter/remote"
)

var (
	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not logged in")
)

// actionFailed is surfaced when a rejected call carries no error text.
const actionFailed = "Action failed"

// Remote is the transport the tracker talks through.
type Remote interface {
	Request(ctx context.Context, method, path string, body any) remote.Result
	WatchSession(s remote.SessionState, onUnauthorized func())
	ResetCredentials()
}

// RejectedError carries a message the service (or transport) gave for a
// failed call. It is shown to the user verbatim.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

func rejected(res remote.Result) error {
	msg := res.ErrorMessage()
	if msg == "" {
		msg = actionFailed
	}
	return &RejectedError{Message: msg}
}

// State of a Session.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Identity is the server-assigned user reference.
type Identity string

// Session is owned by the SessionController; everything else reads it.
type Session struct {
	mu    sync.RWMutex
	state State
	user  Identity
}

// Active reports whether the session is authenticated.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == Authenticated
}

// User returns the identity of an authenticated session.
func (s *Session) User() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.state == Authenticated
}

func (s *Session) set(state State, user Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.state != state || s.user != user
	s.state, s.user = state, user
	return changed
}

// RegisterOutcome tells the caller how to continue after a registration.
type RegisterOutcome struct {
	Message       string
	SwitchToLogin bool
	ClearInputs   bool
	// Authenticated is set when the service logged the new user in directly.
	Authenticated bool
}

// SessionController drives the anonymous/authenticated state machine.
type SessionController struct {
	remote  Remote
	session *Session

	mu        sync.Mutex
	listeners []func(State, Identity)
}

// NewSessionController starts anonymous and subscribes to 401 signals from r.
func NewSessionController(r Remote) *SessionController {
	c := &SessionController{remote: r, session: &Session{}}
	r.WatchSession(c.session, c.expire)
	return c
}

// Session returns the controlled session.
func (c *SessionController) Session() *Session {
	return c.session
}

// Subscribe registers fn for every state transition.
func (c *SessionController) Subscribe(fn func(State, Identity)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates. Only a response carrying "user" counts as success.
func (c *SessionController) Login(ctx context.Context, username, password string) error {
	res := c.remote.Request(ctx, http.MethodPost, "/login", credentials{username, password})
	if user, ok := identityOf(res); ok {
		c.transition(Authenticated, user)
		return nil
	}
	return rejected(res)
}

// Register creates an account. A "message" response is success without a
// session; the caller moves to the login flow.
func (c *SessionController) Register(ctx context.Context, username, password string) (RegisterOutcome, error) {
	res := c.remote.Request(ctx, http.MethodPost, "/register", credentials{username, password})
	if user, ok := identityOf(res); ok {
		c.transition(Authenticated, user)
		return RegisterOutcome{Message: res.Message(), Authenticated: true}, nil
	}
	if res.Has("message") && res.ErrorMessage() == "" {
		return RegisterOutcome{Message: res.Message(), SwitchToLogin: true, ClearInputs: true}, nil
	}
	return RegisterOutcome{}, rejected(res)
}

// Logout tells the service and clears local state whatever it answers.
func (c *SessionController) Logout(ctx context.Context) {
	c.remote.Request(ctx, http.MethodPost, "/logout", nil)
	c.expire()
}

// Resume restores an identity persisted by an earlier process. The next
// call that comes back 401 drops it again.
func (c *SessionController) Resume(user Identity) {
	if strings.TrimSpace(string(user)) == "" {
		return
	}
	c.transition(Authenticated, user)
}

func (c *SessionController) expire() {
	c.remote.ResetCredentials()
	c.transition(Anonymous, "")
}

func (c *SessionController) transition(state State, user Identity) {
	if !c.session.set(state, user) {
		return
	}
	c.mu.Lock()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(state, user)
	}
}

// identityOf reads "user" as a plain name or as an object with a username.
func identityOf(res remote.Result) (Identity, bool) {
	var name string
	if res.Field("user", &name) && name != "" {
		return Identity(name), true
	}
	var obj struct {
		Username string          `json:"username"`
		ID       json.RawMessage `json:"id"`
	}
	if !res.Field("user", &obj) {
		return "", false
	}
	if obj.Username != "" {
		return Identity(obj.Username), true
	}
	if len(obj.ID) > 0 {
		return Identity(strings.Trim(string(obj.ID), `"`)), true
	}
	return "", false
}
