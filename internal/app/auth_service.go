// Package app holds the habit tracker services: accounts and sessions,
// habits with their completion log, history and coaching.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"habits/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Errors reported by AuthService. Handlers translate them into client
// messages; anything else is an internal failure.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUserExists         = errors.New("user already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoRemoteUser       = errors.New("no remote user header")
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

// AuthService handles registration, authentication and session management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
}

// WithSessionTTL overrides the session lifetime. Non-positive values are ignored.
func (s *AuthService) WithSessionTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// SessionTTL reports the configured session lifetime.
func (s *AuthService) SessionTTL() time.Duration {
	return s.ttl
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, username, string(hash))
	if errors.Is(err, domain.ErrUsernameTaken) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UserCount reports how many accounts exist.
func (s *AuthService) UserCount(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}

// Login authenticates a user and creates a session, returning the user and
// the session token.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent, ip string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil || user == nil {
		return nil, "", ErrInvalidCredentials
	}

	// SSO-provisioned accounts have no password and cannot log in this way.
	if user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.startSession(ctx, user.ID, userAgent, ip)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout drops the session. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession resolves a session cookie to its user. Sessions are bound
// to the User-Agent that created them; a mismatch or an expiry revokes the
// session.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil || sess == nil {
		return nil, ErrSessionNotFound
	}
	if s.now().After(sess.ExpiresAt) || sess.UserAgent != userAgent {
		s.revoke(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ValidateForwardAuth trusts the username a reverse proxy put in
// Remote-User.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	if remoteUser == "" {
		return nil, ErrNoRemoteUser
	}
	return s.provision(ctx, remoteUser)
}

// LoginWithUser opens a session for a user an identity provider vouched for.
func (s *AuthService) LoginWithUser(ctx context.Context, username, userAgent, ip string) (*domain.User, string, error) {
	user, err := s.provision(ctx, username)
	if err != nil {
		return nil, "", err
	}
	token, err := s.startSession(ctx, user.ID, userAgent, ip)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// provision returns the named account, creating it without a password on
// first sight. Such accounts cannot use password login.
func (s *AuthService) provision(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user != nil {
		return user, nil
	}
	user, err = s.users.Create(ctx, username, "")
	if errors.Is(err, domain.ErrUsernameTaken) {
		user, err = s.users.GetByUsername(ctx, username)
	}
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) revoke(ctx context.Context, token string) {
	if err := s.sessions.Delete(ctx, token); err != nil {
		log.Printf("revoke session: %v", err)
	}
}

// PurgeExpired removes sessions past their expiry.
func (s *AuthService) PurgeExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

func (s *AuthService) startSession(ctx context.Context, userID int64, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	expiresAt := s.now().Add(s.ttl)
	if err := s.sessions.Create(ctx, userID, token, userAgent, ip, expiresAt); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// generateToken returns 32 random bytes, URL-safe encoded.
func generateToken() (string, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw[:]), nil
}

// ConstantTimeCompare reports whether a and b are equal without leaking
// where they differ.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
