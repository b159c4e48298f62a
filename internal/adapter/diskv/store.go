// Package diskv keeps the command line client's credentials on disk: the
// session cookies and the identity they belong to.
package diskv

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	dv "github.com/peterbourgon/diskv/v3"
)

const (
	keyCookies  = "cookies"
	keyIdentity = "identity"
)

// Store is a diskv-backed credential store. It satisfies
// remote.CookieStore.
type Store struct {
	d *dv.Diskv
}

// Open returns a store rooted at basePath. Files are private to the user.
func Open(basePath string) *Store {
	return &Store{d: dv.New(dv.Options{
		BasePath:     basePath,
		CacheSizeMax: 64 * 1024,
		PathPerm:     0o700,
		FilePerm:     0o600,
	})}
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies returns the saved cookies, none if nothing was saved.
func (s *Store) LoadCookies() ([]*http.Cookie, error) {
	if !s.d.Has(keyCookies) {
		return nil, nil
	}
	raw, err := s.d.Read(keyCookies)
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	var saved []savedCookie
	if err := json.Unmarshal(raw, &saved); err != nil {
		return nil, fmt.Errorf("decode cookies: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return cookies, nil
}

// SaveCookies replaces the saved cookies. An empty set erases them.
func (s *Store) SaveCookies(cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return s.erase(keyCookies)
	}
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	raw, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	return s.d.Write(keyCookies, raw)
}

// Identity returns the saved identity, "" when none.
func (s *Store) Identity() (string, error) {
	if !s.d.Has(keyIdentity) {
		return "", nil
	}
	raw, err := s.d.Read(keyIdentity)
	if err != nil {
		return "", fmt.Errorf("read identity: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// SaveIdentity records who the saved cookies belong to.
func (s *Store) SaveIdentity(user string) error {
	return s.d.Write(keyIdentity, []byte(user))
}

// Clear forgets the identity and every cookie.
func (s *Store) Clear() error {
	if err := s.erase(keyIdentity); err != nil {
		return err
	}
	return s.erase(keyCookies)
}

func (s *Store) erase(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}
