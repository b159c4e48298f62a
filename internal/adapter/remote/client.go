// Package remote is the client side of the habit service's REST API: a thin
// request wrapper with implicit cookie credentials and uniform results.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds a single call.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent identifies the client to the service, which binds
	// sessions to it.
	DefaultUserAgent = "habits-cli/1"

	msgUnreachable = "Cannot reach the habit service. Check that it is running."
	msgNotJSON     = "The habit service sent an unreadable response."
)

// SessionState tells the client whether a session is believed active.
type SessionState interface {
	Active() bool
}

// CookieStore persists the session cookies between processes.
type CookieStore interface {
	LoadCookies() ([]*http.Cookie, error)
	SaveCookies(cookies []*http.Cookie) error
}

type watcher struct {
	session        SessionState
	onUnauthorized func()
}

// Client issues JSON calls against a fixed API base.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	store     CookieStore
	logger    *log.Logger
	jar       *credentialJar

	mu       sync.Mutex
	watchers []watcher
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCookieStore persists credentials through store.
func WithCookieStore(store CookieStore) Option {
	return func(c *Client) { c.store = store }
}

// WithLogger logs every request and response line to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for the API rooted at baseURL,
// e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	jar, err := newCredentialJar()
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:      base,
		jar:       jar,
		http:      &http.Client{Jar: jar, Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store != nil {
		cookies, err := c.store.LoadCookies()
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
		for _, ck := range cookies {
			if ck.Path == "" {
				ck.Path = "/"
			}
		}
		jar.SetCookies(c.base, cookies)
	}
	return c, nil
}

// WatchSession registers fn to run when a call comes back 401 while session
// is active. Watchers run synchronously before Request returns.
func (c *Client) WatchSession(session SessionState, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, watcher{session: session, onUnauthorized: fn})
}

// ResetCredentials drops every stored cookie.
func (c *Client) ResetCredentials() {
	if err := c.jar.Reset(); err != nil {
		c.logger.Printf("reset credentials: %v", err)
		return
	}
	c.persist()
}

// Request performs one call. body, when non-nil, is sent as JSON.
func (c *Client) Request(ctx context.Context, method, path string, body any) Result {
	if method == "" {
		method = http.MethodGet
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Result{Err: fmt.Sprintf("encode request: %v", err)}
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), payload)
	if err != nil {
		return Result{Err: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("%s %s: %v", method, path, err)
		return Result{Err: msgUnreachable}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	c.logger.Printf("%s %s %d %s", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	c.persist()

	if resp.StatusCode == http.StatusUnauthorized {
		c.notifyUnauthorized()
	}
	if err != nil {
		return Result{Status: resp.StatusCode, Err: msgUnreachable}
	}
	if !json.Valid(raw) {
		return Result{Status: resp.StatusCode, Err: msgNotJSON}
	}
	return Result{Status: resp.StatusCode, Body: raw}
}

func (c *Client) endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.String() + path
}

func (c *Client) notifyUnauthorized() {
	c.mu.Lock()
	watchers := append([]watcher(nil), c.watchers...)
	c.mu.Unlock()

	for _, w := range watchers {
		if w.session.Active() {
			w.onUnauthorized()
		}
	}
}

func (c *Client) persist() {
	if c.store == nil {
		return
	}
	if err := c.store.SaveCookies(c.jar.Cookies(c.base)); err != nil {
		c.logger.Printf("save credentials: %v", err)
	}
}
