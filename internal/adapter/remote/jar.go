package remote

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// credentialJar is the http.CookieJar the client keeps for its lifetime.
// Reset swaps the underlying jar, so in-flight calls see either the old
// cookies or none.
type credentialJar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
}

func newCredentialJar() (*credentialJar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &credentialJar{inner: inner}, nil
}

func (j *credentialJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.inner.SetCookies(u, cookies)
}

func (j *credentialJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

// Reset forgets every cookie.
func (j *credentialJar) Reset() error {
	fresh, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.inner = fresh
	j.mu.Unlock()
	return nil
}
