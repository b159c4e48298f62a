package tracker

import (
	"context"
	"encoding/json"
	"sync"

	"habits/internal/adapter/remote"
)

type call struct {
	method string
	path   string
	body   any
}

type watch struct {
	session remote.SessionState
	fn      func()
}

// fakeRemote answers from a script keyed by "METHOD /path".
type fakeRemote struct {
	mu        sync.Mutex
	responses map[string]remote.Result
	calls     []call
	watches   []watch
	resets    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{responses: map[string]remote.Result{}}
}

func (f *fakeRemote) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = remote.Result{Status: status, Body: json.RawMessage(body)}
}

func (f *fakeRemote) fail(method, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = remote.Result{Err: "Cannot reach the habit service."}
}

func (f *fakeRemote) Request(_ context.Context, method, path string, body any) remote.Result {
	f.mu.Lock()
	f.calls = append(f.calls, call{method, path, body})
	res := f.responses[method+" "+path]
	watches := append([]watch(nil), f.watches...)
	f.mu.Unlock()

	if res.Unauthorized() {
		for _, w := range watches {
			if w.session.Active() {
				w.fn()
			}
		}
	}
	return res
}

func (f *fakeRemote) WatchSession(s remote.SessionState, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watches = append(f.watches, watch{s, fn})
}

func (f *fakeRemote) ResetCredentials() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeRemote) callCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

func (f *fakeRemote) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// authed returns a controller already in the authenticated state.
func authed() (*fakeRemote, *SessionController) {
	f := newFakeRemote()
	c := NewSessionController(f)
	c.Resume("ann")
	return f, c
}
