package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"habits/internal/adapter/remote"
)

type fakeSession struct{ active bool }

func (f *fakeSession) Active() bool { return f.active }

type memCookies struct {
	mu      sync.Mutex
	cookies []*http.Cookie
	saves   int
}

func (m *memCookies) LoadCookies() ([]*http.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cookies, nil
}

func (m *memCookies) SaveCookies(c []*http.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies = c
	m.saves++
	return nil
}

func newClient(t *testing.T, h http.HandlerFunc, opts ...remote.Option) *remote.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := remote.New(srv.URL+"/api", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNew_RejectsBadBase(t *testing.T) {
	if _, err := remote.New("ftp://example.com"); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}

func TestRequest_SendsJSON(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/habits" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":3,"name":"Read"}`))
	})

	res := c.Request(context.Background(), http.MethodPost, "habits", map[string]string{"name": "Read"})
	if res.Failed() {
		t.Fatalf("unexpected failure: %s", res.Err)
	}
	if res.Status != http.StatusCreated {
		t.Fatalf("status = %d", res.Status)
	}
	var id int64
	if !res.Field("id", &id) || id != 3 {
		t.Fatalf("id = %d", id)
	}
	if res.Has("completed") {
		t.Fatal("completed should be absent")
	}
}

func TestRequest_TransportFailureIsResult(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := remote.New(srv.URL + "/api")
	if err != nil {
		t.Fatal(err)
	}
	res := c.Request(context.Background(), http.MethodGet, "/habits", nil)
	if !res.Failed() {
		t.Fatal("expected transport failure")
	}
	if res.ErrorMessage() == "" {
		t.Fatal("expected a human-readable error message")
	}
	if res.Has("id") || res.IsArray() {
		t.Fatal("failure result must not look like data")
	}
}

func TestRequest_NonJSONBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	})
	res := c.Request(context.Background(), http.MethodGet, "/habits", nil)
	if !res.Failed() {
		t.Fatal("expected failure for non-JSON body")
	}
}

func TestRequest_UnauthorizedNotifiesActiveSession(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	})

	sess := &fakeSession{active: true}
	calls := 0
	c.WatchSession(sess, func() {
		calls++
		sess.active = false
	})

	res := c.Request(context.Background(), http.MethodGet, "/habits", nil)
	if !res.Unauthorized() {
		t.Fatalf("status = %d", res.Status)
	}
	if res.ErrorMessage() != "Unauthorized" {
		t.Fatalf("error = %q", res.ErrorMessage())
	}
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}

	// Session is no longer active, so a second 401 is not signalled.
	c.Request(context.Background(), http.MethodGet, "/habits", nil)
	if calls != 1 {
		t.Fatalf("expected no further notification, got %d", calls)
	}
}

func TestRequest_UnauthorizedWithoutSessionIsQuiet(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid username or password"}`))
	})
	called := false
	c.WatchSession(&fakeSession{}, func() { called = true })

	c.Request(context.Background(), http.MethodPost, "/login", nil)
	if called {
		t.Fatal("anonymous 401 must not signal")
	}
}

func TestCookiesPersistAcrossClients(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/", HttpOnly: true})
		_, _ = w.Write([]byte(`{"message":"Logged in","user":{"username":"ann"}}`))
	})
	mux.HandleFunc("/api/habits", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("session")
		if err != nil || ck.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := &memCookies{}
	first, err := remote.New(srv.URL+"/api", remote.WithCookieStore(store))
	if err != nil {
		t.Fatal(err)
	}
	first.Request(context.Background(), http.MethodPost, "/login", nil)
	if len(store.cookies) != 1 {
		t.Fatalf("expected 1 persisted cookie, got %d", len(store.cookies))
	}

	second, err := remote.New(srv.URL+"/api", remote.WithCookieStore(store))
	if err != nil {
		t.Fatal(err)
	}
	res := second.Request(context.Background(), http.MethodGet, "/habits", nil)
	if !res.IsArray() {
		t.Fatalf("expected array with restored cookie, got status %d body %s", res.Status, res.Body)
	}

	second.ResetCredentials()
	if len(store.cookies) != 0 {
		t.Fatalf("expected cleared cookies, got %d", len(store.cookies))
	}
	if res := second.Request(context.Background(), http.MethodGet, "/habits", nil); !res.Unauthorized() {
		t.Fatalf("expected 401 after reset, got %d", res.Status)
	}
}

func TestResetCredentials_DuringRequests(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/"})
		_, _ = w.Write([]byte(`[]`))
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if res := c.Request(context.Background(), http.MethodGet, "/habits", nil); res.Failed() {
				t.Errorf("request failed: %s", res.Err)
			}
		}()
		go func() {
			defer wg.Done()
			c.ResetCredentials()
		}()
	}
	wg.Wait()

	c.ResetCredentials()
	if res := c.Request(context.Background(), http.MethodGet, "/habits", nil); !res.IsArray() {
		t.Fatalf("client unusable after reset: %d %s", res.Status, res.Body)
	}
}
