package tracker

import (
	"context"
	"net/http"
	"time"
)

// Engine wires the session, habit store, history and celebration together.
// It fetches habits and history when a session starts and again after every
// acknowledged mutation.
type Engine struct {
	remote      Remote
	session     *SessionController
	habits      *HabitStore
	history     *HistoryAggregator
	celebration *Celebration
}

// Option configures an Engine.
type Option func(*Engine)

// WithCelebration sets the effect run when every habit becomes complete.
func WithCelebration(fire func()) Option {
	return func(e *Engine) { e.celebration.fire = fire }
}

// WithClock overrides the clock used to pick the history days.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.history.now = now }
}

// NewEngine builds an anonymous engine on r.
func NewEngine(r Remote, opts ...Option) *Engine {
	sc := NewSessionController(r)
	e := &Engine{
		remote:      r,
		session:     sc,
		habits:      NewHabitStore(r, sc.Session()),
		history:     NewHistoryAggregator(r, sc.Session()),
		celebration: NewCelebration(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	sc.Subscribe(func(s State, _ Identity) {
		if s == Anonymous {
			e.habits.clear()
			e.history.clear()
			e.celebration.reset()
		}
	})
	return e
}

// Session returns the engine's session.
func (e *Engine) Session() *Session { return e.session.Session() }

// OnSessionChange registers fn for every session transition.
func (e *Engine) OnSessionChange(fn func(State, Identity)) { e.session.Subscribe(fn) }

// Habits returns the current collection.
func (e *Engine) Habits() []Habit { return e.habits.Habits() }

// History returns the current history snapshot.
func (e *Engine) History() HistoryMap { return e.history.Snapshot() }

// Login authenticates and loads the user's data.
func (e *Engine) Login(ctx context.Context, username, password string) error {
	if err := e.session.Login(ctx, username, password); err != nil {
		return err
	}
	return e.Sync(ctx)
}

// Register creates an account. Data is loaded only if the service
// authenticated the new user directly.
func (e *Engine) Register(ctx context.Context, username, password string) (RegisterOutcome, error) {
	out, err := e.session.Register(ctx, username, password)
	if err != nil || !out.Authenticated {
		return out, err
	}
	return out, e.Sync(ctx)
}

// Logout ends the session locally regardless of the service's answer.
func (e *Engine) Logout(ctx context.Context) {
	e.session.Logout(ctx)
}

// Resume restores a persisted identity and loads its data.
func (e *Engine) Resume(ctx context.Context, user Identity) error {
	e.session.Resume(user)
	return e.Sync(ctx)
}

// Sync refetches the habit list and the history.
func (e *Engine) Sync(ctx context.Context) error {
	if _, err := e.habits.List(ctx); err != nil {
		return err
	}
	e.celebration.Observe(e.habits.Habits())
	_, err := e.history.Refresh(ctx)
	return err
}

// Create adds a habit. Blank names are declined silently.
func (e *Engine) Create(ctx context.Context, name string) (bool, error) {
	return e.mutate(ctx, func(ctx context.Context) (bool, error) {
		return e.habits.Create(ctx, name)
	})
}

// Toggle flips a habit's completion.
func (e *Engine) Toggle(ctx context.Context, id int64) (bool, error) {
	return e.mutate(ctx, func(ctx context.Context) (bool, error) {
		return e.habits.Toggle(ctx, id)
	})
}

// Delete removes a habit.
func (e *Engine) Delete(ctx context.Context, id int64) (bool, error) {
	return e.mutate(ctx, func(ctx context.Context) (bool, error) {
		return e.habits.Delete(ctx, id)
	})
}

// Reset marks every habit incomplete.
func (e *Engine) Reset(ctx context.Context) (bool, error) {
	return e.mutate(ctx, e.habits.Reset)
}

func (e *Engine) mutate(ctx context.Context, op func(context.Context) (bool, error)) (bool, error) {
	ok, err := op(ctx)
	if !ok {
		return false, err
	}
	e.celebration.Observe(e.habits.Habits())
	return true, e.Sync(ctx)
}

// Coach asks the service for advice on the current habits.
func (e *Engine) Coach(ctx context.Context) (string, error) {
	if !e.Session().Active() {
		return "", ErrNotAuthenticated
	}
	res := e.remote.Request(ctx, http.MethodGet, "/ai-coach", nil)
	var advice string
	if res.Field("advice", &advice) {
		return advice, nil
	}
	return "", rejected(res)
}

// Dashboard is a point-in-time view of everything the client shows.
type Dashboard struct {
	User      Identity `json:"user,omitempty"`
	Habits    []Habit  `json:"habits"`
	Completed int      `json:"completed"`
	Total     int      `json:"total"`
	Progress  int      `json:"progress"`
	History   []Bar    `json:"history"`

	// Loaded is false until the service has returned a usable habit list.
	Loaded bool `json:"loaded"`
}

// Dashboard snapshots the engine's state.
func (e *Engine) Dashboard() Dashboard {
	user, _ := e.Session().User()
	habits := e.habits.Habits()
	done := 0
	for _, h := range habits {
		if h.Completed {
			done++
		}
	}
	return Dashboard{
		User:      user,
		Habits:    habits,
		Completed: done,
		Total:     len(habits),
		Progress:  Progress(habits),
		History:   e.history.Bars(),
		Loaded:    e.habits.Loaded(),
	}
}
