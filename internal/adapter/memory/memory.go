// Package memory keeps every repository in process memory. habitd uses it
// when no database is configured, and tests use it throughout.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"habits/internal/domain"
)

type completion struct {
	habitID int64
	day     string
}

// DB guards all state with one mutex.
type DB struct {
	mu          sync.Mutex
	habits      []domain.Habit
	owners      map[int64]int64 // habit id -> user id
	completions map[completion]struct{}
	users       []*domain.User
	sessions    map[string]*domain.Session

	habitIDCounter int64
	userIDCounter  int64
}

func New() *DB {
	return &DB{
		owners:      make(map[int64]int64),
		completions: make(map[completion]struct{}),
		sessions:    make(map[string]*domain.Session),
	}
}

var (
	_ domain.HabitRepository      = (*DB)(nil)
	_ domain.CompletionRepository = (*DB)(nil)
	_ domain.UserRepository       = (*DB)(nil)
	_ domain.SessionRepository    = (*SessionRepo)(nil)
)

// --- HabitRepository ---

// ListHabits returns the user's habits in creation order.
func (db *DB) ListHabits(ctx context.Context, userID int64) ([]domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Habit, 0)
	for _, h := range db.habits {
		if db.owners[h.ID] == userID {
			result = append(result, h)
		}
	}
	return result, nil
}

// CreateHabit stores a new incomplete habit.
func (db *DB) CreateHabit(ctx context.Context, userID int64, name string) (*domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.habitIDCounter++
	h := domain.Habit{ID: db.habitIDCounter, Name: name}
	db.habits = append(db.habits, h)
	db.owners[h.ID] = userID
	return &h, nil
}

// GetHabit returns a copy of the habit, or nil if the user does not own it.
func (db *DB) GetHabit(ctx context.Context, userID, id int64) (*domain.Habit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexLocked(userID, id)
	if i < 0 {
		return nil, nil
	}
	h := db.habits[i]
	return &h, nil
}

// SetHabitCompleted updates a habit's completion flag.
func (db *DB) SetHabitCompleted(ctx context.Context, userID, id int64, completed bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexLocked(userID, id)
	if i < 0 {
		return errors.New("habit not found")
	}
	db.habits[i].Completed = completed
	return nil
}

// DeleteHabit removes a habit and its completion log.
func (db *DB) DeleteHabit(ctx context.Context, userID, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexLocked(userID, id)
	if i < 0 {
		return false, nil
	}
	db.habits = append(db.habits[:i], db.habits[i+1:]...)
	delete(db.owners, id)
	for c := range db.completions {
		if c.habitID == id {
			delete(db.completions, c)
		}
	}
	return true, nil
}

// ResetHabits marks all of the user's habits incomplete.
func (db *DB) ResetHabits(ctx context.Context, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.habits {
		if db.owners[db.habits[i].ID] == userID {
			db.habits[i].Completed = false
		}
	}
	return nil
}

// ResetAllHabits marks every habit incomplete and reports how many changed.
func (db *DB) ResetAllHabits(ctx context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int64
	for i := range db.habits {
		if db.habits[i].Completed {
			db.habits[i].Completed = false
			n++
		}
	}
	return n, nil
}

func (db *DB) indexLocked(userID, id int64) int {
	if owner, ok := db.owners[id]; !ok || owner != userID {
		return -1
	}
	for i, h := range db.habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// --- CompletionRepository ---

// AddCompletion records that a habit was completed on day. Repeats are ignored.
func (db *DB) AddCompletion(ctx context.Context, habitID int64, day string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.completions[completion{habitID: habitID, day: day}] = struct{}{}
	return nil
}

// RemoveCompletion deletes the completion record for habit on day.
func (db *DB) RemoveCompletion(ctx context.Context, habitID int64, day string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.completions, completion{habitID: habitID, day: day})
	return nil
}

// CompletionCounts counts completions per day in [fromDay, toDay] across the
// user's habits.
func (db *DB) CompletionCounts(ctx context.Context, userID int64, fromDay, toDay string) (map[string]int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	counts := make(map[string]int)
	for c := range db.completions {
		if db.owners[c.habitID] != userID {
			continue
		}
		// Days share one fixed-width layout, so string order is date order.
		if c.day < fromDay || c.day > toDay {
			continue
		}
		counts[c.day]++
	}
	return counts, nil
}

// --- UserRepository ---

func (db *DB) findUserLocked(match func(*domain.User) bool) *domain.User {
	for _, u := range db.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.findUserLocked(func(u *domain.User) bool { return u.Username == username }), nil
}

func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.findUserLocked(func(u *domain.User) bool { return u.ID == id }), nil
}

// Create adds an account. Usernames are unique.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.findUserLocked(func(u *domain.User) bool { return u.Username == username }) != nil {
		return nil, domain.ErrUsernameTaken
	}
	db.userIDCounter++
	u := domain.User{ID: db.userIDCounter, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	db.users = append(db.users, &u)
	cp := u
	return &cp, nil
}

func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo shares the DB lock and stores sessions by token.
type SessionRepo struct {
	db *DB
}

func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sessions[token] = &domain.Session{
		Token: token, UserID: userID, UserAgent: userAgent, IP: ip,
		ExpiresAt: expiresAt, CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken leaves expiry checks to the caller.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for token, s := range r.db.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.db.sessions, token)
		}
	}
	return nil
}

// Sessions counts stored sessions, expired ones included.
func (r *SessionRepo) Sessions() int {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.sessions)
}
