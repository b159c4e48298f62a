package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// Habit as the service reports it.
type Habit struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// HabitStore is the local habit collection. Every operation needs an
// authenticated session and changes local state only on acknowledgement.
// The lock guards memory only and is never held across a call, so a slow
// response may land after a newer one.
type HabitStore struct {
	remote  Remote
	session *Session

	mu     sync.RWMutex
	habits []Habit
	loaded bool
}

// NewHabitStore returns an empty store bound to session.
func NewHabitStore(r Remote, session *Session) *HabitStore {
	return &HabitStore{remote: r, session: session}
}

// Habits returns a copy of the collection in display order.
func (s *HabitStore) Habits() []Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Habit, len(s.habits))
	copy(out, s.habits)
	return out
}

// Loaded reports whether a list response has been applied since the store
// was created or cleared.
func (s *HabitStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// List replaces the collection with the service's list. Anything other than
// a well-formed array is ignored and the prior collection kept; the return
// value reports whether the collection was replaced.
func (s *HabitStore) List(ctx context.Context) (bool, error) {
	if !s.session.Active() {
		return false, ErrNotAuthenticated
	}
	res := s.remote.Request(ctx, http.MethodGet, "/habits", nil)
	if !res.IsArray() {
		return false, nil
	}
	habits, ok := decodeHabits(res.Body)
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	s.habits = habits
	s.loaded = true
	s.mu.Unlock()
	return true, nil
}

// Create adds a habit. A blank name is declined without a call. On
// failure the error carries the service's message and nothing changes.
func (s *HabitStore) Create(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, nil
	}
	if !s.session.Active() {
		return false, ErrNotAuthenticated
	}

	res := s.remote.Request(ctx, http.MethodPost, "/habits", map[string]string{"name": name})
	var id int64
	if !res.Field("id", &id) || id == 0 {
		return false, rejected(res)
	}
	var created string
	if !res.Field("name", &created) || created == "" {
		created = name
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	h := Habit{ID: id, Name: created}
	if i := s.indexLocked(id); i >= 0 {
		s.habits[i] = h
	} else {
		s.habits = append(s.habits, h)
	}
	return true, nil
}

// Toggle flips a habit's completion on the service and takes the resulting
// flag from the response. A response without "completed" changes nothing.
func (s *HabitStore) Toggle(ctx context.Context, id int64) (bool, error) {
	if !s.session.Active() {
		return false, ErrNotAuthenticated
	}
	res := s.remote.Request(ctx, http.MethodPatch, habitPath(id), nil)
	var completed bool
	if !res.Field("completed", &completed) {
		return false, rejected(res)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.habits[i].Completed = completed
	}
	return true, nil
}

// Delete removes a habit once the service answers without an error.
func (s *HabitStore) Delete(ctx context.Context, id int64) (bool, error) {
	if !s.session.Active() {
		return false, ErrNotAuthenticated
	}
	res := s.remote.Request(ctx, http.MethodDelete, habitPath(id), nil)
	if res.ErrorMessage() != "" {
		return false, rejected(res)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.habits = append(s.habits[:i], s.habits[i+1:]...)
	}
	return true, nil
}

// Reset marks every habit incomplete once the service answers without an
// error.
func (s *HabitStore) Reset(ctx context.Context) (bool, error) {
	if !s.session.Active() {
		return false, ErrNotAuthenticated
	}
	res := s.remote.Request(ctx, http.MethodPost, "/habits/reset", nil)
	if res.ErrorMessage() != "" {
		return false, rejected(res)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.habits {
		s.habits[i].Completed = false
	}
	return true, nil
}

func (s *HabitStore) clear() {
	s.mu.Lock()
	s.habits = nil
	s.loaded = false
	s.mu.Unlock()
}

func (s *HabitStore) indexLocked(id int64) int {
	for i, h := range s.habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func habitPath(id int64) string {
	return fmt.Sprintf("/habits/%d", id)
}

// decodeHabits accepts only an array of objects with distinct ids.
func decodeHabits(body []byte) ([]Habit, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	habits := make([]Habit, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for _, r := range raw {
		var h struct {
			ID        *int64 `json:"id"`
			Name      string `json:"name"`
			Completed bool   `json:"completed"`
		}
		if err := json.Unmarshal(r, &h); err != nil || h.ID == nil || seen[*h.ID] {
			return nil, false
		}
		seen[*h.ID] = true
		habits = append(habits, Habit{ID: *h.ID, Name: h.Name, Completed: h.Completed})
	}
	return habits, true
}
