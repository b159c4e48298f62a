package domain

import (
	"context"
	"time"
)

// DayLayout is the calendar-day format used on the wire and in storage.
const DayLayout = "2006-01-02"

// Habit is a daily habit owned by one user.
type Habit struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// HabitRepository is the port for habit persistence. All methods are scoped
// to a user; GetHabit returns nil, nil for unknown ids.
type HabitRepository interface {
	ListHabits(ctx context.Context, userID int64) ([]Habit, error)
	CreateHabit(ctx context.Context, userID int64, name string) (*Habit, error)
	GetHabit(ctx context.Context, userID, id int64) (*Habit, error)
	SetHabitCompleted(ctx context.Context, userID, id int64, completed bool) error
	DeleteHabit(ctx context.Context, userID, id int64) (bool, error)
	ResetHabits(ctx context.Context, userID int64) error
	ResetAllHabits(ctx context.Context) (int64, error)
}

// CompletionRepository is the port for the completion log that backs the
// history view. A habit has at most one log row per day.
type CompletionRepository interface {
	AddCompletion(ctx context.Context, habitID int64, day string) error
	RemoveCompletion(ctx context.Context, habitID int64, day string) error
	CompletionCounts(ctx context.Context, userID int64, fromDay, toDay string) (map[string]int, error)
}

// Day formats t as a UTC calendar day. Clients bucket history the same
// way, so server and client agree on "today" whatever their zones.
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}
