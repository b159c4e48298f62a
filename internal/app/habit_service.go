package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"habits/internal/domain"
)

var (
	// ErrHabitNotFound indicates that the habit does not exist for the user.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitNameRequired indicates that a habit name was blank.
	ErrHabitNameRequired = errors.New("habit name is required")
)

// HabitService encapsulates habit-tracking use cases.
type HabitService struct {
	habits domain.HabitRepository
	logs   domain.CompletionRepository
	now    func() time.Time
}

// NewHabitService creates a HabitService backed by the given repositories.
func NewHabitService(habits domain.HabitRepository, logs domain.CompletionRepository) *HabitService {
	return &HabitService{habits: habits, logs: logs, now: time.Now}
}

// List returns the user's habits in creation order. The result is never nil.
func (s *HabitService) List(ctx context.Context, userID int64) ([]domain.Habit, error) {
	items, err := s.habits.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Habit{}
	}
	return items, nil
}

// Create validates and stores a new, incomplete habit.
func (s *HabitService) Create(ctx context.Context, userID int64, name string) (*domain.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrHabitNameRequired
	}
	return s.habits.CreateHabit(ctx, userID, name)
}

// Toggle flips a habit's completion and keeps today's completion log in step:
// checking a habit records today, unchecking removes today's record.
func (s *HabitService) Toggle(ctx context.Context, userID, id int64) (*domain.Habit, error) {
	h, err := s.habits.GetHabit(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHabitNotFound
	}

	h.Completed = !h.Completed
	if err := s.habits.SetHabitCompleted(ctx, userID, id, h.Completed); err != nil {
		return nil, err
	}

	today := domain.Day(s.now())
	if h.Completed {
		err = s.logs.AddCompletion(ctx, id, today)
	} else {
		err = s.logs.RemoveCompletion(ctx, id, today)
	}
	if err != nil {
		return nil, fmt.Errorf("completion log: %w", err)
	}
	return h, nil
}

// Delete removes a habit and its completion history.
func (s *HabitService) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.habits.DeleteHabit(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrHabitNotFound
	}
	return nil
}

// Reset marks every habit of the user incomplete. Completion logs are kept.
func (s *HabitService) Reset(ctx context.Context, userID int64) error {
	return s.habits.ResetHabits(ctx, userID)
}

// ResetAll starts a new day for every user and returns the number of
// habits that were cleared.
func (s *HabitService) ResetAll(ctx context.Context) (int64, error) {
	return s.habits.ResetAllHabits(ctx)
}
