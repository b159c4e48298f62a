package app

import (
	"context"
	"errors"
	"fmt"

	"habits/internal/domain"
)

// NoHabitsAdvice is returned when the user has nothing to be coached on.
const NoHabitsAdvice = "Add some habits first, then I'll give you a strategy!"

// ErrCoachUnavailable is reported when the advisor fails.
var ErrCoachUnavailable = errors.New("coach is unavailable right now, try again in a minute")

// Advisor turns a habit list into a short piece of advice.
type Advisor interface {
	Advise(ctx context.Context, habits []domain.Habit) (string, error)
}

// CoachService produces advice for a user's current habits.
type CoachService struct {
	habits  domain.HabitRepository
	advisor Advisor
}

// NewCoachService creates a CoachService. A nil advisor selects RuleAdvisor.
func NewCoachService(habits domain.HabitRepository, advisor Advisor) *CoachService {
	if advisor == nil {
		advisor = RuleAdvisor{}
	}
	return &CoachService{habits: habits, advisor: advisor}
}

// Advice returns advice for the user's habits.
func (s *CoachService) Advice(ctx context.Context, userID int64) (string, error) {
	items, err := s.habits.ListHabits(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return NoHabitsAdvice, nil
	}
	advice, err := s.advisor.Advise(ctx, items)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoachUnavailable, err)
	}
	return advice, nil
}

// RuleAdvisor is a deterministic advisor that nudges towards the first
// pending habit.
type RuleAdvisor struct{}

// Advise implements Advisor.
func (RuleAdvisor) Advise(_ context.Context, habits []domain.Habit) (string, error) {
	done := 0
	var pending *domain.Habit
	for i := range habits {
		if habits[i].Completed {
			done++
			continue
		}
		if pending == nil {
			pending = &habits[i]
		}
	}

	switch {
	case pending == nil:
		return fmt.Sprintf("All %d habits done today, so protect the streak by doing them at the same time tomorrow. Consistency beats intensity.", len(habits)), nil
	case done == 0:
		return fmt.Sprintf("Start with %q: pick the smallest version of it and do that right now. Momentum from one win makes the rest easier.", pending.Name), nil
	default:
		return fmt.Sprintf("You're %d of %d in, nice. Stack %q onto something you already did today so it rides along.", done, len(habits), pending.Name), nil
	}
}
