package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"habits/internal/app"
	"habits/internal/domain"
)

type mockHabitRepo struct {
	listFn     func(ctx context.Context, userID int64) ([]domain.Habit, error)
	createFn   func(ctx context.Context, userID int64, name string) (*domain.Habit, error)
	getFn      func(ctx context.Context, userID, id int64) (*domain.Habit, error)
	setFn      func(ctx context.Context, userID, id int64, completed bool) error
	deleteFn   func(ctx context.Context, userID, id int64) (bool, error)
	resetFn    func(ctx context.Context, userID int64) error
	resetAllFn func(ctx context.Context) (int64, error)
}

func (m *mockHabitRepo) ListHabits(ctx context.Context, userID int64) ([]domain.Habit, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockHabitRepo) CreateHabit(ctx context.Context, userID int64, name string) (*domain.Habit, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name)
	}
	return &domain.Habit{ID: 1, Name: name}, nil
}

func (m *mockHabitRepo) GetHabit(ctx context.Context, userID, id int64) (*domain.Habit, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockHabitRepo) SetHabitCompleted(ctx context.Context, userID, id int64, completed bool) error {
	if m.setFn != nil {
		return m.setFn(ctx, userID, id, completed)
	}
	return nil
}

func (m *mockHabitRepo) DeleteHabit(ctx context.Context, userID, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return true, nil
}

func (m *mockHabitRepo) ResetHabits(ctx context.Context, userID int64) error {
	if m.resetFn != nil {
		return m.resetFn(ctx, userID)
	}
	return nil
}

func (m *mockHabitRepo) ResetAllHabits(ctx context.Context) (int64, error) {
	if m.resetAllFn != nil {
		return m.resetAllFn(ctx)
	}
	return 0, nil
}

type mockCompletionRepo struct {
	addFn    func(ctx context.Context, habitID int64, day string) error
	removeFn func(ctx context.Context, habitID int64, day string) error
	countsFn func(ctx context.Context, userID int64, from, to string) (map[string]int, error)
}

func (m *mockCompletionRepo) AddCompletion(ctx context.Context, habitID int64, day string) error {
	if m.addFn != nil {
		return m.addFn(ctx, habitID, day)
	}
	return nil
}

func (m *mockCompletionRepo) RemoveCompletion(ctx context.Context, habitID int64, day string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, habitID, day)
	}
	return nil
}

func (m *mockCompletionRepo) CompletionCounts(ctx context.Context, userID int64, from, to string) (map[string]int, error) {
	if m.countsFn != nil {
		return m.countsFn(ctx, userID, from, to)
	}
	return nil, nil
}

func TestHabitList_NeverNil(t *testing.T) {
	svc := app.NewHabitService(&mockHabitRepo{}, &mockCompletionRepo{})
	items, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil {
		t.Fatal("expected empty slice, got nil")
	}
}

func TestHabitCreate_Validation(t *testing.T) {
	repo := &mockHabitRepo{
		createFn: func(context.Context, int64, string) (*domain.Habit, error) {
			t.Fatal("create should not be reached")
			return nil, nil
		},
	}
	svc := app.NewHabitService(repo, &mockCompletionRepo{})
	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Create(context.Background(), 1, name); !errors.Is(err, app.ErrHabitNameRequired) {
			t.Errorf("Create(%q): expected ErrHabitNameRequired, got %v", name, err)
		}
	}
}

func TestHabitCreate_TrimsName(t *testing.T) {
	var got string
	repo := &mockHabitRepo{
		createFn: func(_ context.Context, _ int64, name string) (*domain.Habit, error) {
			got = name
			return &domain.Habit{ID: 5, Name: name}, nil
		},
	}
	svc := app.NewHabitService(repo, &mockCompletionRepo{})
	h, err := svc.Create(context.Background(), 1, "  Drink water ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Drink water" || h.ID != 5 || h.Completed {
		t.Errorf("unexpected habit %+v (stored name %q)", h, got)
	}
}

func TestHabitToggle_LogsToday(t *testing.T) {
	today := domain.Day(time.Now())
	tests := []struct {
		name       string
		completed  bool
		wantAdd    bool
		wantRemove bool
	}{
		{"check records today", false, true, false},
		{"uncheck removes today", true, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var added, removed bool
			var stored *bool
			repo := &mockHabitRepo{
				getFn: func(_ context.Context, _ int64, id int64) (*domain.Habit, error) {
					return &domain.Habit{ID: id, Name: "Read", Completed: tc.completed}, nil
				},
				setFn: func(_ context.Context, _, _ int64, completed bool) error {
					stored = &completed
					return nil
				},
			}
			logs := &mockCompletionRepo{
				addFn: func(_ context.Context, habitID int64, day string) error {
					if habitID != 3 || day != today {
						t.Errorf("unexpected add(%d, %q)", habitID, day)
					}
					added = true
					return nil
				},
				removeFn: func(_ context.Context, habitID int64, day string) error {
					if habitID != 3 || day != today {
						t.Errorf("unexpected remove(%d, %q)", habitID, day)
					}
					removed = true
					return nil
				},
			}
			svc := app.NewHabitService(repo, logs)
			h, err := svc.Toggle(context.Background(), 1, 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Completed == tc.completed {
				t.Errorf("expected completed to flip from %v", tc.completed)
			}
			if stored == nil || *stored != h.Completed {
				t.Errorf("expected stored completion %v", h.Completed)
			}
			if added != tc.wantAdd || removed != tc.wantRemove {
				t.Errorf("added=%v removed=%v; want %v %v", added, removed, tc.wantAdd, tc.wantRemove)
			}
		})
	}
}

func TestHabitToggle_NotFound(t *testing.T) {
	svc := app.NewHabitService(&mockHabitRepo{}, &mockCompletionRepo{})
	if _, err := svc.Toggle(context.Background(), 1, 99); !errors.Is(err, app.ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestHabitDelete(t *testing.T) {
	found := true
	repo := &mockHabitRepo{
		deleteFn: func(context.Context, int64, int64) (bool, error) { return found, nil },
	}
	svc := app.NewHabitService(repo, &mockCompletionRepo{})
	if err := svc.Delete(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found = false
	if err := svc.Delete(context.Background(), 1, 2); !errors.Is(err, app.ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestHistoryRecent_Window(t *testing.T) {
	var gotFrom, gotTo string
	logs := &mockCompletionRepo{
		countsFn: func(_ context.Context, _ int64, from, to string) (map[string]int, error) {
			gotFrom, gotTo = from, to
			return map[string]int{to: 2}, nil
		},
	}
	svc := app.NewHistoryService(logs)
	counts, err := svc.Recent(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Now()
	if want := domain.Day(now); gotTo != want {
		t.Errorf("to = %q; want %q", gotTo, want)
	}
	if want := domain.Day(now.AddDate(0, 0, -6)); gotFrom != want {
		t.Errorf("from = %q; want %q", gotFrom, want)
	}
	if counts[gotTo] != 2 {
		t.Errorf("expected today's count 2, got %v", counts)
	}
}

func TestHistoryRecent_EmptyIsNotNil(t *testing.T) {
	svc := app.NewHistoryService(&mockCompletionRepo{})
	counts, err := svc.Recent(context.Background(), 1, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts == nil {
		t.Fatal("expected empty map, got nil")
	}
}

type failingAdvisor struct{}

func (failingAdvisor) Advise(context.Context, []domain.Habit) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestCoachAdvice(t *testing.T) {
	tests := []struct {
		name    string
		habits  []domain.Habit
		advisor app.Advisor
		want    string
		wantErr error
	}{
		{name: "no habits", want: app.NoHabitsAdvice},
		{
			name:   "nothing done",
			habits: []domain.Habit{{ID: 1, Name: "Stretch"}},
			want:   "Start with \"Stretch\": pick the smallest version of it and do that right now. Momentum from one win makes the rest easier.",
		},
		{
			name:   "partly done",
			habits: []domain.Habit{{ID: 1, Name: "Stretch", Completed: true}, {ID: 2, Name: "Read"}},
			want:   "You're 1 of 2 in, nice. Stack \"Read\" onto something you already did today so it rides along.",
		},
		{
			name:    "advisor failure",
			habits:  []domain.Habit{{ID: 1, Name: "Stretch"}},
			advisor: failingAdvisor{},
			wantErr: app.ErrCoachUnavailable,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockHabitRepo{
				listFn: func(context.Context, int64) ([]domain.Habit, error) { return tc.habits, nil },
			}
			svc := app.NewCoachService(repo, tc.advisor)
			got, err := svc.Advice(context.Background(), 1)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("advice = %q; want %q", got, tc.want)
			}
		})
	}
}
