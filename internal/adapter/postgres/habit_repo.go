package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"habits/internal/domain"
)

// ListHabits returns a user's habits in creation order.
func (d *DB) ListHabits(ctx context.Context, userID int64) ([]domain.Habit, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name, completed FROM habits WHERE user_id=$1 ORDER BY id;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Habit, 0)
	for rows.Next() {
		var h domain.Habit
		if err := rows.Scan(&h.ID, &h.Name, &h.Completed); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CreateHabit inserts a new incomplete habit.
func (d *DB) CreateHabit(ctx context.Context, userID int64, name string) (*domain.Habit, error) {
	h := domain.Habit{Name: name}
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO habits(user_id, name, completed, created_at) VALUES($1, $2, FALSE, $3) RETURNING id;",
		userID, name, time.Now().UTC(),
	).Scan(&h.ID)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetHabit returns a habit owned by the user, or nil.
func (d *DB) GetHabit(ctx context.Context, userID, id int64) (*domain.Habit, error) {
	var h domain.Habit
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, name, completed FROM habits WHERE id=$1 AND user_id=$2;", id, userID,
	).Scan(&h.ID, &h.Name, &h.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SetHabitCompleted updates the completion flag of a habit owned by the user.
func (d *DB) SetHabitCompleted(ctx context.Context, userID, id int64, completed bool) error {
	_, err := d.sql.ExecContext(ctx,
		"UPDATE habits SET completed=$1 WHERE id=$2 AND user_id=$3;", completed, id, userID)
	return err
}

// DeleteHabit removes a habit; its completion logs cascade.
func (d *DB) DeleteHabit(ctx context.Context, userID, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM habits WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ResetHabits marks all of a user's habits incomplete.
func (d *DB) ResetHabits(ctx context.Context, userID int64) error {
	_, err := d.sql.ExecContext(ctx, "UPDATE habits SET completed=FALSE WHERE user_id=$1;", userID)
	return err
}

// ResetAllHabits marks every completed habit incomplete.
func (d *DB) ResetAllHabits(ctx context.Context) (int64, error) {
	res, err := d.sql.ExecContext(ctx, "UPDATE habits SET completed=FALSE WHERE completed;")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AddCompletion records a completion for day; a repeat is a no-op.
func (d *DB) AddCompletion(ctx context.Context, habitID int64, day string) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO completion_logs(habit_id, day) VALUES($1, $2) ON CONFLICT (habit_id, day) DO NOTHING;",
		habitID, day)
	return err
}

// RemoveCompletion deletes the completion of habit on day.
func (d *DB) RemoveCompletion(ctx context.Context, habitID int64, day string) error {
	_, err := d.sql.ExecContext(ctx,
		"DELETE FROM completion_logs WHERE habit_id=$1 AND day=$2;", habitID, day)
	return err
}

// CompletionCounts counts completion logs per day for a user's habits in
// [fromDay, toDay].
func (d *DB) CompletionCounts(ctx context.Context, userID int64, fromDay, toDay string) (map[string]int, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT l.day, COUNT(l.id) FROM completion_logs l
		JOIN habits h ON h.id = l.habit_id
		WHERE h.user_id=$1 AND l.day >= $2 AND l.day <= $3
		GROUP BY l.day;`,
		userID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		out[day.Format(domain.DayLayout)] = n
	}
	return out, rows.Err()
}
