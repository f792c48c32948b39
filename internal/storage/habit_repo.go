package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type HabitRepo struct {
	db DBTX
}

const habitColumns = `id, user_id, title, category, streak, best_streak, last_completed_on, created_at`

func (r *HabitRepo) Insert(ctx context.Context, h Habit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.UserID, h.Title, h.Category, h.Streak, h.BestStreak, h.LastCompletedOn, toMillis(h.CreatedAt))
	if err != nil {
		return fmt.Errorf("habit insert: %w", err)
	}
	return nil
}

func (r *HabitRepo) Get(ctx context.Context, id string) (*Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	return scanHabit(row)
}

func (r *HabitRepo) Update(ctx context.Context, h Habit) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE habits
		SET title = ?, category = ?, streak = ?, best_streak = ?, last_completed_on = ?
		WHERE id = ?
	`, h.Title, h.Category, h.Streak, h.BestStreak, h.LastCompletedOn, h.ID)
	if err != nil {
		return fmt.Errorf("habit update: %w", err)
	}
	return nil
}

func (r *HabitRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("habit delete: %w", err)
	}
	return nil
}

func (r *HabitRepo) ListByUser(ctx context.Context, userID string) ([]Habit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit list rows: %w", err)
	}
	return out, nil
}

func (r *HabitRepo) InsertCompletion(ctx context.Context, c HabitCompletion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO habit_completions (
			id, habit_id, completed_on, points_awarded,
			streak_before, best_streak_before, last_completed_before, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.HabitID, c.CompletedOn, c.PointsAwarded, c.StreakBefore, c.BestStreakBefore,
		c.LastCompletedBefore, toMillis(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("habit completion insert: %w", err)
	}
	return nil
}

const completionColumns = `c.id, c.habit_id, c.completed_on, c.points_awarded,
	c.streak_before, c.best_streak_before, c.last_completed_before, c.created_at`

func (r *HabitRepo) LastCompletion(ctx context.Context, habitID string) (*HabitCompletion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM habit_completions c
		WHERE c.habit_id = ?
		ORDER BY c.created_at DESC, c.completed_on DESC
		LIMIT 1
	`, habitID)
	return scanCompletion(row)
}

func (r *HabitRepo) DeleteCompletion(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM habit_completions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("habit completion delete: %w", err)
	}
	return nil
}

func (r *HabitRepo) ListCompletionsByUser(ctx context.Context, userID string) ([]HabitCompletion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+completionColumns+`
		FROM habit_completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE h.user_id = ?
		ORDER BY c.created_at ASC, c.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("habit completion list: %w", err)
	}
	defer rows.Close()

	var out []HabitCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit completion list rows: %w", err)
	}
	return out, nil
}

func scanHabit(row scanner) (*Habit, error) {
	var (
		h         Habit
		createdAt int64
	)
	if err := row.Scan(&h.ID, &h.UserID, &h.Title, &h.Category, &h.Streak, &h.BestStreak, &h.LastCompletedOn, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("habit scan: %w", err)
	}
	h.CreatedAt = fromMillis(createdAt)
	return &h, nil
}

func scanCompletion(row scanner) (*HabitCompletion, error) {
	var (
		c         HabitCompletion
		createdAt int64
	)
	if err := row.Scan(
		&c.ID, &c.HabitID, &c.CompletedOn, &c.PointsAwarded,
		&c.StreakBefore, &c.BestStreakBefore, &c.LastCompletedBefore, &createdAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("habit completion scan: %w", err)
	}
	c.CreatedAt = fromMillis(createdAt)
	return &c, nil
}
