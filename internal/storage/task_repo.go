package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type TaskRepo struct {
	db DBTX
}

const taskColumns = `id, user_id, title, description, completed, priority, category, points, awarded_points,
	due_date, created_at, completed_at`

func (r *TaskRepo) Insert(ctx context.Context, t Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, t.Description, boolToInt(t.Completed), t.Priority, t.Category, t.Points,
		t.AwardedPoints, nullMillis(t.DueDate), toMillis(t.CreatedAt), nullMillis(t.CompletedAt))
	if err != nil {
		return fmt.Errorf("task insert: %w", err)
	}
	return nil
}

func (r *TaskRepo) Get(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTaskRow(row)
}

func (r *TaskRepo) Update(ctx context.Context, t Task) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, completed = ?, priority = ?, category = ?, points = ?,
			awarded_points = ?, due_date = ?, completed_at = ?
		WHERE id = ?
	`, t.Title, t.Description, boolToInt(t.Completed), t.Priority, t.Category, t.Points,
		t.AwardedPoints, nullMillis(t.DueDate), nullMillis(t.CompletedAt), t.ID)
	if err != nil {
		return fmt.Errorf("task update: %w", err)
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("task delete: %w", err)
	}
	return nil
}

func (r *TaskRepo) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

func scanTaskRow(row scanner) (*Task, error) {
	var (
		t           Task
		completed   int
		dueDate     sql.NullInt64
		createdAt   int64
		completedAt sql.NullInt64
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &completed, &t.Priority, &t.Category, &t.Points,
		&t.AwardedPoints, &dueDate, &createdAt, &completedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}
	t.Completed = completed != 0
	t.DueDate = timePtr(dueDate)
	t.CreatedAt = fromMillis(createdAt)
	t.CompletedAt = timePtr(completedAt)
	return &t, nil
}
