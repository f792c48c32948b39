package storage

import (
	"context"
	"fmt"
)

type FocusRepo struct {
	db DBTX
}

func (r *FocusRepo) Insert(ctx context.Context, s FocusSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO focus_sessions (id, user_id, kind, minutes, points, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.Kind, s.Minutes, s.Points, toMillis(s.CompletedAt))
	if err != nil {
		return fmt.Errorf("focus session insert: %w", err)
	}
	return nil
}

func (r *FocusRepo) ListByUser(ctx context.Context, userID string) ([]FocusSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, minutes, points, completed_at
		FROM focus_sessions
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("focus session list: %w", err)
	}
	defer rows.Close()

	var out []FocusSession
	for rows.Next() {
		var (
			s           FocusSession
			completedAt int64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Kind, &s.Minutes, &s.Points, &completedAt); err != nil {
			return nil, fmt.Errorf("focus session scan: %w", err)
		}
		s.CompletedAt = fromMillis(completedAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("focus session list rows: %w", err)
	}
	return out, nil
}
