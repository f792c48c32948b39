package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type NotificationRepo struct {
	db  DBTX
	log *zap.Logger
}

const notificationColumns = `id, user_id, title, message, type, read, metadata, created_at`

func (r *NotificationRepo) Insert(ctx context.Context, n Notification) error {
	var meta sql.NullString
	if n.Metadata != nil {
		data, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("marshal notification metadata: %w", err)
		}
		meta = sql.NullString{String: string(data), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Title, n.Message, n.Type, boolToInt(n.Read), meta, toMillis(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("notification insert: %w", err)
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, id string) (*Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	return r.scan(row)
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("notification list: %w", err)
	}
	return r.collect(rows)
}

func (r *NotificationRepo) ListAll(ctx context.Context) ([]Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("notification list all: %w", err)
	}
	return r.collect(rows)
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("notification unread count: %w", err)
	}
	return n, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("notification mark read: %w", err)
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("notification mark all read: %w", err)
	}
	return nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("notification delete: %w", err)
	}
	return nil
}

func (r *NotificationRepo) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("notification clear: %w", err)
	}
	return nil
}

func (r *NotificationRepo) collect(rows *sql.Rows) ([]Notification, error) {
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notification list rows: %w", err)
	}
	return out, nil
}

// scan drops unreadable metadata rather than failing the whole read.
func (r *NotificationRepo) scan(row scanner) (*Notification, error) {
	var (
		n         Notification
		read      int
		meta      sql.NullString
		createdAt int64
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &read, &meta, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("notification scan: %w", err)
	}
	n.Read = read != 0
	n.CreatedAt = fromMillis(createdAt)
	if meta.Valid && meta.String != "" {
		var m NotificationMetadata
		if err := json.Unmarshal([]byte(meta.String), &m); err != nil {
			r.log.Warn("unreadable notification metadata", zap.String("id", n.ID), zap.Error(err))
		} else {
			n.Metadata = &m
		}
	}
	return &n, nil
}
