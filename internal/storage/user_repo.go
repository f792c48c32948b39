package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type UserRepo struct {
	db DBTX
}

const userColumns = `id, name, email, initials, avatar, profile_photo, points, level, badge, streak,
	last_active_on, tasks_completed, focus_hours, rank, previous_rank, weekly_points, created_at, updated_at`

func (r *UserRepo) Insert(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.Initials, u.Avatar, nullString(u.ProfilePhoto), u.Points, u.Level, u.Badge, u.Streak,
		u.LastActiveOn, u.TasksCompleted, u.FocusHours, u.Rank, u.PreviousRank, u.WeeklyPoints,
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepo) Update(ctx context.Context, u User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, email = ?, initials = ?, avatar = ?, profile_photo = ?, points = ?, level = ?, badge = ?,
			streak = ?, last_active_on = ?, tasks_completed = ?, focus_hours = ?, rank = ?, previous_rank = ?,
			weekly_points = ?, updated_at = ?
		WHERE id = ?
	`, u.Name, u.Email, u.Initials, u.Avatar, nullString(u.ProfilePhoto), u.Points, u.Level, u.Badge,
		u.Streak, u.LastActiveOn, u.TasksCompleted, u.FocusHours, u.Rank, u.PreviousRank,
		u.WeeklyPoints, toMillis(u.UpdatedAt), u.ID)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user update %s: %w", u.ID, sql.ErrNoRows)
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY points DESC, name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user list rows: %w", err)
	}
	return out, nil
}

func (r *UserRepo) UpdateRanks(ctx context.Context, id string, rank, previousRank int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET rank = ?, previous_rank = ? WHERE id = ?`, rank, previousRank, id)
	if err != nil {
		return fmt.Errorf("user update ranks: %w", err)
	}
	return nil
}

func (r *UserRepo) ResetWeeklyPoints(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET weekly_points = 0`); err != nil {
		return fmt.Errorf("user reset weekly points: %w", err)
	}
	return nil
}

func scanUser(row scanner) (*User, error) {
	var (
		u         User
		photo     sql.NullString
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Initials, &u.Avatar, &photo, &u.Points, &u.Level, &u.Badge, &u.Streak,
		&u.LastActiveOn, &u.TasksCompleted, &u.FocusHours, &u.Rank, &u.PreviousRank, &u.WeeklyPoints,
		&createdAt, &updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	u.ProfilePhoto = stringPtr(photo)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}
