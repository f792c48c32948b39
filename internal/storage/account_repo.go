package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type AccountRepo struct {
	db DBTX
}

func (r *AccountRepo) Insert(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.PasswordHash, a.Name, toMillis(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("account insert: %w", err)
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, id string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at FROM accounts WHERE id = ?
	`, id)
	return scanAccount(row)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at FROM accounts WHERE email = ?
	`, email)
	return scanAccount(row)
}

func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, password_hash, name, created_at FROM accounts ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("account list: %w", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("account list rows: %w", err)
	}
	return out, nil
}

func scanAccount(row scanner) (*Account, error) {
	var (
		a         Account
		createdAt int64
	)
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("account scan: %w", err)
	}
	a.CreatedAt = fromMillis(createdAt)
	return &a, nil
}

const authKey = "app_auth"

// AuthRepo persists the one local session row.
type AuthRepo struct {
	db DBTX
}

func (r *AuthRepo) Get(ctx context.Context) (*AuthState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT email, is_authenticated FROM auth_state WHERE key = ?`, authKey)
	var (
		st   AuthState
		auth int
	)
	if err := row.Scan(&st.Email, &auth); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("auth get: %w", err)
	}
	st.IsAuthenticated = auth != 0
	return &st, nil
}

func (r *AuthRepo) Set(ctx context.Context, st AuthState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_state (key, email, is_authenticated) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET email = excluded.email, is_authenticated = excluded.is_authenticated
	`, authKey, st.Email, boolToInt(st.IsAuthenticated))
	if err != nil {
		return fmt.Errorf("auth set: %w", err)
	}
	return nil
}

func (r *AuthRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_state WHERE key = ?`, authKey); err != nil {
		return fmt.Errorf("auth clear: %w", err)
	}
	return nil
}
