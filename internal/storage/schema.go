package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate creates every table the store needs. Timestamps are stored as unix
// milliseconds, calendar days as YYYY-MM-DD text.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS auth_state (
			key TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			is_authenticated INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			initials TEXT NOT NULL DEFAULT '',
			avatar TEXT NOT NULL DEFAULT 'gradient-primary',
			profile_photo TEXT,
			points INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			badge TEXT NOT NULL DEFAULT 'Newcomer',
			streak INTEGER NOT NULL DEFAULT 0,
			last_active_on TEXT NOT NULL DEFAULT '',
			tasks_completed INTEGER NOT NULL DEFAULT 0,
			focus_hours REAL NOT NULL DEFAULT 0,
			rank INTEGER NOT NULL DEFAULT 999,
			previous_rank INTEGER NOT NULL DEFAULT 999,
			weekly_points INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			priority TEXT NOT NULL DEFAULT 'medium',
			category TEXT NOT NULL DEFAULT 'Personal',
			points INTEGER NOT NULL,
			awarded_points INTEGER NOT NULL DEFAULT 0,
			due_date INTEGER,
			created_at INTEGER NOT NULL,
			completed_at INTEGER,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'Personal',
			streak INTEGER NOT NULL DEFAULT 0,
			best_streak INTEGER NOT NULL DEFAULT 0,
			last_completed_on TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		// Needed to undo a habit check-in exactly and to audit the points awarded.
		`CREATE TABLE IF NOT EXISTS habit_completions (
			id TEXT PRIMARY KEY,
			habit_id TEXT NOT NULL,
			completed_on TEXT NOT NULL,
			points_awarded INTEGER NOT NULL,
			streak_before INTEGER NOT NULL,
			best_streak_before INTEGER NOT NULL,
			last_completed_before TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			FOREIGN KEY(habit_id) REFERENCES habits(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			minutes INTEGER NOT NULL,
			points INTEGER NOT NULL,
			completed_at INTEGER NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			type TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			metadata TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL,
			author_initials TEXT NOT NULL,
			author_level INTEGER NOT NULL,
			author_badge TEXT NOT NULL,
			content TEXT NOT NULL,
			type TEXT NOT NULL,
			media_url TEXT NOT NULL DEFAULT '',
			achievement_title TEXT NOT NULL DEFAULT '',
			achievement_points INTEGER NOT NULL DEFAULT 0,
			likes INTEGER NOT NULL DEFAULT 0,
			shares INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS post_likes (
			post_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY (post_id, user_id),
			FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL,
			author_initials TEXT NOT NULL,
			author_photo TEXT,
			content TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			likes INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_habits_user_id ON habits(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_habit_completions_habit_id ON habit_completions(habit_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_focus_sessions_user_id ON focus_sessions(user_id, completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id, timestamp);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE users ADD COLUMN last_active_on TEXT NOT NULL DEFAULT '';`,
		`ALTER TABLE tasks ADD COLUMN awarded_points INTEGER NOT NULL DEFAULT 0;`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
