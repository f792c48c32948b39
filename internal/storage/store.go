package storage

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// SQLStore implements Store over a SQLite handle.
type SQLStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLStore(db *sql.DB, log *zap.Logger) *SQLStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLStore{db: db, log: log}
}

func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Repos returns repositories bound to the connection pool (no transaction).
func (s *SQLStore) Repos() Repos {
	return newRepos(s.db, s.log)
}

// WithTx runs fn with repositories bound to a single SQL transaction.
// The transaction commits only when fn returns nil.
func (s *SQLStore) WithTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(newRepos(tx, s.log)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

func newRepos(db DBTX, log *zap.Logger) Repos {
	return Repos{
		Accounts:      &AccountRepo{db: db},
		Auth:          &AuthRepo{db: db},
		Users:         &UserRepo{db: db},
		Tasks:         &TaskRepo{db: db},
		Habits:        &HabitRepo{db: db},
		Focus:         &FocusRepo{db: db},
		Notifications: &NotificationRepo{db: db, log: log},
		Posts:         &PostRepo{db: db},
		Comments:      &CommentRepo{db: db},
	}
}
