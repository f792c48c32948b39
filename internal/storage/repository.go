package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get methods return (nil, nil) when the row does not exist.

type AccountRepository interface {
	Insert(ctx context.Context, a Account) error
	Get(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
}

type AuthRepository interface {
	Get(ctx context.Context) (*AuthState, error)
	Set(ctx context.Context, st AuthState) error
	Clear(ctx context.Context) error
}

type UserRepository interface {
	Insert(ctx context.Context, u User) error
	Get(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, u User) error
	// List orders by points descending, then name.
	List(ctx context.Context) ([]User, error)
	UpdateRanks(ctx context.Context, id string, rank, previousRank int) error
	ResetWeeklyPoints(ctx context.Context) error
}

type TaskRepository interface {
	Insert(ctx context.Context, t Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, t Task) error
	Delete(ctx context.Context, id string) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]Task, error)
}

type HabitRepository interface {
	Insert(ctx context.Context, h Habit) error
	Get(ctx context.Context, id string) (*Habit, error)
	Update(ctx context.Context, h Habit) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]Habit, error)

	InsertCompletion(ctx context.Context, c HabitCompletion) error
	LastCompletion(ctx context.Context, habitID string) (*HabitCompletion, error)
	DeleteCompletion(ctx context.Context, id string) error
	ListCompletionsByUser(ctx context.Context, userID string) ([]HabitCompletion, error)
}

type FocusRepository interface {
	Insert(ctx context.Context, s FocusSession) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]FocusSession, error)
}

type NotificationRepository interface {
	Insert(ctx context.Context, n Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	ListAll(ctx context.Context) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context, userID string) error
}

type PostRepository interface {
	Insert(ctx context.Context, p Post) error
	Get(ctx context.Context, id string) (*Post, error)
	// List returns newest first with LikedBy populated.
	List(ctx context.Context) ([]Post, error)
	HasLike(ctx context.Context, postID, userID string) (bool, error)
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
}

type CommentRepository interface {
	Insert(ctx context.Context, c Comment) error
	Get(ctx context.Context, postID, id string) (*Comment, error)
	// ListByPost returns oldest first.
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	UpdateLikes(ctx context.Context, postID, id string, likes int) error
	CountByPost(ctx context.Context) (map[string]int, error)
}

// Repos groups every repository bound to the same connection or transaction.
type Repos struct {
	Accounts      AccountRepository
	Auth          AuthRepository
	Users         UserRepository
	Tasks         TaskRepository
	Habits        HabitRepository
	Focus         FocusRepository
	Notifications NotificationRepository
	Posts         PostRepository
	Comments      CommentRepository
}

// Store is the unit of work the engine runs against.
type Store interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(r Repos) error) error
}
