package storage

import (
	"database/sql"
	"time"
)

// Account is a local credential record. PasswordHash serializes as "password"
// to keep the exported layout stable.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthState is the single local session.
type AuthState struct {
	Email           string `json:"email"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Initials       string    `json:"initials"`
	Avatar         string    `json:"avatar"`
	ProfilePhoto   *string   `json:"profilePhoto,omitempty"`
	Points         int       `json:"points"`
	Level          int       `json:"level"`
	Badge          string    `json:"badge"`
	Streak         int       `json:"streak"`
	LastActiveOn   string    `json:"lastActiveOn,omitempty"`
	TasksCompleted int       `json:"tasksCompleted"`
	FocusHours     float64   `json:"focusHours"`
	Rank           int       `json:"rank"`
	PreviousRank   int       `json:"previousRank"`
	WeeklyPoints   int       `json:"weeklyPoints"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Completed     bool       `json:"completed"`
	Priority      string     `json:"priority"`
	Category      string     `json:"category"`
	Points        int        `json:"points"`
	AwardedPoints int        `json:"awardedPoints"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

type Habit struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Streak          int       `json:"streak"`
	BestStreak      int       `json:"bestStreak"`
	LastCompletedOn string    `json:"lastCompletedOn,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// HabitCompletion logs one check-in together with the habit state it replaced.
type HabitCompletion struct {
	ID                  string    `json:"id"`
	HabitID             string    `json:"habitId"`
	CompletedOn         string    `json:"completedOn"`
	PointsAwarded       int       `json:"pointsAwarded"`
	StreakBefore        int       `json:"streakBefore"`
	BestStreakBefore    int       `json:"bestStreakBefore"`
	LastCompletedBefore string    `json:"lastCompletedBefore,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

type FocusSession struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Kind        string    `json:"kind"`
	Minutes     int       `json:"minutes"`
	Points      int       `json:"points"`
	CompletedAt time.Time `json:"completedAt"`
}

type NotificationMetadata struct {
	AchievementType string `json:"achievementType,omitempty"`
	BadgeName       string `json:"badgeName,omitempty"`
	Level           int    `json:"level,omitempty"`
}

type Notification struct {
	ID        string                `json:"id"`
	UserID    string                `json:"userId"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Type      string                `json:"type"`
	Read      bool                  `json:"read"`
	Metadata  *NotificationMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time             `json:"timestamp"`
}

// PostAuthor is the author as they were when the post was written.
type PostAuthor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Level    int    `json:"level"`
	Badge    string `json:"badge"`
}

type PostAchievement struct {
	Title  string `json:"title"`
	Points int    `json:"points"`
}

type Post struct {
	ID          string           `json:"id"`
	Author      PostAuthor       `json:"author"`
	Content     string           `json:"content"`
	Type        string           `json:"type"`
	MediaURL    string           `json:"mediaUrl,omitempty"`
	Achievement *PostAchievement `json:"achievement,omitempty"`
	Likes       int              `json:"likes"`
	Shares      int              `json:"shares"`
	CreatedAt   time.Time        `json:"createdAt"`
	LikedBy     []string         `json:"likedBy,omitempty"`
}

type Comment struct {
	ID             string    `json:"id"`
	PostID         string    `json:"postId"`
	AuthorID       string    `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	AuthorInitials string    `json:"authorInitials"`
	AuthorPhoto    *string   `json:"authorPhoto,omitempty"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Likes          int       `json:"likes"`
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}
