// Package events carries in-process progression and session signals.
package events

// Event is any value published on the Bus.
type Event interface {
	Name() string
}

// LevelUp fires when a points change raises the user's level.
type LevelUp struct {
	UserID   string
	OldLevel int
	NewLevel int
	NewBadge string
}

func (LevelUp) Name() string { return "user.level_up" }

// BadgeGained fires when the badge label changes and the user already had one.
type BadgeGained struct {
	UserID   string
	OldBadge string
	NewBadge string
	Level    int
}

func (BadgeGained) Name() string { return "user.badge_gained" }

type LoggedIn struct {
	UserID string
	Email  string
}

func (LoggedIn) Name() string { return "auth.logged_in" }

type LoggedOut struct {
	Email string
}

func (LoggedOut) Name() string { return "auth.logged_out" }

// PointsChanged fires whenever an activity awards or revokes points.
type PointsChanged struct {
	UserID string
	Delta  int
	Points int
}

func (PointsChanged) Name() string { return "user.points_changed" }
