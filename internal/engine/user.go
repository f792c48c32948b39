package engine

import (
	"context"
	"strings"
	"time"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/events"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

// UserUpdate is a partial update. Nil fields are left unchanged.
// An empty ProfilePhoto removes the photo.
type UserUpdate struct {
	Name           *string
	Email          *string
	Initials       *string
	Avatar         *string
	ProfilePhoto   *string
	Points         *int
	Streak         *int
	LastActiveOn   *string
	TasksCompleted *int
	FocusHours     *float64
	Rank           *int
	PreviousRank   *int
	WeeklyPoints   *int
}

// UpdateResult carries the merged user and the progression signals the update raised.
type UpdateResult struct {
	User storage.User
	// PointsDelta is the change actually applied to the stored total.
	PointsDelta int
	LevelUp     *events.LevelUp
	BadgeGained *events.BadgeGained
}

func (r *UpdateResult) signals() []events.Event {
	var out []events.Event
	if r.LevelUp != nil {
		out = append(out, *r.LevelUp)
	}
	if r.BadgeGained != nil {
		out = append(out, *r.BadgeGained)
	}
	return out
}

// ApplyUpdate merges upd into u. When Points is set, level and badge are
// recomputed from the new total; with monotonic set they never drop below
// their previous values.
func ApplyUpdate(u storage.User, upd UserUpdate, monotonic bool, now time.Time) (*UpdateResult, error) {
	if err := checkCounters(upd); err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Reason: "is required"}
		}
		u.Name = name
		if upd.Initials == nil {
			u.Initials = Initials(name)
		}
	}
	if upd.Email != nil {
		u.Email = normalizeEmail(*upd.Email)
	}
	if upd.Initials != nil {
		u.Initials = strings.ToUpper(strings.TrimSpace(*upd.Initials))
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.ProfilePhoto != nil {
		if *upd.ProfilePhoto == "" {
			u.ProfilePhoto = nil
		} else {
			photo := *upd.ProfilePhoto
			u.ProfilePhoto = &photo
		}
	}
	if upd.Streak != nil {
		u.Streak = *upd.Streak
	}
	if upd.LastActiveOn != nil {
		u.LastActiveOn = *upd.LastActiveOn
	}
	if upd.TasksCompleted != nil {
		u.TasksCompleted = *upd.TasksCompleted
	}
	if upd.FocusHours != nil {
		u.FocusHours = *upd.FocusHours
	}
	if upd.Rank != nil {
		u.Rank = *upd.Rank
	}
	if upd.PreviousRank != nil {
		u.PreviousRank = *upd.PreviousRank
	}
	if upd.WeeklyPoints != nil {
		u.WeeklyPoints = *upd.WeeklyPoints
	}

	res := &UpdateResult{}
	if upd.Points != nil {
		oldLevel, oldBadge := u.Level, u.Badge
		res.PointsDelta = *upd.Points - u.Points
		u.Points = *upd.Points

		newLevel := CalculateLevel(u.Points)
		if monotonic && newLevel < oldLevel {
			newLevel = oldLevel
		}
		newBadge := BadgeForLevel(newLevel)
		u.Level, u.Badge = newLevel, newBadge

		if newLevel > oldLevel {
			res.LevelUp = &events.LevelUp{UserID: u.ID, OldLevel: oldLevel, NewLevel: newLevel, NewBadge: newBadge}
		}
		if oldBadge != "" && oldBadge != newBadge {
			res.BadgeGained = &events.BadgeGained{UserID: u.ID, OldBadge: oldBadge, NewBadge: newBadge, Level: newLevel}
		}
	}

	u.UpdatedAt = now
	res.User = u
	return res, nil
}

func checkCounters(upd UserUpdate) error {
	ints := []struct {
		field string
		v     *int
	}{
		{"points", upd.Points},
		{"streak", upd.Streak},
		{"tasksCompleted", upd.TasksCompleted},
		{"weeklyPoints", upd.WeeklyPoints},
		{"rank", upd.Rank},
		{"previousRank", upd.PreviousRank},
	}
	for _, c := range ints {
		if c.v != nil && *c.v < 0 {
			return &ValidationError{Field: c.field, Reason: "must not be negative"}
		}
	}
	if upd.FocusHours != nil && *upd.FocusHours < 0 {
		return &ValidationError{Field: "focusHours", Reason: "must not be negative"}
	}
	return nil
}

// UpdateUser applies a partial update and publishes any progression signals after commit.
func (s *Service) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (*UpdateResult, error) {
	var res *UpdateResult
	err := s.update(ctx, func(r storage.Repos, out *outbox) error {
		var err error
		res, err = s.applyUserUpdate(ctx, r, userID, upd, out)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) applyUserUpdate(ctx context.Context, r storage.Repos, userID string, upd UserUpdate, out *outbox) (*UpdateResult, error) {
	u, err := s.getUser(ctx, r, userID)
	if err != nil {
		return nil, err
	}
	res, err := ApplyUpdate(*u, upd, s.monotonic, s.now())
	if err != nil {
		return nil, err
	}
	if err := r.Users.Update(ctx, res.User); err != nil {
		return nil, err
	}
	out.add(res.signals()...)
	return res, nil
}

// activity is a points-bearing change to the user's counters. Negative values revoke.
type activity struct {
	points         int
	tasksCompleted int
	focusHours     float64
	// touchStreak marks the day as active; only applied when points > 0.
	touchStreak bool
}

// award applies a to the user, clamping every counter at zero.
func (s *Service) award(ctx context.Context, r storage.Repos, userID string, a activity, out *outbox) (*UpdateResult, error) {
	u, err := s.getUser(ctx, r, userID)
	if err != nil {
		return nil, err
	}

	points := clampZero(u.Points + a.points)
	weekly := clampZero(u.WeeklyPoints + a.points)
	done := clampZero(u.TasksCompleted + a.tasksCompleted)
	hours := u.FocusHours + a.focusHours
	if hours < 0 {
		hours = 0
	}
	upd := UserUpdate{
		Points:         &points,
		WeeklyPoints:   &weekly,
		TasksCompleted: &done,
		FocusHours:     &hours,
	}
	if a.touchStreak && a.points > 0 {
		streak, day := nextStreak(u.Streak, u.LastActiveOn, s.today())
		upd.Streak = &streak
		upd.LastActiveOn = &day
	}
	res, err := s.applyUserUpdate(ctx, r, userID, upd, out)
	if err != nil {
		return nil, err
	}
	if res.PointsDelta != 0 {
		out.add(events.PointsChanged{UserID: userID, Delta: res.PointsDelta, Points: points})
	}
	return res, nil
}

// nextStreak advances the activity streak for activity on today.
func nextStreak(streak int, lastActive, today string) (int, string) {
	switch lastActive {
	case today:
		if streak < 1 {
			streak = 1
		}
		return streak, today
	case previousDay(today):
		return streak + 1, today
	default:
		return 1, today
	}
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
