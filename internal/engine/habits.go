package engine

import (
	"context"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type HabitInput struct {
	Title    string
	Category Category
}

// HabitResult reports a check-in (or its undo) and its effect on the user.
type HabitResult struct {
	Habit       storage.Habit
	PointsDelta int
	Update      *UpdateResult
}

// effectiveStreak is the stored streak while it is still alive: the habit was
// completed today or yesterday. Otherwise the streak has lapsed to 0.
func effectiveStreak(h storage.Habit, today string) int {
	if h.LastCompletedOn == today || h.LastCompletedOn == previousDay(today) {
		return h.Streak
	}
	return 0
}

func (s *Service) CreateHabit(ctx context.Context, userID string, in HabitInput) (*storage.Habit, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	h := storage.Habit{
		ID:        s.ids.NewID(),
		UserID:    userID,
		Title:     title,
		Category:  string(ParseCategory(string(in.Category))),
		CreatedAt: s.now(),
	}
	err = s.update(ctx, func(r storage.Repos, out *outbox) error {
		if _, err := s.getUser(ctx, r, userID); err != nil {
			return err
		}
		return r.Habits.Insert(ctx, h)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHabits returns the user's habits with lapsed streaks shown as 0.
func (s *Service) ListHabits(ctx context.Context, userID string) ([]storage.Habit, error) {
	hs, err := s.store.Repos().Habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	for i := range hs {
		hs[i].Streak = effectiveStreak(hs[i], today)
	}
	return hs, nil
}

// CompletedToday reports whether the habit already has today's check-in.
func (s *Service) CompletedToday(h storage.Habit) bool {
	return h.LastCompletedOn == s.today()
}

// CompleteHabit records today's check-in. Points follow the streak held before it.
func (s *Service) CompleteHabit(ctx context.Context, userID, habitID string) (*HabitResult, error) {
	var res HabitResult
	err := s.update(ctx, func(r storage.Repos, out *outbox) error {
		h, err := s.ownedHabit(ctx, r, userID, habitID)
		if err != nil {
			return err
		}
		today := s.today()
		if h.LastCompletedOn == today {
			return ErrAlreadyCompleted
		}

		before := effectiveStreak(*h, today)
		points := HabitPoints(before)
		c := storage.HabitCompletion{
			ID:                  s.ids.NewID(),
			HabitID:             h.ID,
			CompletedOn:         today,
			PointsAwarded:       points,
			StreakBefore:        h.Streak,
			BestStreakBefore:    h.BestStreak,
			LastCompletedBefore: h.LastCompletedOn,
			CreatedAt:           s.now(),
		}

		h.Streak = before + 1
		if h.Streak > h.BestStreak {
			h.BestStreak = h.Streak
		}
		h.LastCompletedOn = today
		if err := r.Habits.Update(ctx, *h); err != nil {
			return err
		}
		if err := r.Habits.InsertCompletion(ctx, c); err != nil {
			return err
		}
		upd, err := s.award(ctx, r, userID, activity{points: points, touchStreak: true}, out)
		if err != nil {
			return err
		}
		res = HabitResult{Habit: *h, PointsDelta: upd.PointsDelta, Update: upd}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UndoHabit reverts today's check-in exactly, restoring the prior streak and revoking its points.
func (s *Service) UndoHabit(ctx context.Context, userID, habitID string) (*HabitResult, error) {
	var res HabitResult
	err := s.update(ctx, func(r storage.Repos, out *outbox) error {
		h, err := s.ownedHabit(ctx, r, userID, habitID)
		if err != nil {
			return err
		}
		today := s.today()
		if h.LastCompletedOn != today {
			return ErrNothingToUndo
		}
		c, err := r.Habits.LastCompletion(ctx, h.ID)
		if err != nil {
			return err
		}
		if c == nil || c.CompletedOn != today {
			return ErrNothingToUndo
		}

		h.Streak = c.StreakBefore
		h.BestStreak = c.BestStreakBefore
		h.LastCompletedOn = c.LastCompletedBefore
		if err := r.Habits.Update(ctx, *h); err != nil {
			return err
		}
		if err := r.Habits.DeleteCompletion(ctx, c.ID); err != nil {
			return err
		}
		upd, err := s.award(ctx, r, userID, activity{points: -c.PointsAwarded}, out)
		if err != nil {
			return err
		}
		res = HabitResult{Habit: *h, PointsDelta: upd.PointsDelta, Update: upd}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteHabit removes a habit and its log. Points already earned are kept.
func (s *Service) DeleteHabit(ctx context.Context, userID, habitID string) error {
	return s.update(ctx, func(r storage.Repos, out *outbox) error {
		h, err := s.ownedHabit(ctx, r, userID, habitID)
		if err != nil {
			return err
		}
		return r.Habits.Delete(ctx, h.ID)
	})
}

func (s *Service) ownedHabit(ctx context.Context, r storage.Repos, userID, habitID string) (*storage.Habit, error) {
	h, err := r.Habits.Get(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if h == nil || h.UserID != userID {
		return nil, ErrNotFound
	}
	return h, nil
}
