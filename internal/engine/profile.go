package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type Profile struct {
	User          storage.User           `json:"user"`
	NextLevelIn   int                    `json:"pointsToNextLevel"`
	LevelProgress int                    `json:"levelProgress"`
	Trend         Trend                  `json:"rankTrend"`
	Tasks         TaskStats              `json:"tasks"`
	Habits        []storage.Habit        `json:"habits"`
	FocusSessions []storage.FocusSession `json:"focusSessions"`
	UnreadCount   int                    `json:"unreadNotifications"`
	Achievements  []Achievement          `json:"achievements"`
	EarnedCount   int                    `json:"achievementsEarned"`
}

// Profile loads the user's summary, fanning the independent reads out concurrently.
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	var (
		user     *storage.User
		tasks    []storage.Task
		habits   []storage.Habit
		sessions []storage.FocusSession
		unread   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.GetUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.store.Repos().Tasks.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		habits, err = s.ListHabits(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.ListFocusSessions(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = s.UnreadCount(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	checker := NewAchievementChecker(*user, tasks, habits)
	return &Profile{
		User:          *user,
		NextLevelIn:   PointsToNextLevel(user.Points),
		LevelProgress: LevelProgress(user.Points),
		Trend:         RankTrend(user.Rank, user.PreviousRank),
		Tasks:         statsOf(tasks),
		Habits:        habits,
		FocusSessions: sessions,
		UnreadCount:   unread,
		Achievements:  checker.GetAchievements(),
		EarnedCount:   checker.CountEarned(),
	}, nil
}
