package engine

import (
	"context"
	"sort"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type LeaderboardEntry struct {
	Position     int    `json:"position"`
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Initials     string `json:"initials"`
	Level        int    `json:"level"`
	Badge        string `json:"badge"`
	Points       int    `json:"points"`
	WeeklyPoints int    `json:"weeklyPoints"`
	Trend        Trend  `json:"trend"`
}

type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendSame Trend = "same"
)

// RankTrend compares a rank with the previous one; a smaller number is better.
func RankTrend(rank, previous int) Trend {
	switch {
	case rank < previous:
		return TrendUp
	case rank > previous:
		return TrendDown
	default:
		return TrendSame
	}
}

// Leaderboard ranks every stored user by total or weekly points, ties broken by name.
func (s *Service) Leaderboard(ctx context.Context, period Period) ([]LeaderboardEntry, error) {
	users, err := s.store.Repos().Users.List(ctx)
	if err != nil {
		return nil, err
	}
	score := func(u storage.User) int { return u.Points }
	if period == PeriodWeekly {
		score = func(u storage.User) int { return u.WeeklyPoints }
	}
	sortUsers(users, score)

	out := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		out[i] = LeaderboardEntry{
			Position:     i + 1,
			UserID:       u.ID,
			Name:         u.Name,
			Initials:     u.Initials,
			Level:        u.Level,
			Badge:        u.Badge,
			Points:       u.Points,
			WeeklyPoints: u.WeeklyPoints,
			Trend:        RankTrend(u.Rank, u.PreviousRank),
		}
	}
	return out, nil
}

// RefreshRanks moves every user's rank into previousRank and assigns the
// current position by total points.
func (s *Service) RefreshRanks(ctx context.Context) error {
	return s.store.WithTx(ctx, func(r storage.Repos) error {
		users, err := r.Users.List(ctx)
		if err != nil {
			return err
		}
		sortUsers(users, func(u storage.User) int { return u.Points })
		for i, u := range users {
			if err := r.Users.UpdateRanks(ctx, u.ID, i+1, u.Rank); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) ResetWeeklyPoints(ctx context.Context) error {
	return s.store.Repos().Users.ResetWeeklyPoints(ctx)
}

func sortUsers(users []storage.User, score func(storage.User) int) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := score(users[i]), score(users[j])
		if a != b {
			return a > b
		}
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
}
