package engine

import (
	"context"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type FocusResult struct {
	Session storage.FocusSession
	Update  *UpdateResult
}

// CompleteFocusSession logs a finished timer and awards its points and focus time.
func (s *Service) CompleteFocusSession(ctx context.Context, userID string, kind FocusKind) (*FocusResult, error) {
	points, minutes, err := FocusPoints(kind)
	if err != nil {
		return nil, err
	}
	fs := storage.FocusSession{
		ID:          s.ids.NewID(),
		UserID:      userID,
		Kind:        string(kind),
		Minutes:     minutes,
		Points:      points,
		CompletedAt: s.now(),
	}

	var res FocusResult
	err = s.update(ctx, func(r storage.Repos, out *outbox) error {
		if _, err := s.getUser(ctx, r, userID); err != nil {
			return err
		}
		if err := r.Focus.Insert(ctx, fs); err != nil {
			return err
		}
		upd, err := s.award(ctx, r, userID, activity{
			points:      points,
			focusHours:  float64(minutes) / 60,
			touchStreak: true,
		}, out)
		if err != nil {
			return err
		}
		res = FocusResult{Session: fs, Update: upd}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListFocusSessions returns the user's sessions newest first.
func (s *Service) ListFocusSessions(ctx context.Context, userID string) ([]storage.FocusSession, error) {
	return s.store.Repos().Focus.ListByUser(ctx, userID)
}
