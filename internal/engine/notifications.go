package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/events"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type NotificationInput struct {
	Title    string
	Message  string
	Type     NotificationType
	Metadata *storage.NotificationMetadata
}

// onProgress turns progression signals into achievement notifications.
// Write failures are logged and never reach the publisher.
func (s *Service) onProgress(ctx context.Context, e events.Event) {
	var in NotificationInput
	var userID string
	switch ev := e.(type) {
	case events.LevelUp:
		userID = ev.UserID
		in = NotificationInput{
			Title:    "🎉 Level Up!",
			Message:  fmt.Sprintf("Congratulations! You've reached Level %d! Keep up the amazing work!", ev.NewLevel),
			Type:     NotificationAchievement,
			Metadata: &storage.NotificationMetadata{AchievementType: "level", Level: ev.NewLevel},
		}
	case events.BadgeGained:
		if ev.OldBadge == "" || ev.OldBadge == ev.NewBadge {
			return
		}
		userID = ev.UserID
		in = NotificationInput{
			Title:    "🏆 New Badge Earned!",
			Message:  fmt.Sprintf("Congratulations! You've earned the %q badge! Your dedication is paying off!", ev.NewBadge),
			Type:     NotificationAchievement,
			Metadata: &storage.NotificationMetadata{AchievementType: "badge", BadgeName: ev.NewBadge, Level: ev.Level},
		}
	default:
		return
	}
	if _, err := s.AddNotification(ctx, userID, in); err != nil {
		s.log.Error("store achievement notification", zap.String("event", e.Name()), zap.Error(err))
	}
}

func (s *Service) AddNotification(ctx context.Context, userID string, in NotificationInput) (*storage.Notification, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !in.Type.IsValid() {
		in.Type = NotificationSystem
	}
	n := storage.Notification{
		ID:        s.ids.NewID(),
		UserID:    userID,
		Title:     title,
		Message:   strings.TrimSpace(in.Message),
		Type:      string(in.Type),
		Metadata:  in.Metadata,
		CreatedAt: s.now(),
	}
	if err := s.store.Repos().Notifications.Insert(ctx, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotifications returns the user's notifications newest first.
func (s *Service) ListNotifications(ctx context.Context, userID string) ([]storage.Notification, error) {
	return s.store.Repos().Notifications.ListByUser(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.Repos().Notifications.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.store.WithTx(ctx, func(r storage.Repos) error {
		if _, err := s.ownedNotification(ctx, r, userID, id); err != nil {
			return err
		}
		return r.Notifications.MarkRead(ctx, id)
	})
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.Repos().Notifications.MarkAllRead(ctx, userID)
}

func (s *Service) DeleteNotification(ctx context.Context, userID, id string) error {
	return s.store.WithTx(ctx, func(r storage.Repos) error {
		if _, err := s.ownedNotification(ctx, r, userID, id); err != nil {
			return err
		}
		return r.Notifications.Delete(ctx, id)
	})
}

func (s *Service) ClearNotifications(ctx context.Context, userID string) error {
	return s.store.Repos().Notifications.Clear(ctx, userID)
}

func (s *Service) ownedNotification(ctx context.Context, r storage.Repos, userID, id string) (*storage.Notification, error) {
	n, err := r.Notifications.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil || n.UserID != userID {
		return nil, ErrNotFound
	}
	return n, nil
}
