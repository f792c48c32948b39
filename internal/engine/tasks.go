package engine

import (
	"context"
	"strings"
	"time"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	Category    Category
	DueDate     *time.Time
}

// TaskEdit is a partial task update. ClearDueDate removes the due date.
type TaskEdit struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Category     *Category
	DueDate      *time.Time
	ClearDueDate bool
}

type TaskFilter struct {
	Category Category
	// Query matches title or description, case-insensitively.
	Query string
	// Completed restricts to completed (true) or open (false) tasks.
	Completed *bool
}

type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
	Points    int `json:"points"` // earned by completed tasks
}

// ToggleResult reports a completion flip and its effect on the user.
type ToggleResult struct {
	Task        storage.Task
	PointsDelta int
	Update      *UpdateResult
}

func (s *Service) CreateTask(ctx context.Context, userID string, in TaskInput) (*storage.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if !in.Priority.IsValid() {
		in.Priority = PriorityMedium
	}
	if in.Category == "" {
		in.Category = CategoryPersonal
	}

	t := storage.Task{
		ID:          s.ids.NewID(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    string(in.Priority),
		Category:    string(ParseCategory(string(in.Category))),
		Points:      TaskPoints(in.Priority),
		DueDate:     in.DueDate,
		CreatedAt:   s.now(),
	}
	err = s.update(ctx, func(r storage.Repos, out *outbox) error {
		if _, err := s.getUser(ctx, r, userID); err != nil {
			return err
		}
		return r.Tasks.Insert(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EditTask updates task fields. A priority change re-derives the points snapshot;
// the amount awarded at completion is kept for revocation.
func (s *Service) EditTask(ctx context.Context, userID, taskID string, edit TaskEdit) (*storage.Task, error) {
	var t *storage.Task
	err := s.update(ctx, func(r storage.Repos, out *outbox) error {
		var err error
		t, err = s.ownedTask(ctx, r, userID, taskID)
		if err != nil {
			return err
		}
		if edit.Title != nil {
			title, err := normalizeTitle(*edit.Title)
			if err != nil {
				return err
			}
			t.Title = title
		}
		if edit.Description != nil {
			t.Description = strings.TrimSpace(*edit.Description)
		}
		if edit.Priority != nil {
			p := *edit.Priority
			if !p.IsValid() {
				p = PriorityMedium
			}
			t.Priority = string(p)
			t.Points = TaskPoints(p)
		}
		if edit.Category != nil {
			t.Category = string(ParseCategory(string(*edit.Category)))
		}
		if edit.ClearDueDate {
			t.DueDate = nil
		} else if edit.DueDate != nil {
			t.DueDate = edit.DueDate
		}
		return r.Tasks.Update(ctx, *t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ToggleTask flips completion and awards or revokes the task's points in the same transaction.
func (s *Service) ToggleTask(ctx context.Context, userID, taskID string) (*ToggleResult, error) {
	var res ToggleResult
	err := s.update(ctx, func(r storage.Repos, out *outbox) error {
		t, err := s.ownedTask(ctx, r, userID, taskID)
		if err != nil {
			return err
		}

		var a activity
		if !t.Completed {
			now := s.now()
			t.Completed = true
			t.CompletedAt = &now
			t.AwardedPoints = t.Points
			a = activity{points: t.Points, tasksCompleted: 1, touchStreak: true}
		} else {
			revoke := awardedFor(t)
			t.Completed = false
			t.CompletedAt = nil
			t.AwardedPoints = 0
			a = activity{points: -revoke, tasksCompleted: -1}
		}
		if err := r.Tasks.Update(ctx, *t); err != nil {
			return err
		}
		upd, err := s.award(ctx, r, userID, a, out)
		if err != nil {
			return err
		}
		res = ToggleResult{Task: *t, PointsDelta: upd.PointsDelta, Update: upd}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteTask removes a task, revoking its points if it was completed.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) (*UpdateResult, error) {
	var res *UpdateResult
	err := s.update(ctx, func(r storage.Repos, out *outbox) error {
		t, err := s.ownedTask(ctx, r, userID, taskID)
		if err != nil {
			return err
		}
		if err := r.Tasks.Delete(ctx, t.ID); err != nil {
			return err
		}
		if !t.Completed {
			return nil
		}
		res, err = s.award(ctx, r, userID, activity{points: -awardedFor(t), tasksCompleted: -1}, out)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListTasks returns the user's tasks newest first.
func (s *Service) ListTasks(ctx context.Context, userID string, f TaskFilter) ([]storage.Task, error) {
	all, err := s.store.Repos().Tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]storage.Task, 0, len(all))
	for _, t := range all {
		if f.Category != "" && !strings.EqualFold(t.Category, string(f.Category)) {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Service) TaskStats(ctx context.Context, userID string) (TaskStats, error) {
	all, err := s.store.Repos().Tasks.ListByUser(ctx, userID)
	if err != nil {
		return TaskStats{}, err
	}
	return statsOf(all), nil
}

func statsOf(tasks []storage.Task) TaskStats {
	st := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			st.Completed++
			st.Points += awardedFor(&t)
		}
	}
	st.Active = st.Total - st.Completed
	return st
}

func (s *Service) ownedTask(ctx context.Context, r storage.Repos, userID, taskID string) (*storage.Task, error) {
	t, err := r.Tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.UserID != userID {
		return nil, ErrNotFound
	}
	return t, nil
}

// awardedFor is the amount a completed task granted. Rows written before
// awarded_points existed fall back to the points snapshot.
func awardedFor(t *storage.Task) int {
	if t.AwardedPoints > 0 {
		return t.AwardedPoints
	}
	return t.Points
}
