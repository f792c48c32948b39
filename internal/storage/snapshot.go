package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Snapshot keys. Per-entity keys take the owning id as suffix.
const (
	KeyAuth          = "app_auth"
	KeyAccounts      = "app_users"
	KeyNotifications = "app_notifications"
	KeyPosts         = "app_posts"

	prefixUser     = "app_user_"
	prefixTasks    = "app_tasks_"
	prefixHabits   = "app_habits_"
	prefixHabitLog = "app_habit_log_"
	prefixFocus    = "app_focus_"
	prefixComments = "app_comments_"
)

// ErrStoreNotEmpty is returned by Import when the target already holds accounts.
var ErrStoreNotEmpty = errors.New("import target is not empty")

// Snapshot is the exported key/value layout.
type Snapshot map[string]json.RawMessage

func (s Snapshot) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	s[key] = data
	return nil
}

// Keys returns the snapshot keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export reads every collection into the snapshot layout.
func Export(ctx context.Context, r Repos) (Snapshot, error) {
	snap := Snapshot{}

	auth, err := r.Auth.Get(ctx)
	if err != nil {
		return nil, err
	}
	if auth != nil {
		if err := snap.put(KeyAuth, auth); err != nil {
			return nil, err
		}
	}

	accounts, err := r.Accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := snap.put(KeyAccounts, nonNil(accounts)); err != nil {
		return nil, err
	}

	users, err := r.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := snap.put(prefixUser+u.ID, u); err != nil {
			return nil, err
		}
		tasks, err := r.Tasks.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if err := snap.put(prefixTasks+u.ID, nonNil(tasks)); err != nil {
			return nil, err
		}
		habits, err := r.Habits.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if err := snap.put(prefixHabits+u.ID, nonNil(habits)); err != nil {
			return nil, err
		}
		log, err := r.Habits.ListCompletionsByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if err := snap.put(prefixHabitLog+u.ID, nonNil(log)); err != nil {
			return nil, err
		}
		sessions, err := r.Focus.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if err := snap.put(prefixFocus+u.ID, nonNil(sessions)); err != nil {
			return nil, err
		}
	}

	notifications, err := r.Notifications.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := snap.put(KeyNotifications, nonNil(notifications)); err != nil {
		return nil, err
	}

	posts, err := r.Posts.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := snap.put(KeyPosts, nonNil(posts)); err != nil {
		return nil, err
	}
	for _, p := range posts {
		comments, err := r.Comments.ListByPost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if len(comments) == 0 {
			continue
		}
		if err := snap.put(prefixComments+p.ID, comments); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// Import loads a snapshot into an empty store inside one transaction.
func Import(ctx context.Context, store Store, snap Snapshot) error {
	return store.WithTx(ctx, func(r Repos) error {
		existing, err := r.Accounts.List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrStoreNotEmpty
		}

		var accounts []Account
		if err := decode(snap, KeyAccounts, &accounts); err != nil {
			return err
		}
		for _, a := range accounts {
			if err := r.Accounts.Insert(ctx, a); err != nil {
				return err
			}
		}

		if _, ok := snap[KeyAuth]; ok {
			var st AuthState
			if err := decode(snap, KeyAuth, &st); err != nil {
				return err
			}
			if err := r.Auth.Set(ctx, st); err != nil {
				return err
			}
		}

		// Users first: every other per-user key references them.
		var userIDs []string
		for _, key := range snap.Keys() {
			if !strings.HasPrefix(key, prefixUser) {
				continue
			}
			var u User
			if err := decode(snap, key, &u); err != nil {
				return err
			}
			if err := r.Users.Insert(ctx, u); err != nil {
				return err
			}
			userIDs = append(userIDs, u.ID)
		}

		for _, uid := range userIDs {
			var tasks []Task
			if err := decode(snap, prefixTasks+uid, &tasks); err != nil {
				return err
			}
			for _, t := range tasks {
				if err := r.Tasks.Insert(ctx, t); err != nil {
					return err
				}
			}
			var habits []Habit
			if err := decode(snap, prefixHabits+uid, &habits); err != nil {
				return err
			}
			for _, h := range habits {
				if err := r.Habits.Insert(ctx, h); err != nil {
					return err
				}
			}
			var log []HabitCompletion
			if err := decode(snap, prefixHabitLog+uid, &log); err != nil {
				return err
			}
			for _, c := range log {
				if err := r.Habits.InsertCompletion(ctx, c); err != nil {
					return err
				}
			}
			var sessions []FocusSession
			if err := decode(snap, prefixFocus+uid, &sessions); err != nil {
				return err
			}
			for _, s := range sessions {
				if err := r.Focus.Insert(ctx, s); err != nil {
					return err
				}
			}
		}

		var notifications []Notification
		if err := decode(snap, KeyNotifications, &notifications); err != nil {
			return err
		}
		for _, n := range notifications {
			if err := r.Notifications.Insert(ctx, n); err != nil {
				return err
			}
		}

		var posts []Post
		if err := decode(snap, KeyPosts, &posts); err != nil {
			return err
		}
		for _, p := range posts {
			if err := r.Posts.Insert(ctx, p); err != nil {
				return err
			}
			var comments []Comment
			if err := decode(snap, prefixComments+p.ID, &comments); err != nil {
				return err
			}
			for _, c := range comments {
				if err := r.Comments.Insert(ctx, c); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// decode leaves v untouched when key is absent.
func decode(snap Snapshot, key string, v any) error {
	raw, ok := snap[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
