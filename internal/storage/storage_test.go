package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	s := NewSQLStore(db, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, r Repos, id string, points int) User {
	t.Helper()
	now := time.UnixMilli(1_700_000_000_000).UTC()
	u := User{
		ID: id, Name: "User " + id, Email: id + "@example.com", Initials: "U" + id[:1],
		Avatar: "gradient-primary", Points: points, Level: points/100 + 1, Badge: "Newcomer",
		Rank: 999, PreviousRank: 999, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, r.Users.Insert(context.Background(), u))
	return u
}

// Times round-trip through epoch millis.
var millisEqual = cmp.Comparer(func(a, b time.Time) bool { return a.UnixMilli() == b.UnixMilli() })

func TestDSNBeginsTransactionsImmediate(t *testing.T) {
	d := dsn("/tmp/x.db")
	require.Contains(t, d, "_txlock=immediate")
	require.Contains(t, d, "busy_timeout")
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, Migrate(context.Background(), s.DB()))
	require.NoError(t, Migrate(context.Background(), s.DB()))
}

func TestTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := s.Repos()
	seedUser(t, r, "u1", 0)

	due := time.Date(2026, 3, 4, 10, 30, 15, 123_000_000, time.UTC)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := Task{
		ID: "t1", UserID: "u1", Title: "Write report", Description: "Q1",
		Priority: "high", Category: "Work", Points: 50, DueDate: &due, CreatedAt: created,
	}
	require.NoError(t, r.Tasks.Insert(ctx, in))

	got, err := r.Tasks.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(in, *got, millisEqual); diff != "" {
		t.Fatalf("task mismatch (-want +got):\n%s", diff)
	}

	missing, err := r.Tasks.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestTaskListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := s.Repos()
	seedUser(t, r, "u1", 0)

	base := time.UnixMilli(1_700_000_000_000).UTC()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.Tasks.Insert(ctx, Task{
			ID: id, UserID: "u1", Title: id, Priority: "low", Category: "Personal", Points: 10,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	tasks, err := r.Tasks.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	require.Equal(t, []string{"c", "b", "a"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedUser(t, s.Repos(), "u1", 90)

	boom := errTest("boom")
	err := s.WithTx(ctx, func(r Repos) error {
		u, err := r.Users.Get(ctx, "u1")
		if err != nil {
			return err
		}
		u.Points = 140
		if err := r.Users.Update(ctx, *u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	u, err := s.Repos().Users.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 90, u.Points)
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestNotificationBadMetadataIsDropped(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.DB().ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, read, metadata, created_at)
		VALUES ('n1', 'u1', 't', 'm', 'system', 0, '{not json', 1)
	`)
	require.NoError(t, err)

	list, err := s.Repos().Notifications.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Nil(t, list[0].Metadata)
}

func TestNotificationReadFlags(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := s.Repos()
	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, r.Notifications.Insert(ctx, Notification{
			ID: id, UserID: "u1", Title: id, Message: id, Type: "system",
			Metadata:  &NotificationMetadata{AchievementType: "level", Level: i + 2},
			CreatedAt: time.UnixMilli(int64(1000 + i)).UTC(),
		}))
	}
	n, err := r.Notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, r.Notifications.MarkRead(ctx, "n2"))
	n, err = r.Notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, r.Notifications.MarkAllRead(ctx, "u1"))
	n, err = r.Notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)

	list, err := r.Notifications.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "n3", list[0].ID)
	require.Equal(t, 4, list[0].Metadata.Level)

	require.NoError(t, r.Notifications.Clear(ctx, "u1"))
	list, err = r.Notifications.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPostLikesAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := s.Repos()
	require.NoError(t, r.Posts.Insert(ctx, Post{
		ID: "p1", Author: PostAuthor{ID: "u1", Name: "Ann", Initials: "A", Level: 1, Badge: "Newcomer"},
		Content: "hi", Type: "tip", CreatedAt: time.UnixMilli(1).UTC(),
	}))

	require.NoError(t, r.Posts.AddLike(ctx, "p1", "u2"))
	require.NoError(t, r.Posts.AddLike(ctx, "p1", "u2"))
	p, err := r.Posts.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, p.Likes)
	require.Equal(t, []string{"u2"}, p.LikedBy)

	require.NoError(t, r.Posts.RemoveLike(ctx, "p1", "u2"))
	require.NoError(t, r.Posts.RemoveLike(ctx, "p1", "u2"))
	p, err = r.Posts.Get(ctx, "p1")
	require.NoError(t, err)
	require.Zero(t, p.Likes)
	require.Empty(t, p.LikedBy)
}
