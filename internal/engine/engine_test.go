package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/events"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

type testEnv struct {
	svc   *Service
	store *storage.SQLStore
	clock *fakeClock
	ids   *seqIDs
}

func newTestService(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := storage.NewSQLStore(db, nil)
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{
		store: store,
		clock: &fakeClock{t: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)},
		ids:   &seqIDs{},
	}
	o := Options{Clock: env.clock, IDs: env.ids, Location: time.UTC}
	for _, fn := range opts {
		fn(&o)
	}
	env.svc = NewService(store, o)
	return env
}

func signup(t *testing.T, svc *Service, name, email string) *storage.User {
	t.Helper()
	u, err := svc.Signup(context.Background(), SignupInput{Name: name, Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	return u
}

func setPoints(t *testing.T, svc *Service, userID string, points int) {
	t.Helper()
	if _, err := svc.UpdateUser(context.Background(), userID, UserUpdate{Points: &points}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
}

func mustUser(t *testing.T, svc *Service, userID string) *storage.User {
	t.Helper()
	u, err := svc.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	return u
}

func TestLevelBoundaries(t *testing.T) {
	cases := map[int]int{-5: 1, 0: 1, 99: 1, 100: 2, 199: 2, 200: 3, 4999: 50, 5000: 51}
	for points, want := range cases {
		if got := CalculateLevel(points); got != want {
			t.Fatalf("CalculateLevel(%d)=%d, want %d", points, got, want)
		}
	}
	for n := 0; n < 10_000; n += 37 {
		if got := CalculateLevel(n); got != n/100+1 {
			t.Fatalf("CalculateLevel(%d)=%d, want %d", n, got, n/100+1)
		}
	}
	if got := PointsToNextLevel(140); got != 60 {
		t.Fatalf("PointsToNextLevel(140)=%d, want 60", got)
	}
	if got := LevelProgress(140); got != 40 {
		t.Fatalf("LevelProgress(140)=%d, want 40", got)
	}
}

func TestBadgeForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  string
	}{
		{1, "Newcomer"}, {2, "Beginner"}, {4, "Beginner"}, {5, "Rising Star"}, {10, "Intermediate"},
		{15, "Advanced"}, {20, "Pro"}, {30, "Expert"}, {40, "Master"}, {49, "Master"}, {50, "Legend"}, {500, "Legend"},
	}
	for _, c := range cases {
		if got := BadgeForLevel(c.level); got != c.want {
			t.Fatalf("BadgeForLevel(%d)=%q, want %q", c.level, got, c.want)
		}
	}

	prev := BadgeRank(BadgeForLevel(0))
	for level := 1; level <= 60; level++ {
		r := BadgeRank(BadgeForLevel(level))
		if r < prev {
			t.Fatalf("badge prestige dropped at level %d", level)
		}
		prev = r
	}
}

func TestPointTables(t *testing.T) {
	if TaskPoints(PriorityLow) != 10 || TaskPoints(PriorityMedium) != 25 || TaskPoints(PriorityHigh) != 50 {
		t.Fatalf("unexpected task points table")
	}
	if got := TaskPoints(Priority("urgent")); got != 25 {
		t.Fatalf("TaskPoints(unknown)=%d, want 25", got)
	}
	if got := ParsePriority("  HIGH "); got != PriorityHigh {
		t.Fatalf("ParsePriority=%q, want high", got)
	}
	if got := ParsePriority("whatever"); got != PriorityMedium {
		t.Fatalf("ParsePriority(unknown)=%q, want medium", got)
	}

	habit := map[int]int{-1: 20, 0: 20, 1: 25, 9: 65, 10: 70, 100: 70}
	for streak, want := range habit {
		if got := HabitPoints(streak); got != want {
			t.Fatalf("HabitPoints(%d)=%d, want %d", streak, got, want)
		}
	}

	for kind, want := range map[FocusKind][2]int{FocusShort: {15, 5}, FocusWork: {50, 25}, FocusLong: {100, 15}} {
		p, m, err := FocusPoints(kind)
		if err != nil || p != want[0] || m != want[1] {
			t.Fatalf("FocusPoints(%s)=(%d,%d,%v), want %v", kind, p, m, err, want)
		}
	}
	if _, _, err := FocusPoints("nap"); err == nil {
		t.Fatalf("expected error for unknown focus kind")
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{"Ann Lee": "AL", "ann": "A", "ann marie lee": "AM", "  ": "", "émile zola": "ÉZ"}
	for in, want := range cases {
		if got := Initials(in); got != want {
			t.Fatalf("Initials(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestApplyUpdateSignals(t *testing.T) {
	now := time.Unix(0, 0)
	base := storage.User{ID: "u1", Points: 90, Level: 1, Badge: "Newcomer"}

	p := 140
	res, err := ApplyUpdate(base, UserUpdate{Points: &p}, false, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if res.LevelUp == nil || res.LevelUp.OldLevel != 1 || res.LevelUp.NewLevel != 2 || res.LevelUp.NewBadge != "Beginner" {
		t.Fatalf("LevelUp=%+v, want 1->2 Beginner", res.LevelUp)
	}
	if res.BadgeGained == nil || res.BadgeGained.OldBadge != "Newcomer" {
		t.Fatalf("BadgeGained=%+v, want from Newcomer", res.BadgeGained)
	}

	// No previous badge: level signal only.
	noBadge := base
	noBadge.Badge = ""
	res, err = ApplyUpdate(noBadge, UserUpdate{Points: &p}, false, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if res.BadgeGained != nil {
		t.Fatalf("expected badge signal suppressed, got %+v", res.BadgeGained)
	}

	// Unchanged level within the band: no signals.
	p = 95
	res, err = ApplyUpdate(base, UserUpdate{Points: &p}, false, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if res.LevelUp != nil || res.BadgeGained != nil {
		t.Fatalf("expected no signals, got %+v %+v", res.LevelUp, res.BadgeGained)
	}

	neg := -1
	var ve *ValidationError
	if _, err := ApplyUpdate(base, UserUpdate{Points: &neg}, false, now); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for negative points, got %v", err)
	}

	name := "Grace Hopper"
	res, err = ApplyUpdate(base, UserUpdate{Name: &name}, false, now)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if res.User.Initials != "GH" {
		t.Fatalf("Initials=%q, want GH", res.User.Initials)
	}
}

func TestToggleTaskLevelUpAndRevert(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann Lee", "Ann@Example.com")
	setPoints(t, svc, u.ID, 90)

	var levelUps []events.LevelUp
	svc.Bus().Subscribe(func(_ context.Context, e events.Event) {
		if lu, ok := e.(events.LevelUp); ok {
			levelUps = append(levelUps, lu)
		}
	})

	task, err := svc.CreateTask(ctx, u.ID, TaskInput{Title: "Ship release", Priority: PriorityHigh, Category: CategoryWork})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Points != 50 {
		t.Fatalf("task points=%d, want 50", task.Points)
	}

	res, err := svc.ToggleTask(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if res.Update.User.Points != 140 || res.Update.User.Level != 2 {
		t.Fatalf("after complete points=%d level=%d, want 140/2", res.Update.User.Points, res.Update.User.Level)
	}
	if len(levelUps) != 1 || levelUps[0].OldLevel != 1 || levelUps[0].NewLevel != 2 {
		t.Fatalf("levelUps=%+v, want exactly one 1->2", levelUps)
	}
	if got := mustUser(t, svc, u.ID); got.TasksCompleted != 1 || got.WeeklyPoints != 50 || got.Streak != 1 {
		t.Fatalf("counters tasks=%d weekly=%d streak=%d", got.TasksCompleted, got.WeeklyPoints, got.Streak)
	}

	notes, err := svc.ListNotifications(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("notifications=%d, want 2 (level + badge)", len(notes))
	}
	titles := map[string]bool{notes[0].Title: true, notes[1].Title: true}
	if !titles["🎉 Level Up!"] || !titles["🏆 New Badge Earned!"] {
		t.Fatalf("unexpected notification titles: %v", titles)
	}

	res, err = svc.ToggleTask(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask back: %v", err)
	}
	if res.Update.User.Points != 90 || res.Update.User.Level != 1 || res.Update.User.Badge != "Newcomer" {
		t.Fatalf("after revert points=%d level=%d badge=%s", res.Update.User.Points, res.Update.User.Level, res.Update.User.Badge)
	}
	if len(levelUps) != 1 {
		t.Fatalf("levelUps=%d after revert, want 1", len(levelUps))
	}
	if got := mustUser(t, svc, u.ID); got.TasksCompleted != 0 || got.WeeklyPoints != 0 {
		t.Fatalf("counters after revert tasks=%d weekly=%d", got.TasksCompleted, got.WeeklyPoints)
	}
}

func TestMonotonicLevelsKeepHighWaterMark(t *testing.T) {
	env := newTestService(t, func(o *Options) { o.MonotonicLevels = true })
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	setPoints(t, svc, u.ID, 90)
	task, err := svc.CreateTask(ctx, u.ID, TaskInput{Title: "t", Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.ToggleTask(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	res, err := svc.ToggleTask(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask back: %v", err)
	}
	if res.Update.User.Points != 90 || res.Update.User.Level != 2 || res.Update.User.Badge != "Beginner" {
		t.Fatalf("points=%d level=%d badge=%s, want 90/2/Beginner", res.Update.User.Points, res.Update.User.Level, res.Update.User.Badge)
	}
}

func TestRevocationClampsAtZeroAndUsesAwardedAmount(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	task, err := svc.CreateTask(ctx, u.ID, TaskInput{Title: "t", Priority: PriorityMedium})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.ToggleTask(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}

	high := PriorityHigh
	edited, err := svc.EditTask(ctx, u.ID, task.ID, TaskEdit{Priority: &high})
	if err != nil {
		t.Fatalf("EditTask: %v", err)
	}
	if edited.Points != 50 || edited.AwardedPoints != 25 {
		t.Fatalf("edited points=%d awarded=%d, want 50/25", edited.Points, edited.AwardedPoints)
	}

	setPoints(t, svc, u.ID, 10)
	res, err := svc.ToggleTask(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("ToggleTask back: %v", err)
	}
	if res.PointsDelta != -10 {
		t.Fatalf("PointsDelta=%d, want -10 (only what was left)", res.PointsDelta)
	}
	if res.Update.User.Points != 0 {
		t.Fatalf("points=%d, want clamped 0", res.Update.User.Points)
	}
}

func TestHabitUndoReportsClampedDelta(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	h, err := svc.CreateHabit(ctx, u.ID, HabitInput{Title: "Read"})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	if _, err := svc.CompleteHabit(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("CompleteHabit: %v", err)
	}
	setPoints(t, svc, u.ID, 5)

	undo, err := svc.UndoHabit(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("UndoHabit: %v", err)
	}
	if undo.PointsDelta != -5 || undo.Update.User.Points != 0 {
		t.Fatalf("undo delta=%d points=%d, want -5/0", undo.PointsDelta, undo.Update.User.Points)
	}
}

func TestConcurrentTogglesAllSucceed(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	const n = 20
	ids := make([]string, n)
	for i := range ids {
		task, err := svc.CreateTask(ctx, u.ID, TaskInput{Title: fmt.Sprintf("task %d", i), Priority: PriorityLow})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		ids[i] = task.ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := svc.ToggleTask(ctx, u.ID, id); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("ToggleTask: %v", err)
	}

	got := mustUser(t, svc, u.ID)
	if got.Points != n*10 || got.TasksCompleted != n {
		t.Fatalf("points=%d completed=%d, want %d/%d", got.Points, got.TasksCompleted, n*10, n)
	}
}

func TestDeleteCompletedTaskRevokes(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	task, err := svc.CreateTask(ctx, u.ID, TaskInput{Title: "t", Priority: PriorityLow})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.ToggleTask(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if _, err := svc.DeleteTask(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	got := mustUser(t, svc, u.ID)
	if got.Points != 0 || got.TasksCompleted != 0 {
		t.Fatalf("points=%d tasks=%d, want 0/0", got.Points, got.TasksCompleted)
	}
	if _, err := svc.DeleteTask(ctx, u.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err=%v, want ErrNotFound", err)
	}
}

func TestCreateTaskValidationAndFilters(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	if _, err := svc.CreateTask(ctx, u.ID, TaskInput{Title: "   "}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("err=%v, want ErrTitleRequired", err)
	}

	for _, in := range []TaskInput{
		{Title: "Gym", Category: CategoryHealth},
		{Title: "Read Go book", Description: "chapter 3", Category: "learning"},
		{Title: "Groceries"},
	} {
		env.clock.Advance(time.Minute)
		if _, err := svc.CreateTask(ctx, u.ID, in); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	all, err := svc.ListTasks(ctx, u.ID, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(all) != 3 || all[0].Title != "Groceries" || all[0].Category != "Personal" {
		t.Fatalf("unexpected list order/defaults: %+v", all)
	}

	learning, err := svc.ListTasks(ctx, u.ID, TaskFilter{Category: CategoryLearning})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(learning) != 1 || learning[0].Title != "Read Go book" {
		t.Fatalf("category filter: %+v", learning)
	}

	q, err := svc.ListTasks(ctx, u.ID, TaskFilter{Query: "CHAPTER"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(q) != 1 {
		t.Fatalf("query filter matched %d, want 1", len(q))
	}

	other := signup(t, svc, "Bob", "bob@example.com")
	if _, err := svc.ToggleTask(ctx, other.ID, all[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign toggle err=%v, want ErrNotFound", err)
	}
}

// failingUsers makes every user write fail, to prove task and user change together.
type failingUsers struct {
	storage.UserRepository
}

func (failingUsers) Update(context.Context, storage.User) error {
	return errors.New("disk full")
}

type failingStore struct {
	storage.Store
}

func (f failingStore) WithTx(ctx context.Context, fn func(r storage.Repos) error) error {
	return f.Store.WithTx(ctx, func(r storage.Repos) error {
		r.Users = failingUsers{r.Users}
		return fn(r)
	})
}

func TestToggleIsAtomic(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	u := signup(t, env.svc, "Ann", "ann@example.com")
	task, err := env.svc.CreateTask(ctx, u.ID, TaskInput{Title: "t", Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	broken := NewService(failingStore{env.store}, Options{Clock: env.clock, IDs: env.ids, Location: time.UTC})
	if _, err := broken.ToggleTask(ctx, u.ID, task.ID); err == nil {
		t.Fatalf("expected toggle to fail")
	}

	got, err := env.store.Repos().Tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Completed {
		t.Fatalf("task flag changed although the points write failed")
	}
	if mustUser(t, env.svc, u.ID).Points != 0 {
		t.Fatalf("points changed")
	}
}

func TestHabitOncePerDayAndUndo(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	h, err := svc.CreateHabit(ctx, u.ID, HabitInput{Title: "Meditate", Category: CategoryHealth})
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}

	res, err := svc.CompleteHabit(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("CompleteHabit: %v", err)
	}
	if res.PointsDelta != 20 || res.Habit.Streak != 1 {
		t.Fatalf("first completion points=%d streak=%d, want 20/1", res.PointsDelta, res.Habit.Streak)
	}
	if _, err := svc.CompleteHabit(ctx, u.ID, h.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second completion err=%v, want ErrAlreadyCompleted", err)
	}

	undo, err := svc.UndoHabit(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("UndoHabit: %v", err)
	}
	if undo.Habit.Streak != 0 || undo.Habit.LastCompletedOn != "" || undo.Update.User.Points != 0 {
		t.Fatalf("after undo streak=%d last=%q points=%d", undo.Habit.Streak, undo.Habit.LastCompletedOn, undo.Update.User.Points)
	}
	if _, err := svc.UndoHabit(ctx, u.ID, h.ID); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("second undo err=%v, want ErrNothingToUndo", err)
	}

	// Day 1 and day 2 build a streak; the second day earns the streak bonus.
	if _, err := svc.CompleteHabit(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("CompleteHabit day1: %v", err)
	}
	env.clock.Advance(24 * time.Hour)
	res, err = svc.CompleteHabit(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("CompleteHabit day2: %v", err)
	}
	if res.PointsDelta != 25 || res.Habit.Streak != 2 || res.Habit.BestStreak != 2 {
		t.Fatalf("day2 points=%d streak=%d best=%d, want 25/2/2", res.PointsDelta, res.Habit.Streak, res.Habit.BestStreak)
	}

	// Undo on day 2 restores day 1 exactly.
	undo, err = svc.UndoHabit(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("UndoHabit day2: %v", err)
	}
	if undo.Habit.Streak != 1 || undo.Habit.BestStreak != 1 || undo.Habit.LastCompletedOn != "2026-01-10" {
		t.Fatalf("restored habit %+v", undo.Habit)
	}
	if _, err := svc.CompleteHabit(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("CompleteHabit day2 again: %v", err)
	}

	// Missing a day lapses the streak.
	env.clock.Advance(48 * time.Hour)
	list, err := svc.ListHabits(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListHabits: %v", err)
	}
	if list[0].Streak != 0 || list[0].BestStreak != 2 {
		t.Fatalf("lapsed streak=%d best=%d, want 0/2", list[0].Streak, list[0].BestStreak)
	}
	res, err = svc.CompleteHabit(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("CompleteHabit after gap: %v", err)
	}
	if res.PointsDelta != 20 || res.Habit.Streak != 1 {
		t.Fatalf("after gap points=%d streak=%d, want 20/1", res.PointsDelta, res.Habit.Streak)
	}

	if err := svc.DeleteHabit(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	if got := mustUser(t, svc, u.ID).Points; got != 20+25+20 {
		t.Fatalf("points=%d after delete, want earned points kept", got)
	}
}

func TestFocusSessionAwardsPointsAndHours(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	res, err := svc.CompleteFocusSession(ctx, u.ID, FocusWork)
	if err != nil {
		t.Fatalf("CompleteFocusSession: %v", err)
	}
	if res.Session.Minutes != 25 || res.Update.User.Points != 50 {
		t.Fatalf("session=%+v points=%d", res.Session, res.Update.User.Points)
	}
	if _, err := svc.CompleteFocusSession(ctx, u.ID, FocusLong); err != nil {
		t.Fatalf("CompleteFocusSession long: %v", err)
	}
	got := mustUser(t, svc, u.ID)
	if got.Points != 150 || got.FocusHours < 0.66 || got.FocusHours > 0.67 {
		t.Fatalf("points=%d hours=%f, want 150/0.667", got.Points, got.FocusHours)
	}

	sessions, err := svc.ListFocusSessions(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListFocusSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions=%d, want 2", len(sessions))
	}
}

func TestUserStreakAcrossDays(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	complete := func() {
		t.Helper()
		if _, err := svc.CompleteFocusSession(ctx, u.ID, FocusShort); err != nil {
			t.Fatalf("CompleteFocusSession: %v", err)
		}
	}
	complete()
	complete()
	if got := mustUser(t, svc, u.ID).Streak; got != 1 {
		t.Fatalf("streak=%d same day, want 1", got)
	}
	env.clock.Advance(24 * time.Hour)
	complete()
	if got := mustUser(t, svc, u.ID).Streak; got != 2 {
		t.Fatalf("streak=%d next day, want 2", got)
	}
	env.clock.Advance(72 * time.Hour)
	complete()
	if got := mustUser(t, svc, u.ID).Streak; got != 1 {
		t.Fatalf("streak=%d after gap, want 1", got)
	}
}

func TestAccounts(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "ann lee", "ann@example.com")
	if u.Initials != "AL" || u.Level != 1 || u.Badge != "Newcomer" || u.Rank != 999 || u.PreviousRank != 999 || u.Avatar != "gradient-primary" {
		t.Fatalf("unexpected default user %+v", u)
	}

	if _, err := svc.Signup(ctx, SignupInput{Name: "Other", Email: "ANN@example.com", Password: "secret1"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate signup err=%v, want ErrEmailTaken", err)
	}
	var ve *ValidationError
	if _, err := svc.Signup(ctx, SignupInput{Name: "X", Email: "x@example.com", Password: "123"}); !errors.As(err, &ve) || ve.Field != "password" {
		t.Fatalf("short password err=%v, want password ValidationError", err)
	}
	if _, err := svc.Signup(ctx, SignupInput{Name: "X", Email: "not-an-email", Password: "secret1"}); !errors.As(err, &ve) || ve.Field != "email" {
		t.Fatalf("bad email err=%v, want email ValidationError", err)
	}

	cur, err := svc.CurrentUser(ctx)
	if err != nil || cur.ID != u.ID {
		t.Fatalf("CurrentUser=%v,%v", cur, err)
	}

	var loggedOut int
	svc.Bus().Subscribe(func(_ context.Context, e events.Event) {
		if _, ok := e.(events.LoggedOut); ok {
			loggedOut++
		}
	})
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if loggedOut != 1 {
		t.Fatalf("LoggedOut published %d times, want 1", loggedOut)
	}
	if _, err := svc.CurrentUser(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("CurrentUser after logout err=%v", err)
	}

	if _, err := svc.Login(ctx, "ann@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err=%v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err=%v", err)
	}
	if _, err := svc.Login(ctx, " Ann@Example.com ", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A missing user record is recreated with defaults.
	if _, err := env.store.DB().ExecContext(ctx, `DELETE FROM users WHERE id = ?`, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	cur, err = svc.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser after delete: %v", err)
	}
	if cur.ID != u.ID || cur.Points != 0 || cur.Name != "ann lee" {
		t.Fatalf("recreated user %+v", cur)
	}
}

func TestNotificationOperations(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	other := signup(t, svc, "Bob", "bob@example.com")

	var ids []string
	for i := 0; i < 3; i++ {
		env.clock.Advance(time.Second)
		n, err := svc.AddNotification(ctx, u.ID, NotificationInput{Title: fmt.Sprintf("n%d", i), Message: "m", Type: NotificationReminder})
		if err != nil {
			t.Fatalf("AddNotification: %v", err)
		}
		ids = append(ids, n.ID)
	}
	list, err := svc.ListNotifications(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 3 || list[0].Title != "n2" {
		t.Fatalf("want newest first, got %+v", list)
	}

	if err := svc.MarkRead(ctx, other.ID, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign MarkRead err=%v, want ErrNotFound", err)
	}
	if err := svc.MarkRead(ctx, u.ID, ids[0]); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if n, _ := svc.UnreadCount(ctx, u.ID); n != 2 {
		t.Fatalf("unread=%d, want 2", n)
	}
	if err := svc.MarkAllRead(ctx, u.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n, _ := svc.UnreadCount(ctx, u.ID); n != 0 {
		t.Fatalf("unread=%d, want 0", n)
	}
	if err := svc.DeleteNotification(ctx, u.ID, ids[1]); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	if err := svc.ClearNotifications(ctx, u.ID); err != nil {
		t.Fatalf("ClearNotifications: %v", err)
	}
	if list, _ := svc.ListNotifications(ctx, u.ID); len(list) != 0 {
		t.Fatalf("notifications left after clear: %d", len(list))
	}
}

func TestCommunity(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	ann := signup(t, svc, "Ann Lee", "ann@example.com")
	bob := signup(t, svc, "Bob", "bob@example.com")
	setPoints(t, svc, ann.ID, 450)

	if _, err := svc.CreatePost(ctx, ann.ID, PostInput{Content: " "}); !errors.Is(err, ErrContentRequired) {
		t.Fatalf("empty post err=%v, want ErrContentRequired", err)
	}
	p, err := svc.CreatePost(ctx, ann.ID, PostInput{
		Content: "Shipped!", Type: PostAchievement, AchievementTitle: "Release", AchievementPoints: 50,
		MediaURL: "https://youtu.be/abc",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.Author.Level != 5 || p.Author.Badge != "Rising Star" || p.Author.Initials != "AL" {
		t.Fatalf("author snapshot %+v", p.Author)
	}
	if p.Achievement == nil || p.Achievement.Points != 50 || p.MediaURL != "" {
		t.Fatalf("achievement=%+v media=%q", p.Achievement, p.MediaURL)
	}

	liked, likes, err := svc.ToggleLike(ctx, bob.ID, p.ID)
	if err != nil || !liked || likes != 1 {
		t.Fatalf("ToggleLike=(%v,%d,%v), want (true,1)", liked, likes, err)
	}

	if _, err := svc.AddComment(ctx, bob.ID, p.ID, ""); !errors.Is(err, ErrContentRequired) {
		t.Fatalf("empty comment err=%v", err)
	}
	c1, err := svc.AddComment(ctx, bob.ID, p.ID, "congrats")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	env.clock.Advance(time.Second)
	if _, err := svc.AddComment(ctx, ann.ID, p.ID, "thanks"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := svc.AddComment(ctx, ann.ID, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("comment on missing post err=%v", err)
	}

	feed, err := svc.Feed(ctx, bob.ID)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed) != 1 || !feed[0].Liked || feed[0].CommentCount != 2 {
		t.Fatalf("feed %+v", feed)
	}
	annFeed, err := svc.Feed(ctx, ann.ID)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if annFeed[0].Liked {
		t.Fatalf("ann did not like the post")
	}

	comments, err := svc.ListComments(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 2 || comments[0].Content != "congrats" {
		t.Fatalf("comments not oldest first: %+v", comments)
	}
	if err := svc.UpdateCommentLikes(ctx, p.ID, c1.ID, 3); err != nil {
		t.Fatalf("UpdateCommentLikes: %v", err)
	}
	comments, _ = svc.ListComments(ctx, p.ID)
	if comments[0].Likes != 3 {
		t.Fatalf("comment likes=%d, want 3", comments[0].Likes)
	}

	liked, likes, err = svc.ToggleLike(ctx, bob.ID, p.ID)
	if err != nil || liked || likes != 0 {
		t.Fatalf("unlike=(%v,%d,%v), want (false,0)", liked, likes, err)
	}
}

func TestYouTubeVideoID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10": "dQw4w9WgXcQ",
		"https://youtu.be/4pdeYkuJ-Zk?si=J6aWi1_pHbguLE6a": "4pdeYkuJ-Zk",
		"https://www.youtube.com/embed/abc123":             "abc123",
		"https://www.youtube.com/v/xyz":                    "xyz",
	}
	for in, want := range cases {
		got, ok := YouTubeVideoID(in)
		if !ok || got != want {
			t.Fatalf("YouTubeVideoID(%q)=(%q,%v), want %q", in, got, ok, want)
		}
	}
	if _, ok := YouTubeVideoID("https://vimeo.com/1"); ok {
		t.Fatalf("expected no id for vimeo")
	}
}

func TestLeaderboardAndRanks(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	a := signup(t, svc, "Ann", "ann@example.com")
	b := signup(t, svc, "Bob", "bob@example.com")
	c := signup(t, svc, "Cid", "cid@example.com")
	setPoints(t, svc, a.ID, 100)
	setPoints(t, svc, b.ID, 300)
	setPoints(t, svc, c.ID, 100)
	weekly := 40
	if _, err := svc.UpdateUser(ctx, a.ID, UserUpdate{WeeklyPoints: &weekly}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	board, err := svc.Leaderboard(ctx, PeriodAll)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	order := []string{board[0].Name, board[1].Name, board[2].Name}
	if order[0] != "Bob" || order[1] != "Ann" || order[2] != "Cid" {
		t.Fatalf("all-time order=%v", order)
	}
	weeklyBoard, err := svc.Leaderboard(ctx, PeriodWeekly)
	if err != nil {
		t.Fatalf("Leaderboard weekly: %v", err)
	}
	if weeklyBoard[0].Name != "Ann" {
		t.Fatalf("weekly leader=%s, want Ann", weeklyBoard[0].Name)
	}

	if err := svc.RefreshRanks(ctx); err != nil {
		t.Fatalf("RefreshRanks: %v", err)
	}
	bob := mustUser(t, svc, b.ID)
	if bob.Rank != 1 || bob.PreviousRank != 999 || RankTrend(bob.Rank, bob.PreviousRank) != TrendUp {
		t.Fatalf("bob rank=%d prev=%d", bob.Rank, bob.PreviousRank)
	}

	setPoints(t, svc, c.ID, 500)
	if err := svc.RefreshRanks(ctx); err != nil {
		t.Fatalf("RefreshRanks: %v", err)
	}
	bob = mustUser(t, svc, b.ID)
	if bob.Rank != 2 || bob.PreviousRank != 1 || RankTrend(bob.Rank, bob.PreviousRank) != TrendDown {
		t.Fatalf("bob rank=%d prev=%d after Cid passed", bob.Rank, bob.PreviousRank)
	}

	if err := svc.ResetWeeklyPoints(ctx); err != nil {
		t.Fatalf("ResetWeeklyPoints: %v", err)
	}
	if got := mustUser(t, svc, a.ID).WeeklyPoints; got != 0 {
		t.Fatalf("weekly=%d after reset", got)
	}
}

func TestProfileAchievements(t *testing.T) {
	env := newTestService(t)
	svc := env.svc
	ctx := context.Background()

	u := signup(t, svc, "Ann", "ann@example.com")
	task, err := svc.CreateTask(ctx, u.ID, TaskInput{Title: "t", Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.ToggleTask(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	hours := 12.0
	if _, err := svc.UpdateUser(ctx, u.ID, UserUpdate{FocusHours: &hours}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	p, err := svc.Profile(ctx, u.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Tasks.Completed != 1 || p.Tasks.Points != 50 || p.NextLevelIn != 50 {
		t.Fatalf("profile stats %+v next=%d", p.Tasks, p.NextLevelIn)
	}
	earned := map[string]bool{}
	for _, a := range p.Achievements {
		earned[a.ID] = a.Earned
	}
	if !earned["first_task"] || !earned["focus_champion"] || earned["task_master"] || earned["habit_builder"] {
		t.Fatalf("achievements %v", earned)
	}

	if _, err := svc.Profile(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing profile err=%v", err)
	}
}
