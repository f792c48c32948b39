package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

const dateLayout = "2006-01-02"

// progress summarizes what a points-bearing action did to the user.
type progress struct {
	User     storage.User `json:"user"`
	Delta    int          `json:"pointsDelta"`
	LevelUp  bool         `json:"levelUp"`
	NewBadge string       `json:"newBadge,omitempty"`
}

func progressOf(upd *engine.UpdateResult, delta int) *progress {
	if upd == nil {
		return nil
	}
	p := &progress{User: upd.User, Delta: delta, LevelUp: upd.LevelUp != nil}
	if upd.BadgeGained != nil {
		p.NewBadge = upd.BadgeGained.NewBadge
	}
	return p
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      storage.User `json:"user"`
}

// decode reads a JSON body of at most maxBodyBytes into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: invalid request body", errBadRequest)
	}
	return nil
}

func (a *api) issue(w http.ResponseWriter, r *http.Request, u *storage.User, status int) {
	token, exp, err := a.tokens.Issue(u.ID, u.Email)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, status, tokenResponse{Token: token, ExpiresAt: exp, User: *u})
}

func (a *api) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.svc.Signup(r.Context(), engine.SignupInput{Name: body.Name, Email: body.Email, Password: body.Password})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.issue(w, r, u, http.StatusCreated)
}

// login checks credentials and returns a token. The local CLI session is left untouched.
func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	acct, err := a.svc.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.svc.UserForAccount(r.Context(), acct.Email)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.issue(w, r, u, http.StatusOK)
}

func (a *api) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Profile(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// updateProfile accepts profile fields only; progression counters are not client-writable.
func (a *api) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         *string `json:"name"`
		Avatar       *string `json:"avatar"`
		ProfilePhoto *string `json:"profilePhoto"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.svc.UpdateUser(r.Context(), userID(r), engine.UserUpdate{
		Name:         body.Name,
		Avatar:       body.Avatar,
		ProfilePhoto: body.ProfilePhoto,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.User)
}

func (a *api) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := engine.TaskFilter{Query: q.Get("q")}
	if c := q.Get("category"); c != "" {
		f.Category = engine.ParseCategory(c)
	}
	if c := q.Get("completed"); c != "" {
		done, err := strconv.ParseBool(c)
		if err != nil {
			a.writeError(w, r, fmt.Errorf("%w: completed must be a boolean", errBadRequest))
			return
		}
		f.Completed = &done
	}
	tasks, err := a.svc.ListTasks(r.Context(), userID(r), f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	stats, err := a.svc.TaskStats(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks, "stats": stats})
}

// parseDue accepts RFC 3339 timestamps and plain dates.
func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: dueDate must be RFC 3339 or YYYY-MM-DD", errBadRequest)
	}
	return &t, nil
}

func (a *api) createTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Category    string `json:"category"`
		DueDate     string `json:"dueDate"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	in := engine.TaskInput{
		Title:       body.Title,
		Description: body.Description,
		Priority:    engine.ParsePriority(body.Priority),
		Category:    engine.ParseCategory(body.Category),
	}
	if body.DueDate != "" {
		due, err := parseDue(body.DueDate)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		in.DueDate = due
	}
	t, err := a.svc.CreateTask(r.Context(), userID(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (a *api) editTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		Category    *string `json:"category"`
		// An empty dueDate clears it.
		DueDate *string `json:"dueDate"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	edit := engine.TaskEdit{Title: body.Title, Description: body.Description}
	if body.Priority != nil {
		p := engine.ParsePriority(*body.Priority)
		edit.Priority = &p
	}
	if body.Category != nil {
		c := engine.ParseCategory(*body.Category)
		edit.Category = &c
	}
	if body.DueDate != nil {
		if *body.DueDate == "" {
			edit.ClearDueDate = true
		} else {
			due, err := parseDue(*body.DueDate)
			if err != nil {
				a.writeError(w, r, err)
				return
			}
			edit.DueDate = due
		}
	}
	t, err := a.svc.EditTask(r.Context(), userID(r), chi.URLParam(r, "id"), edit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *api) deleteTask(w http.ResponseWriter, r *http.Request) {
	upd, err := a.svc.DeleteTask(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if upd == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, progressOf(upd, 0))
}

func (a *api) toggleTask(w http.ResponseWriter, r *http.Request) {
	res, err := a.svc.ToggleTask(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task":     res.Task,
		"progress": progressOf(res.Update, res.PointsDelta),
	})
}

func (a *api) listHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := a.svc.ListHabits(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habits": habits})
}

func (a *api) createHabit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string `json:"title"`
		Category string `json:"category"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	h, err := a.svc.CreateHabit(r.Context(), userID(r), engine.HabitInput{Title: body.Title, Category: engine.Category(body.Category)})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (a *api) completeHabit(w http.ResponseWriter, r *http.Request) {
	res, err := a.svc.CompleteHabit(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habit": res.Habit, "progress": progressOf(res.Update, res.PointsDelta)})
}

func (a *api) undoHabit(w http.ResponseWriter, r *http.Request) {
	res, err := a.svc.UndoHabit(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"habit": res.Habit, "progress": progressOf(res.Update, res.PointsDelta)})
}

func (a *api) deleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteHabit(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listFocus(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.svc.ListFocusSessions(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (a *api) completeFocus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind string `json:"kind"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.svc.CompleteFocusSession(r.Context(), userID(r), engine.ParseFocusKind(body.Kind))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session": res.Session, "progress": progressOf(res.Update, res.Session.Points)})
}

func (a *api) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.ListNotifications(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	unread, err := a.svc.UnreadCount(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list, "unread": unread})
}

func (a *api) markRead(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.MarkRead(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.MarkAllRead(r.Context(), userID(r)); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) deleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteNotification(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) clearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.ClearNotifications(r.Context(), userID(r)); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) leaderboard(w http.ResponseWriter, r *http.Request) {
	period := engine.PeriodAll
	if strings.EqualFold(r.URL.Query().Get("period"), string(engine.PeriodWeekly)) {
		period = engine.PeriodWeekly
	}
	entries, err := a.svc.Leaderboard(r.Context(), period)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period, "entries": entries})
}

func (a *api) feed(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Feed(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": items})
}

func (a *api) createPost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content           string `json:"content"`
		Type              string `json:"type"`
		MediaURL          string `json:"mediaUrl"`
		AchievementTitle  string `json:"achievementTitle"`
		AchievementPoints int    `json:"achievementPoints"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	p, err := a.svc.CreatePost(r.Context(), userID(r), engine.PostInput{
		Content:           body.Content,
		Type:              engine.PostType(strings.ToLower(strings.TrimSpace(body.Type))),
		MediaURL:          body.MediaURL,
		AchievementTitle:  body.AchievementTitle,
		AchievementPoints: body.AchievementPoints,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *api) toggleLike(w http.ResponseWriter, r *http.Request) {
	liked, likes, err := a.svc.ToggleLike(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likes": likes})
}

func (a *api) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := a.svc.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (a *api) addComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decode(w, r, &body); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.AddComment(r.Context(), userID(r), chi.URLParam(r, "id"), body.Content)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
