package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/events"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

type panel int

const (
	panelTasks panel = iota
	panelHabits
)

const toastDuration = 4 * time.Second

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	events <-chan events.Event

	width  int
	height int

	user   *storage.User
	unread int
	tasks  []storage.Task
	habits []storage.Habit

	panel    panel
	selected int

	adding  bool
	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	toast   string
	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	user   *storage.User
	unread int
	tasks  []storage.Task
	habits []storage.Habit
	err    error
}

// actionMsg reports a finished mutation; the board reloads after it.
type actionMsg struct {
	log string
	err error
}

type eventMsg struct {
	event events.Event
}

// dbChangedMsg is sent when the database file changes on disk.
type dbChangedMsg struct{}

type toastExpiredMsg struct {
	text string
}

func newBoardModel(ctx context.Context, svc *engine.Service, stream <-chan events.Event) boardModel {
	ti := textinput.New()
	ti.Prompt = "│ "
	ti.CharLimit = 200
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return boardModel{
		ctx:     ctx,
		svc:     svc,
		events:  stream,
		input:   ti,
		spinner: sp,
		help:    help.New(),
		loading: true,
		lastLog: "Loading…",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spinner.Tick, m.waitForEvent())
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		u, err := m.svc.CurrentUser(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks, err := m.svc.ListTasks(m.ctx, u.ID, engine.TaskFilter{})
		if err != nil {
			return loadedMsg{err: err}
		}
		habits, err := m.svc.ListHabits(m.ctx, u.ID)
		if err != nil {
			return loadedMsg{err: err}
		}
		unread, err := m.svc.UnreadCount(m.ctx, u.ID)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{user: u, unread: unread, tasks: tasks, habits: habits}
	}
}

func (m boardModel) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{event: e}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			if errors.Is(msg.err, engine.ErrNotAuthenticated) {
				m.lastLog = "Not logged in. Run `boostly login` first."
			} else {
				m.lastLog = "Load failed: " + msg.err.Error()
			}
			return m, nil
		}
		m.user = msg.user
		m.unread = msg.unread
		m.tasks = msg.tasks
		m.habits = msg.habits
		m.clampSelection()
		if m.lastLog == "Loading…" {
			m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		}
		return m, nil
	case actionMsg:
		if msg.err != nil {
			m.lastLog = msg.err.Error()
			return m, nil
		}
		m.lastLog = msg.log
		return m, m.loadCmd()
	case dbChangedMsg:
		return m, m.loadCmd()
	case eventMsg:
		var text string
		switch e := msg.event.(type) {
		case events.LevelUp:
			text = fmt.Sprintf("%s %s Level %d · %s", ui.IconParty, ui.LevelUp, e.NewLevel, e.NewBadge)
		case events.BadgeGained:
			text = fmt.Sprintf("%s New badge: %s", ui.IconTrophy, e.NewBadge)
		default:
			return m, m.waitForEvent()
		}
		m.toast = text
		expire := tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{text: text} })
		return m, tea.Batch(expire, m.waitForEvent())
	case toastExpiredMsg:
		if m.toast == msg.text {
			m.toast = ""
		}
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m boardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		if title == "" || m.user == nil {
			return m, nil
		}
		return m, m.addCmd(title)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m boardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Refresh):
		m.lastLog = "Refreshing…"
		return m, m.loadCmd()
	case key.Matches(msg, keys.Switch):
		if m.panel == panelTasks {
			m.panel = panelHabits
		} else {
			m.panel = panelTasks
		}
		m.selected = 0
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.selected < m.rows()-1 {
			m.selected++
		}
		return m, nil
	case key.Matches(msg, keys.Add):
		if m.user == nil {
			return m, nil
		}
		m.adding = true
		if m.panel == panelTasks {
			m.input.Placeholder = "New task title (enter to save, esc to cancel)"
		} else {
			m.input.Placeholder = "New habit title (enter to save, esc to cancel)"
		}
		return m, m.input.Focus()
	}

	if m.user == nil || m.selected < 0 || m.selected >= m.rows() {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Toggle):
		if m.panel == panelTasks {
			return m, m.toggleTaskCmd(m.tasks[m.selected])
		}
		return m, m.completeHabitCmd(m.habits[m.selected])
	case key.Matches(msg, keys.Undo):
		if m.panel == panelHabits {
			return m, m.undoHabitCmd(m.habits[m.selected])
		}
	case key.Matches(msg, keys.Delete):
		return m, m.deleteCmd()
	}
	return m, nil
}

func (m boardModel) toggleTaskCmd(t storage.Task) tea.Cmd {
	userID := m.user.ID
	return func() tea.Msg {
		res, err := m.svc.ToggleTask(m.ctx, userID, t.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		verb := "Completed"
		if !res.Task.Completed {
			verb = "Reopened"
		}
		return actionMsg{log: fmt.Sprintf("%s %q: %s", verb, t.Title, ui.Points(res.PointsDelta))}
	}
}

func (m boardModel) completeHabitCmd(h storage.Habit) tea.Cmd {
	userID := m.user.ID
	return func() tea.Msg {
		res, err := m.svc.CompleteHabit(m.ctx, userID, h.ID)
		if errors.Is(err, engine.ErrAlreadyCompleted) {
			return actionMsg{err: fmt.Errorf("%q is already done today", h.Title)}
		}
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("%s %q: %s, streak %d", ui.IconFire, h.Title, ui.Points(res.PointsDelta), res.Habit.Streak)}
	}
}

func (m boardModel) undoHabitCmd(h storage.Habit) tea.Cmd {
	userID := m.user.ID
	return func() tea.Msg {
		res, err := m.svc.UndoHabit(m.ctx, userID, h.ID)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Undid %q: %s", h.Title, ui.Points(res.PointsDelta))}
	}
}

func (m boardModel) deleteCmd() tea.Cmd {
	userID := m.user.ID
	if m.panel == panelTasks {
		t := m.tasks[m.selected]
		return func() tea.Msg {
			if _, err := m.svc.DeleteTask(m.ctx, userID, t.ID); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{log: fmt.Sprintf("Deleted task %q", t.Title)}
		}
	}
	h := m.habits[m.selected]
	return func() tea.Msg {
		if err := m.svc.DeleteHabit(m.ctx, userID, h.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("Deleted habit %q", h.Title)}
	}
}

func (m boardModel) addCmd(title string) tea.Cmd {
	userID := m.user.ID
	p := m.panel
	return func() tea.Msg {
		if p == panelTasks {
			t, err := m.svc.CreateTask(m.ctx, userID, engine.TaskInput{Title: title})
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{log: fmt.Sprintf("%s Added task %q (%d pts)", ui.IconPlus, t.Title, t.Points)}
		}
		h, err := m.svc.CreateHabit(m.ctx, userID, engine.HabitInput{Title: title})
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{log: fmt.Sprintf("%s Added habit %q", ui.IconPlus, h.Title)}
	}
}

func (m boardModel) rows() int {
	if m.panel == panelTasks {
		return len(m.tasks)
	}
	return len(m.habits)
}

func (m *boardModel) clampSelection() {
	if m.selected >= m.rows() {
		m.selected = m.rows() - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) View() string {
	if m.err != nil {
		return ui.Bad.Render(ui.IconError+" "+m.lastLog) + "\n\nPress q to quit.\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderList())
	b.WriteString("\n")
	if m.toast != "" {
		b.WriteString(ui.Toast.Render(m.toast))
		b.WriteString("\n")
	}
	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.lastLog)
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m boardModel) renderHeader() string {
	if m.user == nil {
		return ui.Title.Render("Boostly") + " " + m.spinner.View() + " loading…"
	}
	u := m.user
	bar := ui.ProgressBar(engine.LevelProgress(u.Points), 100, 20)
	return fmt.Sprintf("%s | %s · Level %d %s | %d pts %s %s | %s %d | %s %d",
		ui.Title.Render(ui.IconRocket+" Boostly"),
		u.Name,
		u.Level,
		ui.Badge(u.Badge),
		u.Points,
		bar,
		ui.Muted.Render(fmt.Sprintf("%d to next", engine.PointsToNextLevel(u.Points))),
		ui.IconFire, u.Streak,
		ui.IconBell, m.unread,
	)
}

func (m boardModel) renderTabs() string {
	tasks := fmt.Sprintf("Tasks (%d)", len(m.tasks))
	habits := fmt.Sprintf("Habits (%d)", len(m.habits))
	if m.panel == panelTasks {
		return ui.SelectedRow.Render(" "+tasks+" ") + "  " + ui.Muted.Render(habits)
	}
	return ui.Muted.Render(tasks) + "  " + ui.SelectedRow.Render(" "+habits+" ")
}

func (m boardModel) renderList() string {
	if m.loading {
		return m.spinner.View() + " Loading…"
	}
	var lines []string
	if m.panel == panelTasks {
		if len(m.tasks) == 0 {
			return ui.Muted.Render("(no tasks, press a to add one)")
		}
		for i, t := range m.tasks {
			line := fmt.Sprintf("%s %s %s %s %s",
				ui.CheckIcon(t.Completed), t.Title, ui.PriorityText(t.Priority),
				ui.Muted.Render(t.Category), ui.Muted.Render(fmt.Sprintf("%d pts", t.Points)))
			lines = append(lines, m.cursor(i)+line)
		}
		return strings.Join(lines, "\n")
	}

	if len(m.habits) == 0 {
		return ui.Muted.Render("(no habits, press a to add one)")
	}
	for i, h := range m.habits {
		done := m.svc.CompletedToday(h)
		line := fmt.Sprintf("%s %s %s %s",
			ui.CheckIcon(done), h.Title,
			ui.Warn.Render(fmt.Sprintf("%s %d", ui.IconFire, h.Streak)),
			ui.Muted.Render(fmt.Sprintf("best %d · next +%d", h.BestStreak, engine.HabitPoints(h.Streak))))
		lines = append(lines, m.cursor(i)+line)
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) cursor(i int) string {
	if i == m.selected {
		return "> "
	}
	return "  "
}
