package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Switch  key.Binding
	Toggle  key.Binding
	Undo    key.Binding
	Delete  key.Binding
	Add     key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Switch:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tasks/habits")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "space", "c"), key.WithHelp("space", "complete")),
	Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo habit")),
	Delete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Toggle, k.Add, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Switch},
		{k.Toggle, k.Undo, k.Delete, k.Add},
		{k.Refresh, k.Quit},
	}
}
