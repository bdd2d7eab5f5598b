package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Add       key.Binding
	Edit      key.Binding
	Toggle    key.Binding
	Delete    key.Binding
	Clear     key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Filter    key.Binding
	All       key.Binding
	Active    key.Binding
	Completed key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
	Enter     key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add todo")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit todo")),
	Toggle:    key.NewBinding(key.WithKeys("x", " ", "enter"), key.WithHelp("x", "toggle done")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
	MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
	MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
	Filter:    key.NewBinding(key.WithKeys("tab", "f"), key.WithHelp("tab", "cycle filter")),
	All:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
	Active:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
	Completed: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
}
