package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/slateworks/ticklist/internal/logger"
	"github.com/slateworks/ticklist/internal/model"
	"github.com/slateworks/ticklist/internal/state"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeEdit
	ModeConfirmDelete
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	ctrl     *state.Controller
	username string // empty when running offline

	confirmDelete bool

	// UI state
	width  int
	height int
	mode   Mode
	cursor int

	// Input
	input     textinput.Model
	editingID int64

	// Delete confirmation target
	deleteID int64

	message string
}

// NewModel creates a new TUI model over a loaded controller.
func NewModel(ctrl *state.Controller, username string, confirmDelete bool) Model {
	logger.Info("Initializing TUI model", logger.F("todos", len(ctrl.Todos())))

	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		ctrl:          ctrl,
		username:      username,
		confirmDelete: confirmDelete,
		mode:          ModeNormal,
		input:         ti,
	}
}

func (m *Model) visible() []model.Todo {
	return m.ctrl.Visible()
}

func (m *Model) currentTodo() *model.Todo {
	todos := m.visible()
	if m.cursor >= 0 && m.cursor < len(todos) {
		return &todos[m.cursor]
	}
	return nil
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
