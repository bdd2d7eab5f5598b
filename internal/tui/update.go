package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slateworks/ticklist/internal/logger"
	"github.com/slateworks/ticklist/internal/state"
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAdd, ModeEdit:
			return m.updateInput(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Add):
		m.mode = ModeAdd
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Edit):
		if todo := m.currentTodo(); todo != nil {
			m.mode = ModeEdit
			m.editingID = todo.ID
			m.input.SetValue(todo.Text)
			m.input.CursorEnd()
			m.input.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, keys.Toggle):
		if todo := m.currentTodo(); todo != nil {
			if _, err := m.ctrl.Toggle(todo.ID); err != nil {
				// Nothing was flipped locally; just report it
				m.message = fmt.Sprintf("Toggle failed: %v", err)
				logger.Warn("toggle failed", logger.F("id", todo.ID), logger.F("error", err))
			}
			m.clampCursor()
		}

	case key.Matches(msg, keys.Delete):
		if todo := m.currentTodo(); todo != nil {
			if m.confirmDelete {
				m.mode = ModeConfirmDelete
				m.deleteID = todo.ID
			} else {
				m.deleteTodo(todo.ID)
			}
		}

	case key.Matches(msg, keys.Clear):
		cleared := m.ctrl.ClearCompleted()
		if cleared > 0 {
			m.message = fmt.Sprintf("Cleared %d completed", cleared)
		}
		m.clampCursor()

	case key.Matches(msg, keys.MoveUp):
		if todo := m.currentTodo(); todo != nil && m.ctrl.Filter() == state.FilterAll {
			m.ctrl.Move(todo.ID, -1)
			if m.cursor > 0 {
				m.cursor--
			}
		}

	case key.Matches(msg, keys.MoveDown):
		if todo := m.currentTodo(); todo != nil && m.ctrl.Filter() == state.FilterAll {
			m.ctrl.Move(todo.ID, 1)
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		}

	case key.Matches(msg, keys.Filter):
		m.cycleFilter()

	case key.Matches(msg, keys.All):
		m.setFilter(state.FilterAll)

	case key.Matches(msg, keys.Active):
		m.setFilter(state.FilterActive)

	case key.Matches(msg, keys.Completed):
		m.setFilter(state.FilterCompleted)

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.mode = ModeNormal
			m.input.Blur()
			return m, nil
		}

		var err error
		if m.mode == ModeAdd {
			_, err = m.ctrl.Add(text)
			if err == nil {
				m.cursor = 0
			}
		} else {
			_, err = m.ctrl.Edit(m.editingID, text)
		}
		if err != nil {
			m.message = fmt.Sprintf("Save failed: %v", err)
		}

		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.deleteTodo(m.deleteID)
	}
	m.mode = ModeNormal
	m.deleteID = 0
	return m, nil
}

func (m *Model) deleteTodo(id int64) {
	if err := m.ctrl.Delete(id); err != nil {
		// The row is still in the list; nothing to restore
		m.message = fmt.Sprintf("Delete failed: %v", err)
		logger.Warn("delete failed", logger.F("id", id), logger.F("error", err))
		return
	}
	m.clampCursor()
}

func (m *Model) setFilter(f state.Filter) {
	m.ctrl.SetFilter(f)
	m.cursor = 0
}

func (m *Model) cycleFilter() {
	switch m.ctrl.Filter() {
	case state.FilterAll:
		m.setFilter(state.FilterActive)
	case state.FilterActive:
		m.setFilter(state.FilterCompleted)
	default:
		m.setFilter(state.FilterAll)
	}
}
