package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/slateworks/ticklist/internal/state"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == ModeHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	list := m.renderList()
	statusBar := m.renderStatusBar()

	content := lipgloss.JoinVertical(lipgloss.Left, header, list)

	if m.mode == ModeAdd || m.mode == ModeEdit {
		content = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderInputModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeConfirmDelete {
		content = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderConfirmModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

func (m Model) renderHeader() string {
	who := "offline"
	if m.username != "" {
		who = m.username
	}
	title := HeaderStyle.Render("ticklist") + HelpStyle.Render(" · "+who)

	return title + "\n" + m.renderFilterTabs()
}

func (m Model) renderFilterTabs() string {
	active, completed := m.ctrl.Counts()
	total := active + completed

	tabs := []struct {
		filter state.Filter
		label  string
	}{
		{state.FilterAll, fmt.Sprintf("All (%d)", total)},
		{state.FilterActive, fmt.Sprintf("Active (%d)", active)},
		{state.FilterCompleted, fmt.Sprintf("Completed (%d)", completed)},
	}

	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if tab.filter == m.ctrl.Filter() {
			parts = append(parts, FilterActiveStyle.Render(tab.label))
		} else {
			parts = append(parts, FilterStyle.Render(tab.label))
		}
	}

	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderList() string {
	todos := m.visible()
	if len(todos) == 0 {
		empty := "No todos yet. Press 'a' to add one."
		if m.ctrl.Filter() != state.FilterAll {
			empty = "Nothing here."
		}
		return ListStyle.Render(HelpStyle.Render(empty))
	}

	var s strings.Builder
	for i, t := range todos {
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "❯ "
		}

		line := fmt.Sprintf("%s%s %s", cursor, checkbox, truncate(t.Text, m.width-12))

		style := TodoItemStyle
		if t.Completed {
			style = TodoDoneStyle
		}
		if i == m.cursor {
			style = TodoItemSelectedStyle
		}

		s.WriteString(style.Render(line) + "\n")
	}

	return ListStyle.Render(s.String())
}

func (m Model) renderStatusBar() string {
	active, _ := m.ctrl.Counts()

	left := fmt.Sprintf("%d items left", active)
	if active == 1 {
		left = "1 item left"
	}

	help := "a add · x toggle · d delete · c clear · tab filter · ? help"

	bar := left + "  " + HelpStyle.Render(help)
	if m.message != "" {
		bar = MessageStyle.Render(m.message)
	}

	return StatusBarStyle.Width(m.width).Render(bar)
}

func (m Model) renderInputModal() string {
	title := "Add todo"
	if m.mode == ModeEdit {
		title = "Edit todo"
	}
	body := HeaderStyle.Render(title) + "\n\n" + m.input.View() + "\n\n" +
		HelpStyle.Render("enter save · esc cancel")
	return ModalStyle.Render(body)
}

func (m Model) renderConfirmModal() string {
	body := HeaderStyle.Render("Delete todo?") + "\n\n" +
		HelpStyle.Render("y confirm · any other key cancels")
	return ModalStyle.Render(body)
}

func (m Model) renderHelp() string {
	lines := []string{
		"ticklist keys",
		"",
		"  ↑/k ↓/j     move cursor",
		"  a           add todo",
		"  e           edit todo",
		"  x/space     toggle done",
		"  d           delete",
		"  c           clear completed",
		"  K/J         reorder (local only)",
		"  tab, 1/2/3  filters",
		"  q           quit",
		"",
		"press any key to close",
	}
	return ListStyle.Render(strings.Join(lines, "\n"))
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
