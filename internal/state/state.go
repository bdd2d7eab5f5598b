// Package state holds the client-side todo list and keeps it in step with a
// persistence backend. The backend is pluggable: the list behaves the same
// whether it is stored in a local database or on the API server.
package state

import (
	"sort"

	"github.com/slateworks/ticklist/internal/logger"
	"github.com/slateworks/ticklist/internal/model"
	"github.com/slateworks/ticklist/internal/store"
)

// Filter selects which todos are visible
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Backend persists todos for the controller. The backend is authoritative
// for ids and timestamps; the controller trusts whatever it returns.
type Backend interface {
	Load() ([]model.Todo, error)
	Add(text string) (model.Todo, error)
	Update(id int64, patch store.TodoPatch) (model.Todo, error)
	Delete(id int64) error
}

// Controller owns the in-memory todo list. It is an explicit object meant to
// be injected into whatever drives it (TUI, CLI commands); it is not safe for
// concurrent use.
type Controller struct {
	backend         Backend
	todos           []model.Todo
	filter          Filter
	reorderOnToggle bool
}

// New creates a controller over the given backend. When reorderOnToggle is
// set, any completion change re-partitions the list: active todos first in
// their current order, completed todos after, most recently updated first.
func New(backend Backend, reorderOnToggle bool) *Controller {
	return &Controller{
		backend:         backend,
		filter:          FilterAll,
		reorderOnToggle: reorderOnToggle,
	}
}

// Load replaces the in-memory list with the backend's contents.
func (c *Controller) Load() error {
	todos, err := c.backend.Load()
	if err != nil {
		return err
	}
	c.todos = todos
	return nil
}

// Add creates a todo and prepends the stored row to the list.
func (c *Controller) Add(text string) (model.Todo, error) {
	todo, err := c.backend.Add(text)
	if err != nil {
		return model.Todo{}, err
	}
	c.todos = append([]model.Todo{todo}, c.todos...)
	return todo, nil
}

// Toggle flips a todo's completion state. The flipped value is sent to the
// backend first; on failure the list is left untouched. On success the
// returned row replaces the local one and the reorder policy is reapplied.
func (c *Controller) Toggle(id int64) (model.Todo, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return model.Todo{}, store.ErrNotFound
	}

	completed := !c.todos[idx].Completed
	updated, err := c.backend.Update(id, store.TodoPatch{Completed: &completed})
	if err != nil {
		return model.Todo{}, err
	}

	c.todos[idx] = updated
	if c.reorderOnToggle {
		c.reorganize()
	}
	return updated, nil
}

// Edit replaces a todo's text.
func (c *Controller) Edit(id int64, text string) (model.Todo, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return model.Todo{}, store.ErrNotFound
	}

	updated, err := c.backend.Update(id, store.TodoPatch{Text: &text})
	if err != nil {
		return model.Todo{}, err
	}

	c.todos[idx] = updated
	return updated, nil
}

// Delete removes a todo. The row leaves memory only after the backend
// confirms, so a failed delete leaves the list exactly as it was.
func (c *Controller) Delete(id int64) error {
	idx := c.indexOf(id)
	if idx < 0 {
		return store.ErrNotFound
	}

	if err := c.backend.Delete(id); err != nil {
		return err
	}

	c.todos = append(c.todos[:idx], c.todos[idx+1:]...)
	return nil
}

// ClearCompleted deletes every completed todo, one request at a time.
// Individual failures are logged and skipped over; the completed todos are
// dropped from memory regardless of outcome. Returns the number dropped.
func (c *Controller) ClearCompleted() int {
	remaining := make([]model.Todo, 0, len(c.todos))
	cleared := 0
	for _, t := range c.todos {
		if !t.Completed {
			remaining = append(remaining, t)
			continue
		}
		if err := c.backend.Delete(t.ID); err != nil {
			logger.Warn("failed to clear completed todo",
				logger.F("id", t.ID), logger.F("error", err))
		}
		cleared++
	}
	c.todos = remaining
	return cleared
}

// Move shifts a todo by delta positions in the in-memory list. This is a
// purely local permutation; the order is not persisted anywhere.
func (c *Controller) Move(id int64, delta int) {
	idx := c.indexOf(id)
	if idx < 0 {
		return
	}

	target := idx + delta
	if target < 0 || target >= len(c.todos) {
		return
	}

	step := 1
	if delta < 0 {
		step = -1
	}
	for i := idx; i != target; i += step {
		c.todos[i], c.todos[i+step] = c.todos[i+step], c.todos[i]
	}
}

// SetFilter changes which todos Visible returns.
func (c *Controller) SetFilter(f Filter) {
	c.filter = f
}

// Filter returns the active filter.
func (c *Controller) Filter() Filter {
	return c.filter
}

// Todos returns the full in-memory list.
func (c *Controller) Todos() []model.Todo {
	return c.todos
}

// Visible projects the list through the active filter. It never touches the
// backend.
func (c *Controller) Visible() []model.Todo {
	switch c.filter {
	case FilterActive:
		return c.selectTodos(func(t model.Todo) bool { return !t.Completed })
	case FilterCompleted:
		return c.selectTodos(func(t model.Todo) bool { return t.Completed })
	default:
		return c.todos
	}
}

// Counts returns the number of active and completed todos.
func (c *Controller) Counts() (active, completed int) {
	for _, t := range c.todos {
		if t.Completed {
			completed++
		} else {
			active++
		}
	}
	return active, completed
}

func (c *Controller) selectTodos(keep func(model.Todo) bool) []model.Todo {
	out := []model.Todo{}
	for _, t := range c.todos {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Controller) indexOf(id int64) int {
	for i, t := range c.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// reorganize partitions the list into active todos (relative order kept)
// followed by completed todos sorted newest-updated first.
func (c *Controller) reorganize() {
	active := []model.Todo{}
	completed := []model.Todo{}
	for _, t := range c.todos {
		if t.Completed {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].UpdatedAt.After(completed[j].UpdatedAt)
	})

	c.todos = append(active, completed...)
}
