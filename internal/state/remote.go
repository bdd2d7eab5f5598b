package state

import (
	"github.com/slateworks/ticklist/internal/client"
	"github.com/slateworks/ticklist/internal/model"
	"github.com/slateworks/ticklist/internal/store"
)

// Remote is the networked backend: every operation is an API call made with
// the stored session token.
type Remote struct {
	client *client.Client
}

// NewRemote wraps an authenticated API client.
func NewRemote(c *client.Client) *Remote {
	return &Remote{client: c}
}

func (r *Remote) Load() ([]model.Todo, error) {
	return r.client.ListTodos()
}

func (r *Remote) Add(text string) (model.Todo, error) {
	return r.client.CreateTodo(text)
}

func (r *Remote) Update(id int64, patch store.TodoPatch) (model.Todo, error) {
	return r.client.UpdateTodo(id, patch.Text, patch.Completed)
}

func (r *Remote) Delete(id int64) error {
	return r.client.DeleteTodo(id)
}
