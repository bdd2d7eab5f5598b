package state

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/slateworks/ticklist/internal/config"
	"github.com/slateworks/ticklist/internal/model"
	"github.com/slateworks/ticklist/internal/store"
)

// localUsername is the pseudo-account that owns all offline todos.
const localUsername = "local"

// Local is the offline backend: the same store the server uses, owned by a
// single pseudo-account on this machine.
type Local struct {
	store   *store.SQLite
	ownerID int64
}

// DefaultLocalPath returns the default local database path (~/.ticklist/todos.db)
func DefaultLocalPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "todos.db"), nil
}

// NewLocal opens the local database at path, creating the pseudo-account on
// first use.
func NewLocal(path string) (*Local, error) {
	st, err := store.OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	user, err := st.CreateUser(ctx, localUsername, "local@localhost", "")
	if errors.Is(err, store.ErrDuplicateIdentity) {
		user, err = st.FindUserByIdentity(ctx, localUsername)
	}
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Local{store: st, ownerID: user.ID}, nil
}

// Close closes the underlying database.
func (l *Local) Close() error {
	return l.store.Close()
}

func (l *Local) Load() ([]model.Todo, error) {
	return l.store.ListTodos(context.Background(), l.ownerID)
}

func (l *Local) Add(text string) (model.Todo, error) {
	return l.store.CreateTodo(context.Background(), l.ownerID, text)
}

func (l *Local) Update(id int64, patch store.TodoPatch) (model.Todo, error) {
	return l.store.UpdateTodo(context.Background(), id, l.ownerID, patch)
}

func (l *Local) Delete(id int64) error {
	return l.store.DeleteTodo(context.Background(), id, l.ownerID)
}
