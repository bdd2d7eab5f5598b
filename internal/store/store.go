// Package store provides persistent storage for users and todos.
//
// Two implementations exist: an embedded SQLite store (the default, also used
// by the client's local backend and by tests) and a Postgres store selected
// via a postgres:// DATABASE_URL.
package store

import (
	"context"
	"errors"

	"github.com/slateworks/ticklist/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist or is owned by a
	// different user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateIdentity is returned when a username or email is taken.
	ErrDuplicateIdentity = errors.New("username or email already exists")

	// ErrValidation is returned for missing or empty required fields.
	ErrValidation = errors.New("validation failed")
)

// TodoPatch is a partial update to a todo. Nil fields are left untouched.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// Empty reports whether the patch specifies no fields.
func (p TodoPatch) Empty() bool {
	return p.Text == nil && p.Completed == nil
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user. Uniqueness of username and email is
	// enforced here; violations surface as ErrDuplicateIdentity.
	CreateUser(ctx context.Context, username, email, passwordHash string) (model.User, error)

	// FindUserByIdentity looks a user up by username or email.
	FindUserByIdentity(ctx context.Context, identity string) (model.User, error)
}

// TodoStore persists todos. Every operation is scoped to the owning user:
// rows belonging to someone else behave exactly like missing rows.
type TodoStore interface {
	CreateTodo(ctx context.Context, ownerID int64, text string) (model.Todo, error)
	ListTodos(ctx context.Context, ownerID int64) ([]model.Todo, error)
	UpdateTodo(ctx context.Context, id, ownerID int64, patch TodoPatch) (model.Todo, error)
	DeleteTodo(ctx context.Context, id, ownerID int64) error
}

// Store combines both stores over one database connection.
type Store interface {
	UserStore
	TodoStore
	Close() error
}
