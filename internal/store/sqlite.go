package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slateworks/ticklist/internal/model"
)

// SQLite is the embedded store backed by a single database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	migrations := []string{
		sqliteMigrationUsers,
		sqliteMigrationTodos,
	}

	for i, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const sqliteMigrationUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

const sqliteMigrationTodos = `
CREATE TABLE IF NOT EXISTS todos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    text TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_todos_user ON todos(user_id);
`

func (s *SQLite) CreateUser(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	if username == "" || email == "" {
		return model.User{}, ErrValidation
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return model.User{}, ErrDuplicateIdentity
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("failed to read user id: %w", err)
	}

	return model.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (s *SQLite) FindUserByIdentity(ctx context.Context, identity string) (model.User, error) {
	var (
		u       model.User
		created string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = ? OR email = ?`,
		identity, identity,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return u, nil
}

func (s *SQLite) CreateTodo(ctx context.Context, ownerID int64, text string) (model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Todo{}, ErrValidation
	}

	todo := model.NewTodo(ownerID, text)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (user_id, text, completed, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		todo.UserID, todo.Text, todo.Completed, todo.Position,
		todo.CreatedAt.Format(time.RFC3339Nano), todo.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}

	todo.ID, err = res.LastInsertId()
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to read todo id: %w", err)
	}

	return todo, nil
}

func (s *SQLite) ListTodos(ctx context.Context, ownerID int64) ([]model.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, text, completed, position, created_at, updated_at
		FROM todos WHERE user_id = ?
		ORDER BY position ASC, created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanSQLiteTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

func (s *SQLite) UpdateTodo(ctx context.Context, id, ownerID int64, patch TodoPatch) (model.Todo, error) {
	if patch.Empty() {
		return model.Todo{}, ErrValidation
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339Nano)}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return model.Todo{}, ErrValidation
		}
		sets = append(sets, "text = ?")
		args = append(args, text)
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *patch.Completed)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf("UPDATE todos SET %s WHERE id = ? AND user_id = ?", strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return model.Todo{}, ErrNotFound
	}

	return s.getTodo(ctx, id, ownerID)
}

func (s *SQLite) DeleteTodo(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM todos WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) getTodo(ctx context.Context, id, ownerID int64) (model.Todo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, text, completed, position, created_at, updated_at
		FROM todos WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	t, err := scanSQLiteTodo(row)
	if err == sql.ErrNoRows {
		return model.Todo{}, ErrNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to fetch todo: %w", err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTodo(row rowScanner) (model.Todo, error) {
	var (
		t                model.Todo
		created, updated string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.Position, &created, &updated); err != nil {
		return model.Todo{}, err
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return t, nil
}
