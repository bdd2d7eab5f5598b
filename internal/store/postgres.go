package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/slateworks/ticklist/internal/model"
)

// Postgres is the server store for postgres:// deployments.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database at dbURL and runs migrations.
func OpenPostgres(dbURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Postgres{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Postgres) Close() error {
	return s.db.Close()
}

func (s *Postgres) migrate() error {
	migrations := []string{
		pgMigrationUsers,
		pgMigrationTodos,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

const pgMigrationUsers = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username VARCHAR(255) UNIQUE NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const pgMigrationTodos = `
CREATE TABLE IF NOT EXISTS todos (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    text TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    "position" INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_todos_user ON todos(user_id);
`

// isUniqueViolation reports whether err is a unique constraint error.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

func (s *Postgres) CreateUser(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	if username == "" || email == "" {
		return model.User{}, ErrValidation
	}

	u := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		username, email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicateIdentity
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *Postgres) FindUserByIdentity(ctx context.Context, identity string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1 OR email = $1`,
		identity,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

func (s *Postgres) CreateTodo(ctx context.Context, ownerID int64, text string) (model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Todo{}, ErrValidation
	}

	t := model.Todo{UserID: ownerID, Text: text}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO todos (user_id, text)
		VALUES ($1, $2)
		RETURNING id, completed, "position", created_at, updated_at`,
		ownerID, text,
	).Scan(&t.ID, &t.Completed, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}

	return t, nil
}

func (s *Postgres) ListTodos(ctx context.Context, ownerID int64) ([]model.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, text, completed, "position", created_at, updated_at
		FROM todos WHERE user_id = $1
		ORDER BY "position" ASC, created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

func (s *Postgres) UpdateTodo(ctx context.Context, id, ownerID int64, patch TodoPatch) (model.Todo, error) {
	if patch.Empty() {
		return model.Todo{}, ErrValidation
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return model.Todo{}, ErrValidation
		}
		args = append(args, text)
		sets = append(sets, fmt.Sprintf("text = $%d", len(args)))
	}
	if patch.Completed != nil {
		args = append(args, *patch.Completed)
		sets = append(sets, fmt.Sprintf("completed = $%d", len(args)))
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`
		UPDATE todos SET %s WHERE id = $%d AND user_id = $%d
		RETURNING id, user_id, text, completed, "position", created_at, updated_at`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	var t model.Todo
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Todo{}, ErrNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}

	return t, nil
}

func (s *Postgres) DeleteTodo(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM todos WHERE id = $1 AND user_id = $2", id, ownerID)
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

// Open picks a store implementation from the database URL. A postgres://
// URL selects the Postgres store; anything else is treated as a SQLite
// file path.
func Open(dbURL string) (Store, error) {
	if strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://") {
		return OpenPostgres(dbURL)
	}
	return OpenSQLite(dbURL)
}
