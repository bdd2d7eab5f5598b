package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected non-zero user ID")
	}
	if user.Username != "alice" {
		t.Errorf("Username: got %s, want alice", user.Username)
	}

	// Duplicate username
	if _, err := s.CreateUser(ctx, "alice", "other@example.com", "hash"); !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("duplicate username: got %v, want ErrDuplicateIdentity", err)
	}

	// Duplicate email
	if _, err := s.CreateUser(ctx, "bob", "alice@example.com", "hash"); !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("duplicate email: got %v, want ErrDuplicateIdentity", err)
	}
}

func TestFindUserByIdentity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byName, err := s.FindUserByIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username failed: %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("find by username: got ID %d, want %d", byName.ID, created.ID)
	}

	byEmail, err := s.FindUserByIdentity(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("find by email: got ID %d, want %d", byEmail.ID, created.ID)
	}

	if _, err := s.FindUserByIdentity(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown identity: got %v, want ErrNotFound", err)
	}
}

func TestCreateTodoValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := s.CreateTodo(ctx, user.ID, text); !errors.Is(err, ErrValidation) {
			t.Errorf("CreateTodo(%q): got %v, want ErrValidation", text, err)
		}
	}

	todos, err := s.ListTodos(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("expected no todos after rejected creates, got %d", len(todos))
	}

	todo, err := s.CreateTodo(ctx, user.ID, "  Buy milk  ")
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	if todo.Text != "Buy milk" {
		t.Errorf("Text: got %q, want trimmed \"Buy milk\"", todo.Text)
	}
	if todo.Completed {
		t.Error("new todo should not be completed")
	}
}

func TestListTodosOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	var ids []int64
	for _, text := range []string{"first", "second", "third"} {
		todo, err := s.CreateTodo(ctx, user.ID, text)
		if err != nil {
			t.Fatalf("CreateTodo(%q) failed: %v", text, err)
		}
		ids = append(ids, todo.ID)
		time.Sleep(2 * time.Millisecond) // distinct created_at
	}

	todos, err := s.ListTodos(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("got %d todos, want 3", len(todos))
	}

	// Equal positions fall back to newest created first.
	want := []int64{ids[2], ids[1], ids[0]}
	for i, todo := range todos {
		if todo.ID != want[i] {
			t.Errorf("todos[%d]: got ID %d, want %d", i, todo.ID, want[i])
		}
	}
}

func TestListTodosEmpty(t *testing.T) {
	s := openTestStore(t)

	todos, err := s.ListTodos(context.Background(), 999)
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if todos == nil {
		t.Error("expected non-nil empty slice")
	}
	if len(todos) != 0 {
		t.Errorf("got %d todos, want 0", len(todos))
	}
}

func TestUpdateTodo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	todo, err := s.CreateTodo(ctx, user.ID, "Buy milk")
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	// Empty patch is rejected
	if _, err := s.UpdateTodo(ctx, todo.ID, user.ID, TodoPatch{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty patch: got %v, want ErrValidation", err)
	}

	// Blank replacement text is rejected
	blank := "   "
	if _, err := s.UpdateTodo(ctx, todo.ID, user.ID, TodoPatch{Text: &blank}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank text: got %v, want ErrValidation", err)
	}

	time.Sleep(2 * time.Millisecond)

	done := true
	text := "Buy oat milk"
	updated, err := s.UpdateTodo(ctx, todo.ID, user.ID, TodoPatch{Text: &text, Completed: &done})
	if err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}
	if updated.Text != "Buy oat milk" {
		t.Errorf("Text: got %q, want \"Buy oat milk\"", updated.Text)
	}
	if !updated.Completed {
		t.Error("expected completed todo")
	}
	if !updated.UpdatedAt.After(todo.UpdatedAt) {
		t.Errorf("UpdatedAt did not advance: %v -> %v", todo.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(todo.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", todo.CreatedAt, updated.CreatedAt)
	}

	// Unknown ID
	if _, err := s.UpdateTodo(ctx, 9999, user.ID, TodoPatch{Completed: &done}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestOwnerScoping(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	bob, err := s.CreateUser(ctx, "bob", "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	todo, err := s.CreateTodo(ctx, alice.ID, "Alice's todo")
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	done := true
	if _, err := s.UpdateTodo(ctx, todo.ID, bob.ID, TodoPatch{Completed: &done}); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner update: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteTodo(ctx, todo.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner delete: got %v, want ErrNotFound", err)
	}

	bobTodos, err := s.ListTodos(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if len(bobTodos) != 0 {
		t.Errorf("bob sees %d todos, want 0", len(bobTodos))
	}

	// Alice's row survived the failed attempts
	aliceTodos, err := s.ListTodos(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if len(aliceTodos) != 1 || aliceTodos[0].Completed {
		t.Errorf("alice's todo was modified: %+v", aliceTodos)
	}
}

func TestDeleteTodo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	todo, err := s.CreateTodo(ctx, user.ID, "Buy milk")
	if err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	if err := s.DeleteTodo(ctx, todo.ID, user.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}

	// Second delete of the same row
	if err := s.DeleteTodo(ctx, todo.ID, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat delete: got %v, want ErrNotFound", err)
	}
}
