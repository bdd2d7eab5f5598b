package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/slateworks/ticklist/internal/model"
	"github.com/slateworks/ticklist/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	srv := New(st, "test-secret")
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeJSON(t, rec, &body)
	return body["error"]
}

type authBody struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func registerUser(t *testing.T, srv *Server, username string) authBody {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: got status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var body authBody
	decodeJSON(t, rec, &body)
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	body := registerUser(t, srv, "alice")
	if body.Token == "" {
		t.Error("expected token in register response")
	}
	if body.User.Username != "alice" {
		t.Errorf("Username: got %s, want alice", body.User.Username)
	}

	// Password hash must never appear in the response.
	rec := doRequest(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "email": "bob@example.com", "password": "password123",
	})
	var raw map[string]interface{}
	decodeJSON(t, rec, &raw)
	if user, ok := raw["user"].(map[string]interface{}); ok {
		if _, leaked := user["password_hash"]; leaked {
			t.Error("password hash leaked in register response")
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice")

	tests := []struct {
		name     string
		payload  map[string]string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing fields",
			payload:  map[string]string{"username": "x"},
			wantCode: http.StatusBadRequest,
			wantMsg:  "All fields are required",
		},
		{
			name:     "short password",
			payload:  map[string]string{"username": "carol", "email": "carol@example.com", "password": "12345"},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Password must be at least 6 characters",
		},
		{
			name:     "duplicate username",
			payload:  map[string]string{"username": "alice", "email": "other@example.com", "password": "password123"},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Username or email already exists",
		},
		{
			name:     "duplicate email",
			payload:  map[string]string{"username": "other", "email": "alice@example.com", "password": "password123"},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Username or email already exists",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/auth/register", "", tc.payload)
			if rec.Code != tc.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tc.wantCode)
			}
			if msg := errorMessage(t, rec); msg != tc.wantMsg {
				t.Errorf("error: got %q, want %q", msg, tc.wantMsg)
			}
		})
	}

	// The rejected short-password user must not exist.
	rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "carol", "password": "12345",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login after rejected register: got %d, want 401", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice")

	// By username
	rec := doRequest(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d, body %s", rec.Code, rec.Body.String())
	}
	var body authBody
	decodeJSON(t, rec, &body)
	if body.Token == "" {
		t.Error("expected token in login response")
	}

	// By email
	rec = doRequest(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice@example.com", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login by email: got %d, want 200", rec.Code)
	}

	// Wrong password
	rec = doRequest(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrongpass",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid credentials" {
		t.Errorf("error: got %q, want \"Invalid credentials\"", msg)
	}

	// Unknown user gets the same message as a wrong password
	rec = doRequest(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody", "password": "password123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: got %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid credentials" {
		t.Errorf("error: got %q, want \"Invalid credentials\"", msg)
	}

	// Missing fields
	rec = doRequest(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing password: got %d, want 400", rec.Code)
	}
}

func TestVerify(t *testing.T) {
	srv := newTestServer(t)
	auth := registerUser(t, srv, "alice")

	rec := doRequest(t, srv, http.MethodGet, "/api/auth/verify", auth.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: got %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Valid bool `json:"valid"`
		User  struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeJSON(t, rec, &body)
	if !body.Valid {
		t.Error("expected valid=true")
	}
	if body.User.Username != "alice" {
		t.Errorf("Username: got %s, want alice", body.User.Username)
	}
	if body.User.ID != auth.User.ID {
		t.Errorf("ID: got %d, want %d", body.User.ID, auth.User.ID)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t)

	// Missing token
	rec := doRequest(t, srv, http.MethodGet, "/api/todos", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Access token required" {
		t.Errorf("error: got %q, want \"Access token required\"", msg)
	}

	// Non-bearer scheme
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Basic abc123")
	raw := httptest.NewRecorder()
	srv.Router().ServeHTTP(raw, req)
	if raw.Code != http.StatusUnauthorized {
		t.Errorf("non-bearer scheme: got %d, want 401", raw.Code)
	}

	// Garbage token
	rec = doRequest(t, srv, http.MethodGet, "/api/todos", "not-a-token", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("bad token: got %d, want 403", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid token" {
		t.Errorf("error: got %q, want \"Invalid token\"", msg)
	}
}

func TestTodoCRUD(t *testing.T) {
	srv := newTestServer(t)
	auth := registerUser(t, srv, "alice")

	// Empty list to start
	rec := doRequest(t, srv, http.MethodGet, "/api/todos", auth.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d, body %s", rec.Code, rec.Body.String())
	}
	var todos []model.Todo
	decodeJSON(t, rec, &todos)
	if len(todos) != 0 {
		t.Fatalf("got %d todos, want 0", len(todos))
	}

	// Create
	rec = doRequest(t, srv, http.MethodPost, "/api/todos", auth.Token, map[string]string{"text": "Buy milk"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.Todo
	decodeJSON(t, rec, &created)
	if created.Text != "Buy milk" || created.Completed {
		t.Errorf("created todo: %+v", created)
	}

	// List shows it
	rec = doRequest(t, srv, http.MethodGet, "/api/todos", auth.Token, nil)
	decodeJSON(t, rec, &todos)
	if len(todos) != 1 || todos[0].ID != created.ID {
		t.Fatalf("list after create: %+v", todos)
	}

	// Update completion
	rec = doRequest(t, srv, http.MethodPut, fmt.Sprintf("/api/todos/%d", created.ID), auth.Token,
		map[string]bool{"completed": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d, body %s", rec.Code, rec.Body.String())
	}
	var updateBody struct {
		Todo model.Todo `json:"todo"`
	}
	decodeJSON(t, rec, &updateBody)
	if !updateBody.Todo.Completed {
		t.Error("expected completed todo after update")
	}

	// Delete
	rec = doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/api/todos/%d", created.ID), auth.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d, body %s", rec.Code, rec.Body.String())
	}

	// Repeat delete
	rec = doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/api/todos/%d", created.ID), auth.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete: got %d, want 404", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Todo not found" {
		t.Errorf("error: got %q, want \"Todo not found\"", msg)
	}
}

func TestTodoValidation(t *testing.T) {
	srv := newTestServer(t)
	auth := registerUser(t, srv, "alice")

	// Blank text on create
	rec := doRequest(t, srv, http.MethodPost, "/api/todos", auth.Token, map[string]string{"text": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank create: got %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Todo text is required" {
		t.Errorf("error: got %q, want \"Todo text is required\"", msg)
	}

	// Non-numeric ID
	rec = doRequest(t, srv, http.MethodPut, "/api/todos/abc", auth.Token, map[string]bool{"completed": true})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid todo ID" {
		t.Errorf("error: got %q, want \"Invalid todo ID\"", msg)
	}

	// Empty patch
	rec = doRequest(t, srv, http.MethodPut, "/api/todos/1", auth.Token, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty patch: got %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "No fields to update" {
		t.Errorf("error: got %q, want \"No fields to update\"", msg)
	}
}

func TestTodoOwnerIsolation(t *testing.T) {
	srv := newTestServer(t)
	alice := registerUser(t, srv, "alice")
	bob := registerUser(t, srv, "bob")

	rec := doRequest(t, srv, http.MethodPost, "/api/todos", alice.Token, map[string]string{"text": "Alice's todo"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.Todo
	decodeJSON(t, rec, &created)

	// Bob cannot see, update or delete Alice's todo.
	rec = doRequest(t, srv, http.MethodGet, "/api/todos", bob.Token, nil)
	var bobTodos []model.Todo
	decodeJSON(t, rec, &bobTodos)
	if len(bobTodos) != 0 {
		t.Errorf("bob sees %d todos, want 0", len(bobTodos))
	}

	rec = doRequest(t, srv, http.MethodPut, fmt.Sprintf("/api/todos/%d", created.ID), bob.Token,
		map[string]bool{"completed": true})
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user update: got %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/api/todos/%d", created.ID), bob.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user delete: got %d, want 404", rec.Code)
	}

	// Alice's todo survives untouched.
	rec = doRequest(t, srv, http.MethodGet, "/api/todos", alice.Token, nil)
	var aliceTodos []model.Todo
	decodeJSON(t, rec, &aliceTodos)
	if len(aliceTodos) != 1 || aliceTodos[0].Completed {
		t.Errorf("alice's todos after cross-user attempts: %+v", aliceTodos)
	}
}
