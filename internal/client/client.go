// Package client talks to the ticklist API server and keeps the session
// token on disk between runs.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/slateworks/ticklist/internal/config"
	"github.com/slateworks/ticklist/internal/model"
)

// Session is the durable client-side login state
type Session struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
}

// Client is the API client
type Client struct {
	session     *Session
	sessionPath string
	httpClient  *http.Client
}

// New creates a client with the session stored at ~/.ticklist/session.json
func New() (*Client, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return NewAt(filepath.Join(dir, "session.json")), nil
}

// NewAt creates a client with the session stored at sessionPath
func NewAt(sessionPath string) *Client {
	c := &Client{
		sessionPath: sessionPath,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	c.loadSession()
	return c
}

func (c *Client) loadSession() {
	data, err := os.ReadFile(c.sessionPath)
	if err != nil {
		c.session = &Session{ServerURL: "http://localhost:3000"}
		return
	}

	c.session = &Session{}
	if err := json.Unmarshal(data, c.session); err != nil {
		c.session = &Session{ServerURL: "http://localhost:3000"}
	}
	if c.session.ServerURL == "" {
		c.session.ServerURL = "http://localhost:3000"
	}
}

func (c *Client) saveSession() error {
	dir := filepath.Dir(c.sessionPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.session, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.sessionPath, data, 0600)
}

// SetServer sets the API server URL
func (c *Client) SetServer(url string) error {
	c.session.ServerURL = url
	return c.saveSession()
}

// IsLoggedIn returns true if a session token is stored
func (c *Client) IsLoggedIn() bool {
	return c.session.Token != ""
}

// Username returns the logged-in username, if any
func (c *Client) Username() string {
	return c.session.Username
}

// ServerURL returns the configured API server URL
func (c *Client) ServerURL() string {
	return c.session.ServerURL
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// apiError decodes the server's {"error": message} body
func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return fmt.Errorf("%s", body.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

func (c *Client) postJSON(path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(
		c.session.ServerURL+path,
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return resp, nil
}

func (c *Client) authedRequest(method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.session.ServerURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.session.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return resp, nil
}

// Register creates a new account and stores the returned session
func (c *Client) Register(username, email, password string) (model.User, error) {
	resp, err := c.postJSON("/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return model.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return model.User{}, apiError(resp)
	}

	var result authResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.User{}, err
	}

	c.session.Token = result.Token
	c.session.UserID = result.User.ID
	c.session.Username = result.User.Username
	return result.User, c.saveSession()
}

// Login authenticates with username (or email) and password
func (c *Client) Login(username, password string) (model.User, error) {
	resp, err := c.postJSON("/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return model.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.User{}, apiError(resp)
	}

	var result authResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.User{}, err
	}

	c.session.Token = result.Token
	c.session.UserID = result.User.ID
	c.session.Username = result.User.Username
	return result.User, c.saveSession()
}

// Verify checks the stored token against the server. A rejected token is
// discarded so the next run starts logged out.
func (c *Client) Verify() (model.User, error) {
	resp, err := c.authedRequest(http.MethodGet, "/api/auth/verify", nil)
	if err != nil {
		return model.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		apiErr := apiError(resp)
		if err := c.Logout(); err != nil {
			return model.User{}, err
		}
		return model.User{}, apiErr
	}
	if resp.StatusCode != http.StatusOK {
		return model.User{}, apiError(resp)
	}

	var result struct {
		Valid bool       `json:"valid"`
		User  model.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.User{}, err
	}

	c.session.UserID = result.User.ID
	c.session.Username = result.User.Username
	return result.User, c.saveSession()
}

// Logout clears the stored session
func (c *Client) Logout() error {
	c.session.Token = ""
	c.session.UserID = 0
	c.session.Username = ""
	return c.saveSession()
}

// ListTodos fetches the caller's todos
func (c *Client) ListTodos() ([]model.Todo, error) {
	resp, err := c.authedRequest(http.MethodGet, "/api/todos", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var todos []model.Todo
	if err := json.NewDecoder(resp.Body).Decode(&todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo creates a todo and returns the server's authoritative row
func (c *Client) CreateTodo(text string) (model.Todo, error) {
	resp, err := c.authedRequest(http.MethodPost, "/api/todos", map[string]string{"text": text})
	if err != nil {
		return model.Todo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return model.Todo{}, apiError(resp)
	}

	var todo model.Todo
	if err := json.NewDecoder(resp.Body).Decode(&todo); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// UpdateTodo patches a todo's text and/or completed flag
func (c *Client) UpdateTodo(id int64, text *string, completed *bool) (model.Todo, error) {
	payload := map[string]interface{}{}
	if text != nil {
		payload["text"] = *text
	}
	if completed != nil {
		payload["completed"] = *completed
	}

	resp, err := c.authedRequest(http.MethodPut, fmt.Sprintf("/api/todos/%d", id), payload)
	if err != nil {
		return model.Todo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Todo{}, apiError(resp)
	}

	var result struct {
		Todo model.Todo `json:"todo"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.Todo{}, err
	}
	return result.Todo, nil
}

// DeleteTodo deletes a todo
func (c *Client) DeleteTodo(id int64) error {
	resp, err := c.authedRequest(http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}
