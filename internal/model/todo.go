package model

import "time"

// Todo represents a single todo item owned by a user
type Todo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTodo creates a todo with defaults applied
func NewTodo(ownerID int64, text string) Todo {
	now := time.Now().UTC()
	return Todo{
		UserID:    ownerID,
		Text:      text,
		Completed: false,
		Position:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
