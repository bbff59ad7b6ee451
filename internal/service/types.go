// Package service defines the backend-agnostic interface for task and auth operations.
package service

import "time"

// Task represents a single task item as returned by the remote API.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// TaskPage is one page of a user's task list plus the server-reported totals.
type TaskPage struct {
	Items      []Task `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}

// TaskDraft is the request body for creating or replacing a task.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TaskPatch is a partial update. Nil fields are omitted from the request
// body and left untouched by the server.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}
