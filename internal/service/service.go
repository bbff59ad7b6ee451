// Package service defines the backend-agnostic interface for task and auth operations.
package service

import "context"

// AuthService covers the /auth endpoints of the remote API.
// Commands never build HTTP requests directly.
type AuthService interface {
	// SignIn exchanges credentials for an access token.
	// The token may be empty if the server response omits one.
	SignIn(ctx context.Context, email, password string) (string, error)

	// SignUp registers a new account and returns its access token.
	SignUp(ctx context.Context, email, password string) (string, error)

	// SignOut invalidates the server-side session. Best-effort; callers
	// clear local state regardless of the result.
	SignOut(ctx context.Context) error

	// Me performs a liveness check against the identity endpoint.
	// A nil error means the ambient credentials are accepted.
	Me(ctx context.Context) error
}

// TaskService covers the per-user task CRUD endpoints.
type TaskService interface {
	// ListTasks returns one page of the user's tasks.
	// page is 1-based; pageSize bounds the page length.
	ListTasks(ctx context.Context, userID string, page, pageSize int) (TaskPage, error)

	// GetTask fetches a single task.
	GetTask(ctx context.Context, userID, taskID string) (Task, error)

	// CreateTask creates a new task for the user.
	CreateTask(ctx context.Context, userID string, draft TaskDraft) (Task, error)

	// ReplaceTask overwrites a task wholesale.
	ReplaceTask(ctx context.Context, userID, taskID string, draft TaskDraft) (Task, error)

	// PatchTask applies a partial update. Used for the completion toggle.
	PatchTask(ctx context.Context, userID, taskID string, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// Service is the full remote API surface as seen by commands.
type Service interface {
	AuthService
	TaskService
}
