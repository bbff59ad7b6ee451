// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"taskdeck/internal/api"
	"taskdeck/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.RWMutex
	users map[string]string // email -> password
	tasks map[string][]service.Task

	// TokenFor builds the access token returned by SignIn/SignUp for an
	// email. Defaults to a decodable unsigned-style token; set it to
	// return "" to exercise the absent-token pass-through.
	TokenFor func(email string) string

	// Call counters.
	MeCalls      int
	SignOutCalls int

	// Error injection for testing.
	SignInErr    error
	SignUpErr    error
	SignOutErr   error
	MeErr        error
	ListTasksErr error
	GetTaskErr   error
	CreateErr    error
	ReplaceErr   error
	PatchErr     error
	DeleteErr    error

	// ListTasksErrOnce fails exactly one list call, then clears itself.
	ListTasksErrOnce error
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users: make(map[string]string),
		tasks: make(map[string][]service.Task),
	}
}

// AddUser registers an account. The user ID is derived from the email via
// UserID so tests can address the task store directly.
func (f *FakeService) AddUser(email, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
	return UserID(email)
}

// AddTask appends a task to a user's list and returns its ID.
func (f *FakeService) AddTask(userID, title string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.tasks[userID] = append(f.tasks[userID], service.Task{
		ID:     id,
		Title:  title,
		UserID: userID,
	})
	return id
}

// SignIn implements service.AuthService.
func (f *FakeService) SignIn(ctx context.Context, email, password string) (string, error) {
	if f.SignInErr != nil {
		return "", f.SignInErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	stored, ok := f.users[email]
	if !ok || stored != password {
		return "", &api.StatusError{Status: 401, Message: "invalid credentials"}
	}
	return f.tokenFor(email), nil
}

// SignUp implements service.AuthService.
func (f *FakeService) SignUp(ctx context.Context, email, password string) (string, error) {
	if f.SignUpErr != nil {
		return "", f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[email]; exists {
		return "", &api.StatusError{Status: 409, Message: "email already registered"}
	}
	f.users[email] = password
	return f.tokenFor(email), nil
}

// SignOut implements service.AuthService.
func (f *FakeService) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.SignOutCalls++
	f.mu.Unlock()
	return f.SignOutErr
}

// Me implements service.AuthService.
func (f *FakeService) Me(ctx context.Context) error {
	f.mu.Lock()
	f.MeCalls++
	f.mu.Unlock()
	return f.MeErr
}

// ListTasks implements service.TaskService.
func (f *FakeService) ListTasks(ctx context.Context, userID string, page, pageSize int) (service.TaskPage, error) {
	if f.ListTasksErrOnce != nil {
		err := f.ListTasksErrOnce
		f.ListTasksErrOnce = nil
		return service.TaskPage{}, err
	}
	if f.ListTasksErr != nil {
		return service.TaskPage{}, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	all := f.tasks[userID]
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	var items []service.Task
	if start < total {
		end := start + pageSize
		if end > total {
			end = total
		}
		items = make([]service.Task, end-start)
		copy(items, all[start:end])
	}

	return service.TaskPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// GetTask implements service.TaskService.
func (f *FakeService) GetTask(ctx context.Context, userID, taskID string) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks[userID] {
		if t.ID == taskID {
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// CreateTask implements service.TaskService.
func (f *FakeService) CreateTask(ctx context.Context, userID string, draft service.TaskDraft) (service.Task, error) {
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		UserID:      userID,
	}
	f.tasks[userID] = append(f.tasks[userID], t)
	return t, nil
}

// ReplaceTask implements service.TaskService.
func (f *FakeService) ReplaceTask(ctx context.Context, userID, taskID string, draft service.TaskDraft) (service.Task, error) {
	if f.ReplaceErr != nil {
		return service.Task{}, f.ReplaceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[userID] {
		if t.ID == taskID {
			t.Title = draft.Title
			t.Description = draft.Description
			f.tasks[userID][i] = t
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// PatchTask implements service.TaskService.
func (f *FakeService) PatchTask(ctx context.Context, userID, taskID string, patch service.TaskPatch) (service.Task, error) {
	if f.PatchErr != nil {
		return service.Task{}, f.PatchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[userID] {
		if t.ID == taskID {
			if patch.Title != nil {
				t.Title = *patch.Title
			}
			if patch.Description != nil {
				t.Description = *patch.Description
			}
			if patch.IsCompleted != nil {
				t.IsCompleted = *patch.IsCompleted
			}
			f.tasks[userID][i] = t
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.TaskService.
func (f *FakeService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.tasks[userID]
	for i, t := range list {
		if t.ID == taskID {
			f.tasks[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// TasksOf returns a copy of a user's stored tasks, the server-side truth.
func (f *FakeService) TasksOf(userID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks[userID]))
	copy(out, f.tasks[userID])
	return out
}

// SetCompleted flips a stored task's completion directly, bypassing the
// API surface. Used to simulate server-side truth diverging.
func (f *FakeService) SetCompleted(userID, taskID string, done bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[userID] {
		if t.ID == taskID {
			f.tasks[userID][i].IsCompleted = done
			return
		}
	}
}

func (f *FakeService) tokenFor(email string) string {
	if f.TokenFor != nil {
		return f.TokenFor(email)
	}
	return MakeToken(UserID(email), email)
}
