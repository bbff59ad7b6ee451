// Package tasks maintains one page of a user's task list with CRUD
// operations and an optimistic completion toggle.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"taskdeck/internal/api"
	"taskdeck/internal/service"
	"taskdeck/internal/token"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 20

// Pagination is derived from the server-reported totals after every
// successful fetch. Read-only from the caller's perspective.
type Pagination struct {
	CurrentPage  int
	PageSize     int
	TotalItems   int
	TotalPages   int
	CanGoBack    bool
	CanGoForward bool
}

// Collection holds one page of the bound user's tasks. The cache always
// corresponds to one page of one pagination cursor and is fully replaced
// on each successful fetch, never merged; the only exception is the
// optimistic completion toggle.
//
// Each Collection owns its cache exclusively; instances are not shared.
type Collection struct {
	mu       sync.Mutex
	svc      service.TaskService
	pageSize int

	identity token.Identity
	bound    bool

	tasks   []service.Task
	pg      Pagination
	loading bool
	errMsg  string

	// Fetches carry a monotonically increasing sequence number; a
	// response older than the last applied one is discarded so a slow
	// page fetch cannot overwrite a newer one.
	nextSeq    uint64
	appliedSeq uint64
}

// NewCollection creates an unbound Collection. pageSize <= 0 selects
// DefaultPageSize.
func NewCollection(svc service.TaskService, pageSize int) *Collection {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Collection{svc: svc, pageSize: pageSize}
}

// Bind attaches an identity and auto-fetches page 1 at the default page
// size. Binding the same identity again is a no-op; a different identity
// rebinds and fetches its first page. Nothing is fetched before Bind.
func (c *Collection) Bind(ctx context.Context, id token.Identity) error {
	c.mu.Lock()
	if c.bound && c.identity.ID == id.ID {
		c.mu.Unlock()
		return nil
	}
	c.identity = id
	c.bound = true
	c.tasks = nil
	c.pg = Pagination{}
	c.appliedSeq = 0
	size := c.pageSize
	c.mu.Unlock()

	return c.FetchPage(ctx, 1, size)
}

// FetchPage replaces the cached page with the requested one. On failure
// the prior cache is left untouched and the error message is recorded.
// The loading flag clears on both paths.
func (c *Collection) FetchPage(ctx context.Context, page, pageSize int) error {
	c.mu.Lock()
	if !c.bound {
		c.mu.Unlock()
		return api.ErrNotAuthenticated
	}
	userID := c.identity.ID
	c.nextSeq++
	seq := c.nextSeq
	c.loading = true
	c.mu.Unlock()

	result, err := c.svc.ListTasks(ctx, userID, page, pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.errMsg = api.UserMessage(err)
		return err
	}
	if seq <= c.appliedSeq {
		slog.Debug("discarding stale page response", "seq", seq, "applied", c.appliedSeq)
		return nil
	}
	c.appliedSeq = seq
	c.tasks = result.Items
	c.pg = derivePagination(result)
	c.errMsg = ""
	return nil
}

// GoToPage fetches the given page at the current page size.
func (c *Collection) GoToPage(ctx context.Context, page int) error {
	_, size := c.cursor()
	return c.FetchPage(ctx, page, size)
}

// Create creates a task, then unconditionally re-fetches the current
// page. No optimistic update; simplicity over latency.
func (c *Collection) Create(ctx context.Context, draft service.TaskDraft) error {
	userID, page, size, err := c.mutationCursor()
	if err != nil {
		return err
	}
	if _, err := c.svc.CreateTask(ctx, userID, draft); err != nil {
		c.recordErr(err)
		return err
	}
	return c.FetchPage(ctx, page, size)
}

// Update replaces a task wholesale, then re-fetches the current page.
func (c *Collection) Update(ctx context.Context, taskID string, draft service.TaskDraft) error {
	userID, page, size, err := c.mutationCursor()
	if err != nil {
		return err
	}
	if _, err := c.svc.ReplaceTask(ctx, userID, taskID, draft); err != nil {
		c.recordErr(err)
		return err
	}
	return c.FetchPage(ctx, page, size)
}

// ToggleComplete flips a cached task's completion optimistically: the
// local copy changes before the PATCH resolves. On failure the current
// page is re-fetched, accepting server truth rather than restoring the
// pre-toggle value.
func (c *Collection) ToggleComplete(ctx context.Context, taskID string) error {
	c.mu.Lock()
	if !c.bound {
		c.mu.Unlock()
		return api.ErrNotAuthenticated
	}
	idx := -1
	for i := range c.tasks {
		if c.tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("task not in current page: %s", taskID)
	}
	target := !c.tasks[idx].IsCompleted
	c.tasks[idx].IsCompleted = target
	userID := c.identity.ID
	page, size := c.pg.CurrentPage, c.pg.PageSize
	c.mu.Unlock()

	if _, err := c.svc.PatchTask(ctx, userID, taskID, service.TaskPatch{IsCompleted: &target}); err != nil {
		// Reconcile first so the fetch doesn't wipe the recorded message.
		if ferr := c.FetchPage(ctx, page, size); ferr != nil {
			slog.Warn("reconcile fetch failed", "err", ferr)
		}
		c.recordErr(err)
		return err
	}
	return nil
}

// Delete deletes a task, then re-fetches the current page.
func (c *Collection) Delete(ctx context.Context, taskID string) error {
	userID, page, size, err := c.mutationCursor()
	if err != nil {
		return err
	}
	if err := c.svc.DeleteTask(ctx, userID, taskID); err != nil {
		c.recordErr(err)
		return err
	}
	return c.FetchPage(ctx, page, size)
}

// Tasks returns a copy of the cached page.
func (c *Collection) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]service.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// TaskAt returns the task at 1-based position n on the cached page.
func (c *Collection) TaskAt(n int) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > len(c.tasks) {
		return service.Task{}, false
	}
	return c.tasks[n-1], true
}

// Pagination returns the derived pagination state.
func (c *Collection) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pg
}

// Loading reports whether a fetch is in flight.
func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last recorded error message, or "".
func (c *Collection) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Dismiss clears the recorded error message.
func (c *Collection) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
}

// cursor returns the current page position, defaulting to page 1 at the
// configured size before the first successful fetch.
func (c *Collection) cursor() (page, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page = c.pg.CurrentPage
	if page < 1 {
		page = 1
	}
	size = c.pg.PageSize
	if size < 1 {
		size = c.pageSize
	}
	return page, size
}

// mutationCursor is cursor plus the bound-identity check for mutations.
func (c *Collection) mutationCursor() (userID string, page, size int, err error) {
	c.mu.Lock()
	if !c.bound {
		c.mu.Unlock()
		return "", 0, 0, api.ErrNotAuthenticated
	}
	userID = c.identity.ID
	c.mu.Unlock()

	page, size = c.cursor()
	return userID, page, size, nil
}

func (c *Collection) recordErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = api.UserMessage(err)
}

func derivePagination(p service.TaskPage) Pagination {
	return Pagination{
		CurrentPage:  p.Page,
		PageSize:     p.PageSize,
		TotalItems:   p.Total,
		TotalPages:   p.TotalPages,
		CanGoBack:    p.Page > 1,
		CanGoForward: p.Page < p.TotalPages,
	}
}
