package tasks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/api"
	"taskdeck/internal/service"
	"taskdeck/internal/tasks"
	"taskdeck/internal/testutil"
	"taskdeck/internal/token"
)

func testIdentity(email string) token.Identity {
	return token.Identity{
		ID:    testutil.UserID(email),
		Email: email,
		Token: testutil.MakeToken(testutil.UserID(email), email),
	}
}

func boundCollection(t *testing.T, svc service.TaskService, pageSize int) (*tasks.Collection, token.Identity) {
	t.Helper()
	id := testIdentity("a@b.example")
	coll := tasks.NewCollection(svc, pageSize)
	require.NoError(t, coll.Bind(context.Background(), id))
	return coll, id
}

func seedTasks(svc *testutil.FakeService, userID string, n int) []string {
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = svc.AddTask(userID, "task "+string(rune('a'+i)))
	}
	return ids
}

func TestCollection_BindAutoFetchesFirstPage(t *testing.T) {
	svc := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	seedTasks(svc, userID, 3)

	coll, _ := boundCollection(t, svc, 20)

	assert.Len(t, coll.Tasks(), 3)
	pg := coll.Pagination()
	assert.Equal(t, 1, pg.CurrentPage)
	assert.Equal(t, 20, pg.PageSize)
	assert.Equal(t, 3, pg.TotalItems)
	assert.False(t, coll.Loading())
}

func TestCollection_RequiresIdentity(t *testing.T) {
	svc := testutil.NewFakeService()
	coll := tasks.NewCollection(svc, 20)
	ctx := context.Background()

	assert.ErrorIs(t, coll.FetchPage(ctx, 1, 20), api.ErrNotAuthenticated)
	assert.ErrorIs(t, coll.Create(ctx, service.TaskDraft{Title: "x"}), api.ErrNotAuthenticated)
	assert.ErrorIs(t, coll.Delete(ctx, "id"), api.ErrNotAuthenticated)
	assert.ErrorIs(t, coll.ToggleComplete(ctx, "id"), api.ErrNotAuthenticated)
}

func TestCollection_RebindRules(t *testing.T) {
	svc := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	seedTasks(svc, userID, 1)

	coll, id := boundCollection(t, svc, 20)
	svc.AddTask(userID, "added later")

	// Same identity: no refetch.
	require.NoError(t, coll.Bind(context.Background(), id))
	assert.Len(t, coll.Tasks(), 1)

	// Different identity: rebinds and fetches its first page.
	other := testIdentity("other@b.example")
	svc.AddTask(other.ID, "theirs")
	require.NoError(t, coll.Bind(context.Background(), other))
	got := coll.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "theirs", got[0].Title)
}

func TestCollection_FetchIdempotence(t *testing.T) {
	svc := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	seedTasks(svc, userID, 5)

	coll, _ := boundCollection(t, svc, 20)
	ctx := context.Background()

	require.NoError(t, coll.FetchPage(ctx, 1, 20))
	first, firstPg := coll.Tasks(), coll.Pagination()

	require.NoError(t, coll.FetchPage(ctx, 1, 20))
	assert.Equal(t, first, coll.Tasks())
	assert.Equal(t, firstPg, coll.Pagination())
}

func TestCollection_PaginationBoundaries(t *testing.T) {
	svc := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	seedTasks(svc, userID, 5)

	coll, _ := boundCollection(t, svc, 2)
	ctx := context.Background()

	pg := coll.Pagination()
	assert.False(t, pg.CanGoBack)
	assert.True(t, pg.CanGoForward)
	assert.Equal(t, 3, pg.TotalPages)

	require.NoError(t, coll.GoToPage(ctx, 2))
	pg = coll.Pagination()
	assert.True(t, pg.CanGoBack)
	assert.True(t, pg.CanGoForward)

	require.NoError(t, coll.GoToPage(ctx, 3))
	pg = coll.Pagination()
	assert.True(t, pg.CanGoBack)
	assert.False(t, pg.CanGoForward)
}

func TestCollection_SinglePageBoundary(t *testing.T) {
	svc := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	seedTasks(svc, userID, 3)

	coll, _ := boundCollection(t, svc, 20)

	pg := coll.Pagination()
	assert.Equal(t, 1, pg.TotalPages)
	assert.False(t, pg.CanGoBack)
	assert.False(t, pg.CanGoForward)
}

func TestCollection_FetchFailurePreservesCache(t *testing.T) {
	svc := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	seedTasks(svc, userID, 2)

	coll, _ := boundCollection(t, svc, 20)
	before := coll.Tasks()

	svc.ListTasksErrOnce = &api.StatusError{Status: 500}
	err := coll.FetchPage(context.Background(), 2, 20)
	require.Error(t, err)

	assert.Equal(t, before, coll.Tasks(), "prior cache untouched on failure")
	assert.NotEmpty(t, coll.Err())
	assert.False(t, coll.Loading(), "loading clears on the failure path")

	// A later successful fetch clears the message.
	require.NoError(t, coll.FetchPage(context.Background(), 1, 20))
	assert.Empty(t, coll.Err())
}

func TestCollection_Dismiss(t *testing.T) {
	svc := testutil.NewFakeService()
	coll, _ := boundCollection(t, svc, 20)

	svc.ListTasksErrOnce = &api.StatusError{Status: 500}
	_ = coll.FetchPage(context.Background(), 1, 20)
	require.NotEmpty(t, coll.Err())

	coll.Dismiss()
	assert.Empty(t, coll.Err())
}

func TestCollection_CreateRefetches(t *testing.T) {
	svc := testutil.NewFakeService()
	coll, _ := boundCollection(t, svc, 20)

	require.NoError(t, coll.Create(context.Background(), service.TaskDraft{Title: "new task"}))

	got := coll.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "new task", got[0].Title)
}

func TestCollection_UpdateRefetches(t *testing.T) {
	svc := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	ids := seedTasks(svc, userID, 1)

	coll, _ := boundCollection(t, svc, 20)

	require.NoError(t, coll.Update(context.Background(), ids[0], service.TaskDraft{Title: "renamed"}))
	assert.Equal(t, "renamed", coll.Tasks()[0].Title)
}

func TestCollection_DeleteRefetches(t *testing.T) {
	svc := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	ids := seedTasks(svc, userID, 2)

	coll, _ := boundCollection(t, svc, 20)

	require.NoError(t, coll.Delete(context.Background(), ids[0]))
	got := coll.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, ids[1], got[0].ID)
}

// patchGateService blocks PatchTask so the test can observe the cache
// while the request is still "in flight".
type patchGateService struct {
	*testutil.FakeService
	entered chan struct{}
	release chan struct{}
	fail    bool
}

func (s *patchGateService) PatchTask(ctx context.Context, userID, taskID string, patch service.TaskPatch) (service.Task, error) {
	close(s.entered)
	<-s.release
	if s.fail {
		return service.Task{}, &api.StatusError{Status: 500}
	}
	return s.FakeService.PatchTask(ctx, userID, taskID, patch)
}

func TestCollection_ToggleIsOptimistic(t *testing.T) {
	fake := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	ids := seedTasks(fake, userID, 1)

	svc := &patchGateService{
		FakeService: fake,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	coll, _ := boundCollection(t, svc, 20)
	require.False(t, coll.Tasks()[0].IsCompleted)

	done := make(chan error, 1)
	go func() {
		done <- coll.ToggleComplete(context.Background(), ids[0])
	}()

	// The cached copy flips before the PATCH resolves.
	<-svc.entered
	assert.True(t, coll.Tasks()[0].IsCompleted)

	close(svc.release)
	require.NoError(t, <-done)
	assert.True(t, coll.Tasks()[0].IsCompleted)
	assert.True(t, fake.TasksOf(userID)[0].IsCompleted)
}

func TestCollection_ToggleFailureReconciles(t *testing.T) {
	fake := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	ids := seedTasks(fake, userID, 1)

	svc := &patchGateService{
		FakeService: fake,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
		fail:        true,
	}
	coll, _ := boundCollection(t, svc, 20)

	done := make(chan error, 1)
	go func() {
		done <- coll.ToggleComplete(context.Background(), ids[0])
	}()

	<-svc.entered
	assert.True(t, coll.Tasks()[0].IsCompleted, "optimistic flip applied")

	close(svc.release)
	require.Error(t, <-done)

	// Reconciliation re-fetches server truth, which never changed.
	assert.False(t, coll.Tasks()[0].IsCompleted)
	assert.NotEmpty(t, coll.Err())
}

func TestCollection_ToggleUnknownTask(t *testing.T) {
	svc := testutil.NewFakeService()
	coll, _ := boundCollection(t, svc, 20)

	err := coll.ToggleComplete(context.Background(), "missing")
	assert.ErrorContains(t, err, "not in current page")
}

// gatedListService holds back list responses for selected pages so the
// test can force out-of-order completion.
type gatedListService struct {
	*testutil.FakeService
	gates   map[int]chan struct{}
	started chan int
}

func (s *gatedListService) ListTasks(ctx context.Context, userID string, page, pageSize int) (service.TaskPage, error) {
	if s.started != nil {
		s.started <- page
	}
	if gate, ok := s.gates[page]; ok {
		<-gate
	}
	return s.FakeService.ListTasks(ctx, userID, page, pageSize)
}

func TestCollection_StaleResponseDiscarded(t *testing.T) {
	fake := testutil.NewFakeService()
	userID := testutil.UserID("a@b.example")
	seedTasks(fake, userID, 4)

	svc := &gatedListService{FakeService: fake, gates: map[int]chan struct{}{}}
	coll, _ := boundCollection(t, svc, 2)

	// A slow page-1 fetch is issued first, then a fast page-2 fetch
	// completes while it is still in flight.
	gate := make(chan struct{})
	svc.gates[1] = gate
	svc.started = make(chan int, 2)

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- coll.FetchPage(context.Background(), 1, 2)
	}()
	require.Equal(t, 1, <-svc.started)

	require.NoError(t, coll.FetchPage(context.Background(), 2, 2))
	require.Equal(t, 2, <-svc.started)
	require.Equal(t, 2, coll.Pagination().CurrentPage)

	// The page-1 response arrives late and must not overwrite page 2.
	close(gate)
	require.NoError(t, <-slowDone)
	assert.Equal(t, 2, coll.Pagination().CurrentPage)
	got := coll.Tasks()
	require.Len(t, got, 2)
	assert.Equal(t, "task c", got[0].Title)
}
