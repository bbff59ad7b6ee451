package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/testutil"
)

func newClient(t *testing.T, handler http.Handler, tok string) (*api.Client, *testutil.MemStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := testutil.NewMemStore(tok)
	cfg := &config.Config{BaseURL: srv.URL, PageSize: config.DefaultPageSize}
	return api.New(cfg, store), store
}

func TestClient_SignIn(t *testing.T) {
	var gotBody map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/signin", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"access_token":"tok-123"}`)
	})
	client, _ := newClient(t, handler, "")

	tok, err := client.SignIn(context.Background(), "a@b.example", "hunter22hunter")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.Equal(t, map[string]string{
		"email":    "a@b.example",
		"password": "hunter22hunter",
	}, gotBody)
}

func TestClient_SignInTokenOptional(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	client, _ := newClient(t, handler, "")

	tok, err := client.SignIn(context.Background(), "a@b.example", "hunter22hunter")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestClient_SignInRejected(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid credentials"}`)
	})
	client, _ := newClient(t, handler, "")

	_, err := client.SignIn(context.Background(), "a@b.example", "wrong")
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, "invalid credentials", se.Message)
}

func TestClient_TaskRequestsCarryBearer(t *testing.T) {
	tok := testutil.MakeToken("u1", "a@b.example")
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/users/u1/tasks", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		fmt.Fprint(w, `{"items":[],"page":2,"page_size":10,"total":0,"total_pages":1}`)
	})
	client, _ := newClient(t, handler, tok)

	_, err := client.ListTasks(context.Background(), "u1", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+tok, gotAuth)
}

func TestClient_TaskRequestWithoutToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})
	client, _ := newClient(t, handler, "")

	_, err := client.ListTasks(context.Background(), "u1", 1, 20)
	assert.ErrorIs(t, err, api.ErrNotAuthenticated)
}

func TestClient_SignInPicksUpNewToken(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/signin":
			fmt.Fprint(w, `{"access_token":"fresh-token"}`)
		default:
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{"items":[],"page":1,"page_size":20,"total":0,"total_pages":1}`)
		}
	})
	client, store := newClient(t, handler, "")

	tok, err := client.SignIn(context.Background(), "a@b.example", "hunter22hunter")
	require.NoError(t, err)
	require.NoError(t, store.SetToken(tok))

	_, err = client.ListTasks(context.Background(), "u1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", gotAuth, "token source re-reads the slot")
}

func TestClient_TaskCRUD(t *testing.T) {
	tok := testutil.MakeToken("u1", "a@b.example")
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/u1/tasks", func(w http.ResponseWriter, r *http.Request) {
		var draft service.TaskDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		json.NewEncoder(w).Encode(service.Task{ID: "t1", Title: draft.Title, UserID: "u1"})
	})
	mux.HandleFunc("GET /users/u1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.Task{ID: "t1", Title: "one", UserID: "u1"})
	})
	mux.HandleFunc("PUT /users/u1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.Task{ID: "t1", Title: "replaced", UserID: "u1"})
	})
	mux.HandleFunc("PATCH /users/u1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		var patch service.TaskPatch
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		require.NotNil(t, patch.IsCompleted)
		json.NewEncoder(w).Encode(service.Task{ID: "t1", IsCompleted: *patch.IsCompleted, UserID: "u1"})
	})
	mux.HandleFunc("DELETE /users/u1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := newClient(t, mux, tok)
	ctx := context.Background()

	created, err := client.CreateTask(ctx, "u1", service.TaskDraft{Title: "one"})
	require.NoError(t, err)
	assert.Equal(t, "t1", created.ID)

	got, err := client.GetTask(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Title)

	replaced, err := client.ReplaceTask(ctx, "u1", "t1", service.TaskDraft{Title: "replaced"})
	require.NoError(t, err)
	assert.Equal(t, "replaced", replaced.Title)

	done := true
	patched, err := client.PatchTask(ctx, "u1", "t1", service.TaskPatch{IsCompleted: &done})
	require.NoError(t, err)
	assert.True(t, patched.IsCompleted)

	assert.NoError(t, client.DeleteTask(ctx, "u1", "t1"))
}

func TestClient_MeStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		wantOK bool
	}{
		{"accepted", http.StatusOK, true},
		{"rejected", http.StatusUnauthorized, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/auth/me", r.URL.Path)
				w.WriteHeader(tc.status)
			})
			client, _ := newClient(t, handler, "")

			err := client.Me(context.Background())
			if tc.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	store := testutil.NewMemStore("")
	cfg := &config.Config{BaseURL: "http://127.0.0.1:1", PageSize: 20}
	client := api.New(cfg, store)

	err := client.Me(context.Background())
	require.Error(t, err)

	var se *api.StatusError
	assert.False(t, errors.As(err, &se), "network failure is not a status error")
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"timeout", fmt.Errorf("request failed: %w", context.DeadlineExceeded), "request timed out"},
		{"not authenticated", api.ErrNotAuthenticated, "not signed in (run: taskdeck login)"},
		{"unauthorized", &api.StatusError{Status: 401}, "session expired or rejected (run: taskdeck login)"},
		{"forbidden", &api.StatusError{Status: 403}, "session expired or rejected (run: taskdeck login)"},
		{"not found", &api.StatusError{Status: 404}, "not found"},
		{"server message", &api.StatusError{Status: 422, Message: "title too long"}, "title too long"},
		{"bare status", &api.StatusError{Status: 500}, "server error (HTTP 500)"},
		{"plain error", errors.New("boom"), "boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, api.UserMessage(tc.err))
		})
	}
}
