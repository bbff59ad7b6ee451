// Package api implements the service interfaces against the remote REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
)

// APITimeout is the timeout for a single API call.
const APITimeout = 10 * time.Second

// TokenReader exposes the current bearer token. The session store
// satisfies it; the client only ever reads the slot.
type TokenReader interface {
	Token() string
}

// Client implements service.Service against the configured base URL.
//
// Auth endpoints go through a plain client with a cookie jar (credentials
// are always included); task endpoints go through an oauth2 transport that
// re-reads the token slot on every request, so a sign-in or sign-out is
// picked up without rebuilding the client.
type Client struct {
	baseURL string
	plain   *http.Client
	authed  *http.Client
}

var _ service.Service = (*Client)(nil)

// storeTokenSource adapts the token slot to oauth2.TokenSource.
type storeTokenSource struct {
	tokens TokenReader
}

// Token implements oauth2.TokenSource. An empty slot fails the request
// before it is issued.
func (s storeTokenSource) Token() (*oauth2.Token, error) {
	tok := s.tokens.Token()
	if tok == "" {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// New creates a Client for cfg's base URL reading bearer tokens from tokens.
func New(cfg *config.Config, tokens TokenReader) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: cfg.BaseURL,
		plain:   &http.Client{Jar: jar},
		authed: &http.Client{
			Jar:       jar,
			Transport: &oauth2.Transport{Source: storeTokenSource{tokens: tokens}},
		},
	}
}

// credentials is the request body for signin and signup.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is the success body of the auth endpoints. The token
// field is optional; an absent token is a valid response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// SignIn implements service.AuthService.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, c.plain, http.MethodPost, "/auth/signin", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// SignUp implements service.AuthService.
func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, c.plain, http.MethodPost, "/auth/signup", credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// SignOut implements service.AuthService.
func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, c.plain, http.MethodPost, "/auth/signout", nil, nil)
}

// Me implements service.AuthService. It relies on ambient cookie
// credentials; a nil error means the server accepted them.
func (c *Client) Me(ctx context.Context) error {
	return c.do(ctx, c.plain, http.MethodGet, "/auth/me", nil, nil)
}

// ListTasks implements service.TaskService.
func (c *Client) ListTasks(ctx context.Context, userID string, page, pageSize int) (service.TaskPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var result service.TaskPage
	err := c.do(ctx, c.authed, http.MethodGet, c.tasksPath(userID)+"?"+q.Encode(), nil, &result)
	if err != nil {
		return service.TaskPage{}, err
	}
	return result, nil
}

// GetTask implements service.TaskService.
func (c *Client) GetTask(ctx context.Context, userID, taskID string) (service.Task, error) {
	var result service.Task
	err := c.do(ctx, c.authed, http.MethodGet, c.taskPath(userID, taskID), nil, &result)
	if err != nil {
		return service.Task{}, err
	}
	return result, nil
}

// CreateTask implements service.TaskService.
func (c *Client) CreateTask(ctx context.Context, userID string, draft service.TaskDraft) (service.Task, error) {
	var result service.Task
	err := c.do(ctx, c.authed, http.MethodPost, c.tasksPath(userID), draft, &result)
	if err != nil {
		return service.Task{}, err
	}
	return result, nil
}

// ReplaceTask implements service.TaskService.
func (c *Client) ReplaceTask(ctx context.Context, userID, taskID string, draft service.TaskDraft) (service.Task, error) {
	var result service.Task
	err := c.do(ctx, c.authed, http.MethodPut, c.taskPath(userID, taskID), draft, &result)
	if err != nil {
		return service.Task{}, err
	}
	return result, nil
}

// PatchTask implements service.TaskService.
func (c *Client) PatchTask(ctx context.Context, userID, taskID string, patch service.TaskPatch) (service.Task, error) {
	var result service.Task
	err := c.do(ctx, c.authed, http.MethodPatch, c.taskPath(userID, taskID), patch, &result)
	if err != nil {
		return service.Task{}, err
	}
	return result, nil
}

// DeleteTask implements service.TaskService.
func (c *Client) DeleteTask(ctx context.Context, userID, taskID string) error {
	return c.do(ctx, c.authed, http.MethodDelete, c.taskPath(userID, taskID), nil, nil)
}

func (c *Client) tasksPath(userID string) string {
	return "/users/" + url.PathEscape(userID) + "/tasks"
}

func (c *Client) taskPath(userID, taskID string) string {
	return c.tasksPath(userID) + "/" + url.PathEscape(taskID)
}

// do issues one JSON request with the per-call timeout and decodes a 2xx
// body into dst when dst is non-nil. Non-2xx responses become StatusError.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("api request", "method", method, "path", path)

	resp, err := hc.Do(req)
	if err != nil {
		// Unwrap the url.Error so context.DeadlineExceeded stays matchable.
		return fmt.Errorf("request failed: %w", unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp)
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("invalid response body: %w", err)
		}
	}
	return nil
}

// unwrapURLError peels the *url.Error wrapper the http client adds.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
