package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotAuthenticated is returned when an operation that needs a session
// is attempted with an empty token slot. This is a programming error in
// the caller, not a user-facing flow.
var ErrNotAuthenticated = errors.New("not authenticated")

// StatusError is a non-2xx response from the remote API.
type StatusError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the server-provided error text, if any.
	Message string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// errorBody is the conventional error envelope of the remote API.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// newStatusError builds a StatusError from a non-2xx response, pulling a
// short message out of the body when one is present.
func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return se
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return se
	}
	switch {
	case body.Message != "":
		se.Message = body.Message
	case body.Error != "":
		se.Message = body.Error
	}
	return se
}

// UserMessage normalizes an API error into a short user-facing message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return "not signed in (run: taskdeck login)"
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden:
			return "session expired or rejected (run: taskdeck login)"
		case se.Status == http.StatusNotFound:
			return "not found"
		case se.Message != "":
			return se.Message
		default:
			return fmt.Sprintf("server error (HTTP %d)", se.Status)
		}
	}

	return err.Error()
}
