package session

import "log/slog"

// Destination is a navigation target requested by the session layer.
type Destination string

const (
	// DestTasks is the task list view, entered after a successful sign-in.
	DestTasks Destination = "/tasks"

	// DestSignIn is the sign-in view, entered on sign-out or guard redirect.
	DestSignIn Destination = "/signin"
)

// Navigator consumes navigation requests. There is exactly one navigation
// contract: a requested destination plus a reason, so tests can assert on
// requested destinations without a rendering environment.
type Navigator interface {
	Navigate(dest Destination, reason string)
}

// LogNavigator records navigation requests in the debug log. The CLI has
// no views to switch between; the request itself is the observable event.
type LogNavigator struct{}

// Navigate implements Navigator.
func (LogNavigator) Navigate(dest Destination, reason string) {
	slog.Debug("navigate", "dest", string(dest), "reason", reason)
}
