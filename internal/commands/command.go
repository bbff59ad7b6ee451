// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/token"
)

// Env carries the collaborators a command may need. Everything is
// injectable so tests can substitute fakes.
type Env struct {
	// Cfg is always provided (config dir, base URL, page size).
	Cfg *config.Config

	// Svc is the remote API surface.
	Svc service.Service

	// Store is the persisted token slot.
	Store session.Store

	// Nav consumes navigation requests from the session layer.
	Nav session.Navigator
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsSession returns true if the command is gated by the route
	// guard. Commands like help, version, login, logout return false.
	NeedsSession() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command and returns its exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// requireIdentity resolves the signed-in identity from the persisted
// token. The guard has already admitted the command; an undecodable token
// still cannot address the per-user task endpoints.
func requireIdentity(env *Env, errOut io.Writer) (token.Identity, int, bool) {
	id, ok := token.IdentityFromToken(env.Store.Token())
	if !ok {
		fmt.Fprintln(errOut, "error: stored session is not usable (run: taskdeck login)")
		return token.Identity{}, exitcode.AuthError, false
	}
	return id, exitcode.Success, true
}

// failf prints a normalized error message and maps the error to an exit code.
func failf(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %s\n", api.UserMessage(err))

	if errors.Is(err, api.ErrNotAuthenticated) {
		return exitcode.AuthError
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return exitcode.AuthError
		case http.StatusNotFound:
			return exitcode.UserError
		}
	}
	return exitcode.BackendError
}
