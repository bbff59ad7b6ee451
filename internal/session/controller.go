package session

import (
	"context"
	"log/slog"

	"taskdeck/internal/api"
	"taskdeck/internal/service"
	"taskdeck/internal/token"
)

// State is the session state machine position.
type State int

const (
	// Anonymous means no identity is known.
	Anonymous State = iota

	// Authenticating means a sign-in or sign-up call is in flight.
	Authenticating

	// Authenticated means a decodable token produced an identity.
	Authenticated

	// Failed means the last sign-in or sign-up attempt failed.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is the externally visible session state.
// Invariant: IsAuthenticated is true iff User is non-nil.
type Snapshot struct {
	User            *token.Identity
	IsAuthenticated bool
	Loading         bool
	Err             string
}

// Controller orchestrates the auth client and the token slot. It is the
// sole writer of the Store; every transition goes through it.
type Controller struct {
	auth  service.AuthService
	store Store
	nav   Navigator

	state    State
	identity token.Identity
	failure  string
}

// NewController creates a Controller and derives the initial state
// synchronously from the persisted token: decodable means Authenticated,
// anything else means Anonymous. No network round-trip is made.
func NewController(auth service.AuthService, store Store, nav Navigator) *Controller {
	c := &Controller{auth: auth, store: store, nav: nav, state: Anonymous}
	if id, ok := token.IdentityFromToken(store.Token()); ok {
		c.identity = id
		c.state = Authenticated
	}
	return c
}

// SignIn exchanges credentials for a token and returns it. It never
// returns an error: failures move the machine to Failed with a short
// user-facing message, and the empty string means "not authenticated".
func (c *Controller) SignIn(ctx context.Context, email, password string) string {
	return c.acquire(ctx, email, password, c.auth.SignIn)
}

// SignUp registers an account and signs it in. Same contract as SignIn.
func (c *Controller) SignUp(ctx context.Context, email, password string) string {
	return c.acquire(ctx, email, password, c.auth.SignUp)
}

func (c *Controller) acquire(ctx context.Context, email, password string, call func(context.Context, string, string) (string, error)) string {
	c.state = Authenticating
	c.failure = ""

	tok, err := call(ctx, email, password)
	if err != nil {
		c.state = Failed
		c.failure = api.UserMessage(err)
		c.identity = token.Identity{}
		return ""
	}

	// Persist whatever the server returned, even when no identity can be
	// derived from it. A response that omits the token leaves the slot
	// empty and the session anonymous; that is a pass-through, not a failure.
	if err := c.store.SetToken(tok); err != nil {
		c.state = Failed
		c.failure = err.Error()
		c.identity = token.Identity{}
		return ""
	}

	id, ok := token.IdentityFromToken(tok)
	if !ok {
		c.state = Anonymous
		c.identity = token.Identity{}
		return tok
	}

	c.identity = id
	c.state = Authenticated
	c.nav.Navigate(DestTasks, "signed in")
	return tok
}

// SignOut tears the session down from any state. The remote call is
// best-effort: its failure is logged, never surfaced. The local slot is
// always cleared and navigation to the sign-in view is always requested.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.auth.SignOut(ctx); err != nil {
		slog.Warn("remote sign-out failed", "err", err)
	}
	if err := c.store.Clear(); err != nil {
		slog.Warn("failed to clear token slot", "err", err)
	}
	c.identity = token.Identity{}
	c.failure = ""
	c.state = Anonymous
	c.nav.Navigate(DestSignIn, "signed out")
}

// State returns the current state machine position.
func (c *Controller) State() State {
	return c.state
}

// Identity returns the current identity; ok is false unless Authenticated.
func (c *Controller) Identity() (token.Identity, bool) {
	if c.state != Authenticated {
		return token.Identity{}, false
	}
	return c.identity, true
}

// Snapshot returns the externally visible session state.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Loading: c.state == Authenticating,
		Err:     c.failure,
	}
	if c.state == Authenticated {
		id := c.identity
		snap.User = &id
		snap.IsAuthenticated = true
	}
	return snap
}
