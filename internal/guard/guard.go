// Package guard gates access to session-requiring operations.
package guard

import (
	"context"
	"log/slog"

	"taskdeck/internal/api"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
)

// Decision is the guard's verdict for a protected view.
type Decision int

const (
	// Authorized means the protected operation may proceed.
	Authorized Decision = iota

	// Redirect means navigation to the sign-in view was requested and
	// nothing should be rendered.
	Redirect
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Authorized:
		return "authorized"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Guard decides once per mount whether a protected operation may run.
//
// Fast path: a persisted token, valid or not, authorizes locally without a
// network call. The token is never re-validated here; the server remains
// the actual trust boundary and rejects a bad bearer on the next request.
//
// Slow path: with no persisted token, exactly one liveness call is made to
// the identity endpoint using ambient credentials. Any failure redirects
// to sign-in. No retry, no polling.
type Guard struct {
	store session.Store
	auth  service.AuthService
	nav   session.Navigator

	checked  bool
	decision Decision
}

// New creates a Guard over the given store, auth client, and navigator.
func New(store session.Store, auth service.AuthService, nav session.Navigator) *Guard {
	return &Guard{store: store, auth: auth, nav: nav}
}

// Check returns the guard's decision, computing it on first call and
// returning the cached verdict afterwards.
func (g *Guard) Check(ctx context.Context) Decision {
	if g.checked {
		return g.decision
	}
	g.checked = true
	g.decision = g.check(ctx)
	return g.decision
}

func (g *Guard) check(ctx context.Context) Decision {
	if g.store.Token() != "" {
		return Authorized
	}

	if err := g.auth.Me(ctx); err != nil {
		slog.Debug("identity check failed", "err", api.UserMessage(err))
		g.nav.Navigate(session.DestSignIn, "no session")
		return Redirect
	}
	return Authorized
}
