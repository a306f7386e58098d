// Package guard decides whether a navigation target is reachable in the
// current session state.
package guard

import (
	"context"
	"fmt"

	"github.com/joss/flashmart/internal/kvstore"
	"github.com/joss/flashmart/internal/session"
	"github.com/joss/flashmart/internal/transport"
)

// Decision is the outcome of a navigation check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect:login"
	case RedirectToHome:
		return "redirect:home"
	}
	return "unknown"
}

// Route is a navigation target with its two independent access flags.
// RequiresAuth and GuestOnly must never both be set on one route.
type Route struct {
	Name         string
	RequiresAuth bool
	GuestOnly    bool
}

// Decide is the pure decision function: auth-required routes redirect
// anonymous users to login, guest-only routes redirect authenticated
// users home, everything else is allowed.
func Decide(r Route, authenticated bool) Decision {
	if r.RequiresAuth && !authenticated {
		return RedirectToLogin
	}
	if r.GuestOnly && authenticated {
		return RedirectToHome
	}
	return Allow
}

// Table is a validated set of routes.
type Table struct {
	routes map[string]Route
}

// NewTable validates the route set. A route flagged both auth-required
// and guest-only is a configuration error, not a runtime case.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		if r.RequiresAuth && r.GuestOnly {
			return nil, fmt.Errorf("route %q is both auth-required and guest-only", r.Name)
		}
		t.routes[r.Name] = r
	}
	return t, nil
}

// Lookup returns the named route.
func (t *Table) Lookup(name string) (Route, bool) {
	r, ok := t.routes[name]
	return r, ok
}

// DefaultRoutes is the storefront's navigation map.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", RequiresAuth: true},
		{Name: "about", RequiresAuth: true},
		{Name: "cart", RequiresAuth: true},
		{Name: "orders", RequiresAuth: true},
		{Name: "seller", RequiresAuth: true},
		{Name: "login", GuestOnly: true},
		{Name: "register", GuestOnly: true},
		{Name: "forgot-password", GuestOnly: true},
		{Name: "verify-otp", GuestOnly: true},
	}
}

// Guard binds the decision function to live session state.
type Guard struct {
	session *session.Store
	kv      *kvstore.Store
}

func New(s *session.Store, kv *kvstore.Store) *Guard {
	return &Guard{session: s, kv: kv}
}

// Check runs the decision for a route. Authentication consults both the
// in-memory session and the persisted token, since a check may run before
// the session store has hydrated.
func (g *Guard) Check(ctx context.Context, r Route) Decision {
	authed := g.session.IsAuthenticated() || g.hasPersistedToken(ctx)
	return Decide(r, authed)
}

func (g *Guard) hasPersistedToken(ctx context.Context) bool {
	token, err := g.kv.Get(ctx, transport.KeyToken)
	return err == nil && token != ""
}
