package usecase

import (
	"sync"

	"github.com/sweetshop/sweetshop/application/port/inbound"
	"github.com/sweetshop/sweetshop/domain/session"
)

// RouteGuard decides whether a view may render for a session state.
//
// Decisions are a pure function of (state, requirement). The verified latch
// is transient view-local state and never feeds back into a decision.
type RouteGuard struct {
	mu       sync.Mutex
	path     string
	verified bool
}

var _ inbound.RouteGuard = (*RouteGuard)(nil)

func NewRouteGuard() *RouteGuard {
	return &RouteGuard{}
}

func (g *RouteGuard) Check(state session.State, req session.Requirement) session.Decision {
	decision := Decide(state, req)

	g.mu.Lock()
	g.path = req.Path
	g.verified = decision.IsAllowed()
	g.mu.Unlock()

	return decision
}

// Verified reports whether the most recent check for the current path was allowed.
func (g *RouteGuard) Verified() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verified
}

// VerifiedFor is Verified narrowed to path, so a latch left by another view
// never counts.
func (g *RouteGuard) VerifiedFor(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verified && g.path == path
}

// Decide is the stateless guard rule.
func Decide(state session.State, req session.Requirement) session.Decision {
	switch {
	case state.IsLoading():
		return session.Pending()
	case !state.IsAuthenticated():
		return session.Denied(session.ReasonUnauthenticated, req.LoginRedirect())
	case req.RequiredRole != "" && !state.User.HasRole(req.RequiredRole):
		return session.Denied(session.ReasonForbidden, req.HomeRedirect())
	default:
		return session.Allowed()
	}
}
