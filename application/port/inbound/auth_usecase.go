package inbound

import (
	"context"

	"github.com/sweetshop/sweetshop/domain/session"
	"github.com/sweetshop/sweetshop/domain/valueobject"
)

// SessionManager owns the client-side session. Views read State and call
// Login/Register/Logout; they never touch storage.
type SessionManager interface {
	Initialize(ctx context.Context)
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, reg valueobject.Registration) error
	Logout(ctx context.Context, redirectTo string)
	State() session.State
	Subscribe(fn func(session.State)) (unsubscribe func())
}

type RouteGuard interface {
	Check(state session.State, req session.Requirement) session.Decision
}
