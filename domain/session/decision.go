package session

import (
	"net/url"

	"github.com/sweetshop/sweetshop/domain/entity"
)

const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/"
	FromParam        = "from"
)

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeAllowed
	OutcomeDenied
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeAllowed:
		return "allowed"
	case OutcomeDenied:
		return "denied"
	default:
		return "unknown"
	}
}

type DenyReason string

const (
	ReasonNone            DenyReason = ""
	ReasonUnauthenticated DenyReason = "unauthenticated"
	ReasonForbidden       DenyReason = "forbidden"
)

// Requirement describes what a view needs before it may render.
type Requirement struct {
	Path         string
	RequiredRole entity.Role
	LoginPath    string
	HomePath     string
}

func (r Requirement) loginPath() string {
	if r.LoginPath == "" {
		return DefaultLoginPath
	}
	return r.LoginPath
}

// HomeRedirect is where under-privileged requests are sent.
func (r Requirement) HomeRedirect() string {
	if r.HomePath == "" {
		return DefaultHomePath
	}
	return r.HomePath
}

// LoginRedirect is the login location carrying the requested path for post-login return.
func (r Requirement) LoginRedirect() string {
	if r.Path == "" {
		return r.loginPath()
	}
	q := url.Values{}
	q.Set(FromParam, r.Path)
	return r.loginPath() + "?" + q.Encode()
}

type Decision struct {
	Outcome    Outcome
	Reason     DenyReason
	RedirectTo string
}

func Pending() Decision {
	return Decision{Outcome: OutcomePending}
}

func Allowed() Decision {
	return Decision{Outcome: OutcomeAllowed}
}

func Denied(reason DenyReason, redirectTo string) Decision {
	return Decision{Outcome: OutcomeDenied, Reason: reason, RedirectTo: redirectTo}
}

func (d Decision) IsPending() bool { return d.Outcome == OutcomePending }
func (d Decision) IsAllowed() bool { return d.Outcome == OutcomeAllowed }
func (d Decision) IsDenied() bool  { return d.Outcome == OutcomeDenied }

func (d Decision) String() string {
	if d.Outcome == OutcomeDenied {
		return "denied(" + string(d.Reason) + ")"
	}
	return d.Outcome.String()
}
