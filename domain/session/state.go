// Package session holds the derived client-side session state and the
// route authorization vocabulary built on top of it.
package session

import "github.com/sweetshop/sweetshop/domain/entity"

type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is a snapshot. User is a copy and is non-nil only when authenticated.
type State struct {
	Status Status
	User   *entity.UserProfile
}

func Loading() State {
	return State{Status: StatusLoading}
}

func Anonymous() State {
	return State{Status: StatusAnonymous}
}

func Authenticated(user *entity.UserProfile) State {
	return State{Status: StatusAuthenticated, User: user.Clone()}
}

func (s State) IsLoading() bool {
	return s.Status == StatusLoading
}

func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

func (s State) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.IsAdmin()
}

// Clone returns a snapshot that shares no memory with s.
func (s State) Clone() State {
	if s.User == nil {
		return State{Status: s.Status}
	}
	return State{Status: s.Status, User: s.User.Clone()}
}
