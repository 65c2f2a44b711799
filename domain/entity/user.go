package entity

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrMissingUserID = errors.New("user id is required")
	ErrUnknownRole   = errors.New("unknown user role")
)

// UserProfile mirrors the authenticated identity returned by the API.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func NewUserProfile(id, name, email string, role Role) *UserProfile {
	return &UserProfile{
		ID:    id,
		Name:  name,
		Email: email,
		Role:  role,
	}
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

// Validate checks the structural shape of a profile, not its authenticity.
func (u *UserProfile) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrMissingUserID
	}
	if !u.Role.Valid() {
		return ErrUnknownRole
	}
	return nil
}

func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *UserProfile) HasRole(role Role) bool {
	return u != nil && u.Role == role
}

// Clone returns a copy so callers can't mutate shared session state.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
