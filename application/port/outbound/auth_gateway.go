package outbound

import (
	"context"

	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/domain/valueobject"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     entity.Role `json:"role,omitempty"`
}

// AuthResult is a normalized login/register response.
type AuthResult struct {
	Tokens valueobject.TokenPair
	User   entity.UserProfile
}

type AuthGateway interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
}
