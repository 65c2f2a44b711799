package restapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/domain/entity"
	domainerror "github.com/sweetshop/sweetshop/domain/error"
	"github.com/sweetshop/sweetshop/domain/valueobject"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
)

// authResponse is the only accepted login/register shape. There is no
// fallback to other token field names.
type authResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         *userPayload `json:"user"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthGateway struct {
	api API
}

var _ outbound.AuthGateway = (*AuthGateway)(nil)

func NewAuthGateway(api API) *AuthGateway {
	return &AuthGateway{api: api}
}

func (g *AuthGateway) Login(ctx context.Context, req outbound.LoginRequest) (*outbound.AuthResult, error) {
	var resp authResponse
	if err := g.api.Post(ctx, loginPath, req, &resp); err != nil {
		return nil, err
	}
	return normalize(loginPath, resp)
}

func (g *AuthGateway) Register(ctx context.Context, req outbound.RegisterRequest) (*outbound.AuthResult, error) {
	var resp authResponse
	if err := g.api.Post(ctx, registerPath, req, &resp); err != nil {
		return nil, err
	}
	return normalize(registerPath, resp)
}

func normalize(path string, resp authResponse) (*outbound.AuthResult, error) {
	if strings.TrimSpace(resp.AccessToken) == "" {
		return nil, domainerror.ErrMalformedResponse(path+": missing access_token", nil)
	}
	if resp.TokenType != "" && !strings.EqualFold(resp.TokenType, "bearer") {
		return nil, domainerror.ErrMalformedResponse(fmt.Sprintf("%s: unsupported token_type %q", path, resp.TokenType), nil)
	}
	if resp.User == nil {
		return nil, domainerror.ErrMalformedResponse(path+": missing user", nil)
	}

	role, err := entity.ParseRole(resp.User.Role)
	if err != nil {
		return nil, domainerror.ErrMalformedResponse(fmt.Sprintf("%s: user role %q", path, resp.User.Role), err)
	}
	user := entity.NewUserProfile(resp.User.ID, resp.User.Name, resp.User.Email, role)
	if err := user.Validate(); err != nil {
		return nil, domainerror.ErrMalformedResponse(path+": user", err)
	}

	return &outbound.AuthResult{
		Tokens: *valueobject.NewTokenPair(resp.AccessToken, resp.RefreshToken),
		User:   *user,
	}, nil
}
