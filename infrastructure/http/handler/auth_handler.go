package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/domain/valueobject"
	"github.com/sweetshop/sweetshop/infrastructure/http/response"
	"github.com/sweetshop/sweetshop/infrastructure/persistence/memory"
	"github.com/sweetshop/sweetshop/infrastructure/service/jwt"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
	"github.com/sweetshop/sweetshop/infrastructure/service/password"
)

// UserStore is the account table behind the auth endpoints.
type UserStore interface {
	Create(ctx context.Context, user *memory.UserRecord) error
	FindByEmail(ctx context.Context, email string) (*memory.UserRecord, error)
}

type TokenIssuer interface {
	GenerateAccessToken(claims jwt.Claims) (string, error)
	GenerateRefreshToken() (string, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) (bool, error)
}

type AuthHandler struct {
	users     UserStore
	tokens    TokenIssuer
	passwords PasswordHasher
	logger    logger.Logger
}

func NewAuthHandler(users UserStore, tokens TokenIssuer, passwords PasswordHasher, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    log,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	TokenType    string             `json:"token_type"`
	User         entity.UserProfile `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.UnprocessableEntity(w, "Invalid request body")
		return
	}

	role := entity.RoleUser
	if req.Role != "" {
		parsed, err := entity.ParseRole(req.Role)
		if err != nil {
			response.UnprocessableEntity(w, "Role must be user or admin")
			return
		}
		role = parsed
	}

	reg := valueobject.Registration{Name: req.Name, Email: req.Email, Password: req.Password, Role: role}
	if err := reg.Validate(); err != nil {
		response.UnprocessableEntity(w, capitalize(err.Error()))
		return
	}

	hash, err := h.passwords.HashPassword(req.Password)
	if errors.Is(err, password.ErrPasswordTooLong) {
		response.UnprocessableEntity(w, capitalize(err.Error()))
		return
	}
	if err != nil {
		h.logger.Error(r.Context(), "Failed to hash password", err, nil)
		response.InternalServerError(w, "Internal server error")
		return
	}

	user := &memory.UserRecord{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, memory.ErrEmailTaken) {
			logger.LogAuthEvent(r.Context(), h.logger, "register", "", false, map[string]interface{}{"reason": "email_taken"})
			response.Conflict(w, "Email already registered")
			return
		}
		h.logger.Error(r.Context(), "Failed to create user", err, nil)
		response.InternalServerError(w, "Internal server error")
		return
	}

	h.issue(w, r, "register", http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.UnprocessableEntity(w, "Invalid request body")
		return
	}

	credentials, err := valueobject.NewCredentials(req.Email, req.Password)
	if err != nil {
		response.UnprocessableEntity(w, capitalize(err.Error()))
		return
	}

	user, err := h.users.FindByEmail(r.Context(), credentials.Email())
	if err != nil {
		h.logger.Error(r.Context(), "Failed to look up user", err, nil)
		response.InternalServerError(w, "Internal server error")
		return
	}
	if user == nil {
		logger.LogAuthEvent(r.Context(), h.logger, "login", "", false, map[string]interface{}{"reason": "unknown_email"})
		response.Unauthorized(w, "Incorrect email or password")
		return
	}

	ok, err := h.passwords.VerifyPassword(credentials.Password(), user.PasswordHash)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to verify password", err, map[string]interface{}{"user_id": user.ID})
	}
	if err != nil || !ok {
		logger.LogAuthEvent(r.Context(), h.logger, "login", user.ID, false, map[string]interface{}{"reason": "bad_password"})
		response.Unauthorized(w, "Incorrect email or password")
		return
	}

	h.issue(w, r, "login", http.StatusOK, user)
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, event string, status int, user *memory.UserRecord) {
	access, err := h.tokens.GenerateAccessToken(jwt.Claims{UserID: user.ID, Role: string(user.Role)})
	if err != nil {
		h.logger.Error(r.Context(), "Failed to issue access token", err, nil)
		response.InternalServerError(w, "Internal server error")
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken()
	if err != nil {
		h.logger.Error(r.Context(), "Failed to issue refresh token", err, nil)
		response.InternalServerError(w, "Internal server error")
		return
	}

	logger.LogAuthEvent(r.Context(), h.logger, event, user.ID, true, map[string]interface{}{"role": string(user.Role)})
	response.Success(w, status, AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		User:         user.Profile(),
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
