package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sweetshop/sweetshop/infrastructure/http/response"
	"github.com/sweetshop/sweetshop/infrastructure/service/jwt"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
)

type claimsKey struct{}

// TokenValidator checks bearer tokens presented to the stub API.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokenService TokenValidator
	logger       logger.Logger
}

func NewAuthMiddleware(tokenService TokenValidator, log logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthMiddleware{
		tokenService: tokenService,
		logger:       log,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Not authenticated")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.LogSecurityEvent(r.Context(), m.logger, "invalid_token", "MEDIUM", map[string]interface{}{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			response.Unauthorized(w, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin ensures that the user has admin role
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserClaims(r.Context())
		if claims == nil || claims.Role != "admin" {
			fields := map[string]interface{}{"path": r.URL.Path}
			if claims != nil {
				fields["user_id"] = claims.UserID
			}
			logger.LogSecurityEvent(r.Context(), m.logger, "admin_route_denied", "LOW", fields)
			response.Forbidden(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// GetUserClaims retrieves user claims from context
func GetUserClaims(ctx context.Context) *jwt.Claims {
	if claims, ok := ctx.Value(claimsKey{}).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
