// Package stubapi assembles an in-process Sweet Shop API for local runs and
// integration tests. It is not a production backend.
package stubapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/infrastructure/http/handler"
	"github.com/sweetshop/sweetshop/infrastructure/http/middleware"
	"github.com/sweetshop/sweetshop/infrastructure/http/response"
	"github.com/sweetshop/sweetshop/infrastructure/persistence/memory"
	"github.com/sweetshop/sweetshop/infrastructure/service/jwt"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
	"github.com/sweetshop/sweetshop/infrastructure/service/password"
)

type Config struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	AdminEmail     string
	AdminPassword  string
	// BcryptCost of zero means bcrypt.DefaultCost.
	BcryptCost int
}

type Server struct {
	users     *memory.UserRepository
	sweets    *memory.SweetRepository
	tokens    *jwt.JWTService
	passwords *password.BcryptPasswordService
	logger    logger.Logger
	router    *mux.Router
}

func New(ctx context.Context, cfg Config, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	tokens, err := jwt.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	passwords, err := password.NewBcryptPasswordService(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("stub api: %w", err)
	}

	s := &Server{
		users:     memory.NewUserRepository(),
		sweets:    memory.NewSweetRepository(),
		tokens:    tokens,
		passwords: passwords,
		logger:    log,
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := s.seedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, err
		}
	}

	s.router = s.routes()
	log.Debug(ctx, "Stub API ready", map[string]interface{}{
		"access_token_ttl": tokens.AccessTokenTTL().String(),
	})
	return s, nil
}

func (s *Server) seedAdmin(ctx context.Context, email, pass string) error {
	hash, err := s.passwords.HashPassword(pass)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	admin := &memory.UserRecord{Name: "Administrator", Email: email, PasswordHash: hash, Role: entity.RoleAdmin}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info(ctx, "Seeded admin account", map[string]interface{}{"email": email, "user_id": admin.ID})
	return nil
}

// SeedSweets adds catalog entries directly, bypassing auth.
func (s *Server) SeedSweets(ctx context.Context, items ...entity.SweetInput) ([]entity.Sweet, error) {
	out := make([]entity.Sweet, 0, len(items))
	for _, in := range items {
		created, err := s.sweets.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", in.Name, err)
		}
		out = append(out, *created)
	}
	return out, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	auth := handler.NewAuthHandler(s.users, s.tokens, s.passwords, s.logger)
	sweets := handler.NewSweetHandler(s.sweets, s.logger)
	guard := middleware.NewAuthMiddleware(s.tokens, s.logger)

	r := mux.NewRouter()
	r.Use(middleware.CorrelationIDMiddleware, middleware.RequestLogger(s.logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)

	authed := func(h http.HandlerFunc) http.Handler { return guard.RequireAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return guard.RequireAdmin(h) }

	r.Handle("/sweets", authed(sweets.List)).Methods(http.MethodGet)
	r.Handle("/sweets", admin(sweets.Create)).Methods(http.MethodPost)
	r.Handle("/sweets/search", authed(sweets.Search)).Methods(http.MethodGet)
	r.Handle("/sweets/{id}", authed(sweets.Get)).Methods(http.MethodGet)
	r.Handle("/sweets/{id}", admin(sweets.Update)).Methods(http.MethodPut)
	r.Handle("/sweets/{id}", admin(sweets.Delete)).Methods(http.MethodDelete)
	r.Handle("/sweets/{id}/purchase", authed(sweets.Purchase)).Methods(http.MethodPost)
	r.Handle("/sweets/{id}/restock", admin(sweets.Restock)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}
