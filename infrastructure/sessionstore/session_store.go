// Package sessionstore persists the credential pair and user profile under
// two fixed keys of a KeyValueStore.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/domain/entity"
	domainerror "github.com/sweetshop/sweetshop/domain/error"
	"github.com/sweetshop/sweetshop/domain/valueobject"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
)

const (
	TokensKey = "auth_tokens"
	UserKey   = "auth_user"
)

type Store struct {
	kv     outbound.KeyValueStore
	logger logger.Logger
}

var (
	_ outbound.SessionStore = (*Store)(nil)
	_ outbound.TokenSource  = (*Store)(nil)
)

func New(kv outbound.KeyValueStore, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{kv: kv, logger: log}
}

// Persist writes both records in one SetMany so neither is visible without the other.
func (s *Store) Persist(ctx context.Context, tokens valueobject.TokenPair, user entity.UserProfile) error {
	if err := tokens.Validate(); err != nil {
		return domainerror.ErrInvalidRequest("tokens", err)
	}
	if err := user.Validate(); err != nil {
		return domainerror.ErrInvalidRequest("user profile", err)
	}

	tokensRaw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	userRaw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	if err := s.kv.SetMany(ctx, map[string][]byte{
		TokensKey: tokensRaw,
		UserKey:   userRaw,
	}); err != nil {
		return domainerror.ErrStorage("persist", err)
	}
	return nil
}

// Load returns the stored session, or nil when there is none. A record that
// can't be parsed, or a token record without a profile (or the reverse), is
// cleared and reported as absent.
func (s *Store) Load(ctx context.Context) (*outbound.PersistedSession, error) {
	tokensRaw, hasTokens, err := s.kv.Get(ctx, TokensKey)
	if err != nil {
		return nil, domainerror.ErrStorage("load tokens", err)
	}
	userRaw, hasUser, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		return nil, domainerror.ErrStorage("load user", err)
	}

	if !hasTokens && !hasUser {
		return nil, nil
	}
	if hasTokens != hasUser {
		return nil, s.heal(ctx, "incomplete session record")
	}

	var user entity.UserProfile
	if err := json.Unmarshal(userRaw, &user); err != nil {
		return nil, s.heal(ctx, "malformed user record")
	}
	if err := user.Validate(); err != nil {
		return nil, s.heal(ctx, "invalid user record")
	}

	var tokens valueobject.TokenPair
	if err := json.Unmarshal(tokensRaw, &tokens); err != nil {
		return nil, s.heal(ctx, "malformed token record")
	}
	if err := tokens.Validate(); err != nil {
		return nil, s.heal(ctx, "invalid token record")
	}

	return &outbound.PersistedSession{Tokens: tokens, User: user}, nil
}

// Clear removes both keys. Calling it on an empty store is fine.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokensKey, UserKey); err != nil {
		return domainerror.ErrStorage("clear", err)
	}
	return nil
}

// AccessToken reads the token record only and never writes.
func (s *Store) AccessToken(ctx context.Context) (string, bool) {
	raw, ok, err := s.kv.Get(ctx, TokensKey)
	if err != nil || !ok {
		return "", false
	}
	var tokens valueobject.TokenPair
	if err := json.Unmarshal(raw, &tokens); err != nil || tokens.Validate() != nil {
		return "", false
	}
	return tokens.AccessToken, true
}

// heal resets to logged-out. Only a failure to delete is returned.
func (s *Store) heal(ctx context.Context, reason string) error {
	s.logger.Warn(ctx, "Stored session unusable, clearing it", map[string]interface{}{
		"reason": reason,
	})
	if err := s.Clear(ctx); err != nil {
		return err
	}
	return nil
}
