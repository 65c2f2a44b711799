package outbound

import (
	"context"

	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/domain/valueobject"
)

// PersistedSession is the credential pair and profile as last written.
type PersistedSession struct {
	Tokens valueobject.TokenPair
	User   entity.UserProfile
}

type SessionStore interface {
	Persist(ctx context.Context, tokens valueobject.TokenPair, user entity.UserProfile) error
	// Load returns nil, nil when no usable session is stored.
	Load(ctx context.Context) (*PersistedSession, error)
	Clear(ctx context.Context) error
}

// TokenSource yields the bearer token for outbound requests, if any.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}
