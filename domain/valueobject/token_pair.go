package valueobject

import (
	"errors"
	"strings"
)

var ErrMissingAccessToken = errors.New("access token is required")

// TokenPair holds opaque bearer tokens. They are never parsed client-side.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func NewTokenPair(accessToken, refreshToken string) *TokenPair {
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
}

func (t *TokenPair) Validate() error {
	if t == nil || strings.TrimSpace(t.AccessToken) == "" {
		return ErrMissingAccessToken
	}
	return nil
}

func (t *TokenPair) HasRefreshToken() bool {
	return t != nil && t.RefreshToken != ""
}
