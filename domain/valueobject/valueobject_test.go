package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetshop/sweetshop/domain/entity"
)

func TestNewCredentials(t *testing.T) {
	creds, err := NewCredentials("  a@x.com ", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", creds.Email())
	assert.Equal(t, "Secret123!", creds.Password())

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "pw", ErrInvalidEmail},
		{"no domain", "a@", "pw", ErrInvalidEmail},
		{"no tld", "a@x", "pw", ErrInvalidEmail},
		{"empty password", "a@x.com", "", ErrPasswordRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCredentials(tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegistration_Validate(t *testing.T) {
	ok := Registration{Name: "Ann", Email: "ann@shop.io", Password: "longenough"}
	assert.NoError(t, ok.Validate())

	tests := []struct {
		name string
		reg  Registration
		want error
	}{
		{"no name", Registration{Email: "ann@shop.io", Password: "longenough"}, ErrNameRequired},
		{"bad email", Registration{Name: "Ann", Email: "nope", Password: "longenough"}, ErrInvalidEmail},
		{"short password", Registration{Name: "Ann", Email: "ann@shop.io", Password: "short"}, ErrPasswordTooShort},
		{"bad role", Registration{Name: "Ann", Email: "ann@shop.io", Password: "longenough", Role: "owner"}, entity.ErrUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.reg.Validate(), tt.want)
		})
	}
}

func TestTokenPair(t *testing.T) {
	pair := NewTokenPair("access", "")
	assert.NoError(t, pair.Validate())
	assert.False(t, pair.HasRefreshToken())

	assert.True(t, NewTokenPair("access", "refresh").HasRefreshToken())
	assert.ErrorIs(t, NewTokenPair("  ", "refresh").Validate(), ErrMissingAccessToken)

	var none *TokenPair
	assert.ErrorIs(t, none.Validate(), ErrMissingAccessToken)
	assert.False(t, none.HasRefreshToken())
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a.b+c@sub.example.org"))
	assert.False(t, ValidEmail("Ann <ann@shop.io>"))
}
