package sessionstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sweetshop/sweetshop/domain/entity"
	domainerror "github.com/sweetshop/sweetshop/domain/error"
	"github.com/sweetshop/sweetshop/domain/valueobject"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
	"github.com/sweetshop/sweetshop/infrastructure/storage/memkv"
)

// countingKV records writes so tests can assert a Load had no side effects.
type countingKV struct {
	*memkv.Store
	sets    int
	deletes int
}

func (c *countingKV) SetMany(ctx context.Context, entries map[string][]byte) error {
	c.sets++
	return c.Store.SetMany(ctx, entries)
}

func (c *countingKV) Delete(ctx context.Context, keys ...string) error {
	c.deletes++
	return c.Store.Delete(ctx, keys...)
}

type MockKV struct {
	mock.Mock
}

func (m *MockKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockKV) SetMany(ctx context.Context, entries map[string][]byte) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockKV) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func newStore() (*Store, *countingKV) {
	kv := &countingKV{Store: memkv.New()}
	return New(kv, logger.NewNopLogger()), kv
}

var testUser = entity.UserProfile{ID: "1", Name: "A", Email: "a@x.com", Role: entity.RoleUser}

func TestStore_PersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	require.NoError(t, s.Persist(ctx, valueobject.TokenPair{AccessToken: "T1", RefreshToken: "R1"}, testUser))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "T1", got.Tokens.AccessToken)
	assert.Equal(t, "R1", got.Tokens.RefreshToken)
	assert.Equal(t, testUser, got.User)
}

func TestStore_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore()
	require.NoError(t, s.Persist(ctx, valueobject.TokenPair{AccessToken: "T1"}, testUser))

	raw, ok, err := kv.Get(ctx, TokensKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"accessToken":"T1"}`, string(raw))

	raw, ok, err = kv.Get(ctx, UserKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"1","name":"A","email":"a@x.com","role":"user"}`, string(raw))
	assert.Equal(t, 1, kv.sets)
}

func TestStore_PersistOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()
	require.NoError(t, s.Persist(ctx, valueobject.TokenPair{AccessToken: "T1", RefreshToken: "R1"}, testUser))

	admin := entity.UserProfile{ID: "2", Name: "B", Email: "b@x.com", Role: entity.RoleAdmin}
	require.NoError(t, s.Persist(ctx, valueobject.TokenPair{AccessToken: "T2"}, admin))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Tokens.AccessToken)
	assert.Empty(t, got.Tokens.RefreshToken)
	assert.Equal(t, admin, got.User)
}

func TestStore_PersistRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore()

	err := s.Persist(ctx, valueobject.TokenPair{}, testUser)
	assert.Equal(t, domainerror.KindValidation, domainerror.KindOf(err))

	err = s.Persist(ctx, valueobject.TokenPair{AccessToken: "T"}, entity.UserProfile{ID: "1", Role: "root"})
	assert.Equal(t, domainerror.KindValidation, domainerror.KindOf(err))
	assert.Zero(t, kv.sets)
}

func TestStore_LoadEmpty(t *testing.T) {
	s, kv := newStore()
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, kv.deletes)
}

func TestStore_LoadSelfHeals(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string][]byte
	}{
		{
			name: "malformed user json",
			entries: map[string][]byte{
				TokensKey: []byte(`{"accessToken":"T1"}`),
				UserKey:   []byte(`{not json`),
			},
		},
		{
			name: "user without id",
			entries: map[string][]byte{
				TokensKey: []byte(`{"accessToken":"T1"}`),
				UserKey:   []byte(`{"name":"A","role":"user"}`),
			},
		},
		{
			name: "user with unknown role",
			entries: map[string][]byte{
				TokensKey: []byte(`{"accessToken":"T1"}`),
				UserKey:   []byte(`{"id":"1","role":"superuser"}`),
			},
		},
		{
			name: "user without tokens",
			entries: map[string][]byte{
				UserKey: []byte(`{"id":"1","role":"user"}`),
			},
		},
		{
			name: "tokens without user",
			entries: map[string][]byte{
				TokensKey: []byte(`{"accessToken":"T1"}`),
			},
		},
		{
			name: "malformed tokens",
			entries: map[string][]byte{
				TokensKey: []byte(`"T1"`),
				UserKey:   []byte(`{"id":"1","role":"user"}`),
			},
		},
		{
			name: "empty access token",
			entries: map[string][]byte{
				TokensKey: []byte(`{"accessToken":""}`),
				UserKey:   []byte(`{"id":"1","role":"user"}`),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, kv := newStore()
			require.NoError(t, kv.Store.SetMany(ctx, tt.entries))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)
			assert.Equal(t, 0, kv.Store.Len(), "both keys removed")
			assert.Equal(t, 1, kv.deletes)

			// idempotent: nothing left to heal
			got, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)
			assert.Equal(t, 1, kv.deletes)
			assert.Zero(t, kv.sets)
		})
	}
}

func TestStore_ClearIdempotent(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore()
	require.NoError(t, s.Persist(ctx, valueobject.TokenPair{AccessToken: "T1"}, testUser))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, kv.Store.Len())

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_AccessToken(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore()

	_, ok := s.AccessToken(ctx)
	assert.False(t, ok)

	require.NoError(t, s.Persist(ctx, valueobject.TokenPair{AccessToken: "T1", RefreshToken: "R1"}, testUser))
	tok, ok := s.AccessToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "T1", tok)

	// corrupt tokens are ignored but never cleaned up from here
	require.NoError(t, kv.Store.SetMany(ctx, map[string][]byte{TokensKey: []byte("garbage")}))
	deletes := kv.deletes
	_, ok = s.AccessToken(ctx)
	assert.False(t, ok)
	assert.Equal(t, deletes, kv.deletes)
}

func TestStore_BackendErrorsAreStorageErrors(t *testing.T) {
	ctx := context.Background()
	kv := new(MockKV)
	boom := errors.New("io error")
	kv.On("Get", ctx, TokensKey).Return(nil, false, boom)
	kv.On("SetMany", ctx, mock.Anything).Return(boom)
	kv.On("Delete", ctx, []string{TokensKey, UserKey}).Return(boom)

	s := New(kv, logger.NewNopLogger())

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domainerror.KindStorage, domainerror.KindOf(err))

	err = s.Persist(ctx, valueobject.TokenPair{AccessToken: "T1"}, testUser)
	assert.ErrorIs(t, err, boom)

	err = s.Clear(ctx)
	assert.ErrorIs(t, err, boom)
	kv.AssertExpectations(t)
}
