package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/domain/session"
	"github.com/sweetshop/sweetshop/domain/valueobject"
)

type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Login(ctx context.Context, req outbound.LoginRequest) (*outbound.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.AuthResult), args.Error(1)
}

func (m *MockAuthGateway) Register(ctx context.Context, req outbound.RegisterRequest) (*outbound.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.AuthResult), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Persist(ctx context.Context, tokens valueobject.TokenPair, user entity.UserProfile) error {
	args := m.Called(ctx, tokens, user)
	return args.Error(0)
}

func (m *MockSessionStore) Load(ctx context.Context) (*outbound.PersistedSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.PersistedSession), args.Error(1)
}

func (m *MockSessionStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockSweetGateway struct {
	mock.Mock
}

func (m *MockSweetGateway) sweet(args mock.Arguments) (*entity.Sweet, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Sweet), args.Error(1)
}

func (m *MockSweetGateway) List(ctx context.Context) ([]entity.Sweet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Sweet), args.Error(1)
}

func (m *MockSweetGateway) Search(ctx context.Context, filter entity.SearchFilter) ([]entity.Sweet, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Sweet), args.Error(1)
}

func (m *MockSweetGateway) Get(ctx context.Context, id string) (*entity.Sweet, error) {
	return m.sweet(m.Called(ctx, id))
}

func (m *MockSweetGateway) Create(ctx context.Context, in entity.SweetInput) (*entity.Sweet, error) {
	return m.sweet(m.Called(ctx, in))
}

func (m *MockSweetGateway) Update(ctx context.Context, id string, upd entity.SweetUpdate) (*entity.Sweet, error) {
	return m.sweet(m.Called(ctx, id, upd))
}

func (m *MockSweetGateway) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSweetGateway) Purchase(ctx context.Context, id string) (*entity.Sweet, error) {
	return m.sweet(m.Called(ctx, id))
}

func (m *MockSweetGateway) Restock(ctx context.Context, id string, quantity int) (*entity.Sweet, error) {
	return m.sweet(m.Called(ctx, id, quantity))
}

type fixedState session.State

func (f fixedState) State() session.State { return session.State(f) }

var (
	shopper = entity.NewUserProfile("u-1", "Sam", "sam@example.com", entity.RoleUser)
	admin   = entity.NewUserProfile("a-1", "Ada", "ada@example.com", entity.RoleAdmin)
)
