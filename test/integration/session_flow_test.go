package integration

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/application/usecase"
	"github.com/sweetshop/sweetshop/domain/entity"
	domainerror "github.com/sweetshop/sweetshop/domain/error"
	"github.com/sweetshop/sweetshop/domain/session"
	"github.com/sweetshop/sweetshop/domain/valueobject"
	"github.com/sweetshop/sweetshop/infrastructure/adapter/restapi"
	"github.com/sweetshop/sweetshop/infrastructure/http/client"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
	"github.com/sweetshop/sweetshop/infrastructure/sessionstore"
	"github.com/sweetshop/sweetshop/infrastructure/storage/filekv"
	"github.com/sweetshop/sweetshop/infrastructure/stubapi"
)

const (
	adminEmail    = "admin@sweetshop.test"
	adminPassword = "AdminPass123!"
)

type SessionFlowSuite struct {
	ctx         context.Context
	api         *stubapi.Server
	server      *httptest.Server
	sessionFile string
}

func setupSessionFlow(t *testing.T) *SessionFlowSuite {
	t.Helper()
	ctx := context.Background()

	api, err := stubapi.New(ctx, stubapi.Config{
		JWTSecret:      "integration-secret",
		AccessTokenTTL: time.Hour,
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
		BcryptCost:     bcrypt.MinCost,
	}, logger.NewNopLogger())
	require.NoError(t, err)

	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	return &SessionFlowSuite{
		ctx:         ctx,
		api:         api,
		server:      server,
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

// process is one client lifetime: a fresh manager over the same session file.
type process struct {
	sessions *usecase.SessionManager
	catalog  *usecase.CatalogUseCase
	store    *sessionstore.Store
	visited  []string
}

func (s *SessionFlowSuite) start(t *testing.T) *process {
	t.Helper()
	log := logger.NewNopLogger()
	store := sessionstore.New(filekv.New(s.sessionFile, log), log)

	api, err := client.New(client.Config{BaseURL: s.server.URL, Timeout: 5 * time.Second}, store, log)
	require.NoError(t, err)

	p := &process{store: store}
	nav := outbound.NavigatorFunc(func(_ context.Context, target string) error {
		p.visited = append(p.visited, target)
		return nil
	})
	p.sessions = usecase.NewSessionManager(store, restapi.NewAuthGateway(api), nav, log)
	p.catalog = usecase.NewCatalogUseCase(restapi.NewSweetGateway(api), p.sessions, log)
	p.sessions.Initialize(s.ctx)
	return p
}

func registration(name, email string) valueobject.Registration {
	return valueobject.Registration{Name: name, Email: email, Password: "Secret123!"}
}

func TestSessionFlow_LoginSurvivesRestart(t *testing.T) {
	s := setupSessionFlow(t)

	first := s.start(t)
	require.Equal(t, session.StatusAnonymous, first.sessions.State().Status)
	require.NoError(t, first.sessions.Login(s.ctx, adminEmail, adminPassword))

	second := s.start(t)
	state := second.sessions.State()
	require.True(t, state.IsAuthenticated())
	assert.True(t, state.IsAdmin())
	assert.Equal(t, adminEmail, state.User.Email)

	// the restored token is accepted by the API
	created, err := second.catalog.Create(s.ctx, entity.SweetInput{Name: "Toffee", Category: "Candy", Price: 1.25, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, "Toffee", created.Name)
}

func TestSessionFlow_LogoutClearsEverything(t *testing.T) {
	s := setupSessionFlow(t)

	p := s.start(t)
	require.NoError(t, p.sessions.Login(s.ctx, adminEmail, adminPassword))

	p.sessions.Logout(s.ctx, session.DefaultLoginPath)

	assert.Equal(t, []string{"/login"}, p.visited)
	persisted, err := p.store.Load(s.ctx)
	require.NoError(t, err)
	assert.Nil(t, persisted)

	_, err = p.catalog.List(s.ctx)
	assert.Equal(t, http.StatusUnauthorized, domainerror.StatusCode(err))

	restarted := s.start(t)
	assert.Equal(t, session.StatusAnonymous, restarted.sessions.State().Status)
}

func TestSessionFlow_RejectedLoginStaysAnonymous(t *testing.T) {
	s := setupSessionFlow(t)
	p := s.start(t)

	err := p.sessions.Login(s.ctx, adminEmail, "not-the-password")

	var apiErr *domainerror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Incorrect email or password", apiErr.Detail)
	assert.Equal(t, session.StatusAnonymous, p.sessions.State().Status)

	_, statErr := os.Stat(s.sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSessionFlow_CorruptSessionFileHeals(t *testing.T) {
	s := setupSessionFlow(t)
	require.NoError(t, os.WriteFile(s.sessionFile,
		[]byte(`{"auth_tokens":"{\"accessToken\":\"T\"}","auth_user":"{not json"}`), 0o600))

	p := s.start(t)

	assert.Equal(t, session.StatusAnonymous, p.sessions.State().Status)
	_, ok := p.store.AccessToken(s.ctx)
	assert.False(t, ok)
}

func TestSessionFlow_ShopperCannotAdminister(t *testing.T) {
	s := setupSessionFlow(t)
	seeded, err := s.api.SeedSweets(s.ctx, entity.SweetInput{Name: "Fudge", Category: "Chocolate", Price: 2, Quantity: 2})
	require.NoError(t, err)

	p := s.start(t)
	require.NoError(t, p.sessions.Register(s.ctx, registration("Sam", "sam@x.com")))

	guard := usecase.NewRouteGuard()
	d := guard.Check(p.sessions.State(), usecase.AdminRequirement)
	assert.Equal(t, session.ReasonForbidden, d.Reason)
	assert.Equal(t, "/", d.RedirectTo)

	_, err = p.catalog.Restock(s.ctx, seeded[0].ID, 3)
	assert.ErrorIs(t, err, domainerror.ErrForbidden)

	bought, err := p.catalog.Purchase(s.ctx, seeded[0].ID, seeded[0].ID)
	require.NoError(t, err)
	require.Len(t, bought, 2)

	_, err = p.catalog.Purchase(s.ctx, seeded[0].ID)
	var apiErr *domainerror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Sweet is out of stock", apiErr.Detail)
}
