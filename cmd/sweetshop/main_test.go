package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/infrastructure/config"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
	"github.com/sweetshop/sweetshop/infrastructure/storage/memkv"
	"github.com/sweetshop/sweetshop/infrastructure/stubapi"
)

type harness struct {
	t    *testing.T
	api  *stubapi.Server
	srv  *httptest.Server
	disk *memkv.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api, err := stubapi.New(context.Background(), stubapi.Config{
		JWTSecret:      "cli-test-secret",
		AccessTokenTTL: time.Hour,
		AdminEmail:     "admin@x.com",
		AdminPassword:  "AdminPass123!",
		BcryptCost:     bcrypt.MinCost,
	}, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, api: api, srv: srv, disk: memkv.New()}
}

// run executes one CLI invocation. The session store outlives invocations
// the way the session file does between processes.
func (h *harness) run(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	build := func(ctx context.Context) (*App, error) {
		cfg := &config.Config{APIURL: h.srv.URL, HTTPTimeout: 5 * time.Second, SessionBackend: config.BackendMemory}
		return newAppWithKV(ctx, cfg, logger.NewNopLogger(), &out, h.disk, nil)
	}
	cmd := newRootCmd(&out, &errOut, build)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCLI_Version(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "sweetshop version")
}

func TestCLI_WhoamiRequiresLogin(t *testing.T) {
	h := newHarness(t)

	_, errOut, err := h.run("whoami")

	assert.ErrorIs(t, err, errLoginRequired)
	assert.Contains(t, errOut, "sweetshop login")
	assert.Contains(t, errOut, "/login?from=%2Fprofile")
}

func TestCLI_LoginPersistsAcrossInvocations(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("register", "--name", "Ann", "--email", "a@x.com", "--password", "Secret123!")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered and logged in as Ann <a@x.com> (user)")

	out, _, err = h.run("whoami", "--json")
	require.NoError(t, err)
	var me entity.UserProfile
	require.NoError(t, json.Unmarshal([]byte(out), &me))
	assert.Equal(t, "a@x.com", me.Email)
	assert.Equal(t, entity.RoleUser, me.Role)

	out, _, err = h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, "Next: sweetshop login")
	assert.Equal(t, 0, h.disk.Len())

	_, _, err = h.run("whoami")
	assert.ErrorIs(t, err, errLoginRequired)
}

func TestCLI_BadCredentials(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("login", "--email", "admin@x.com", "--password", "wrong")

	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", err.Error())
	assert.Equal(t, 0, h.disk.Len())
}

func TestCLI_ShopperFlow(t *testing.T) {
	h := newHarness(t)
	seeded, err := h.api.SeedSweets(context.Background(),
		entity.SweetInput{Name: "Fudge", Category: "Chocolate", Price: 2.5, Quantity: 3},
		entity.SweetInput{Name: "Lollipop", Category: "Candy", Price: 0.5, Quantity: 1},
	)
	require.NoError(t, err)

	_, _, err = h.run("register", "--name", "Sam", "--email", "sam@x.com", "--password", "Secret123!")
	require.NoError(t, err)

	out, _, err := h.run("sweets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Fudge")
	assert.Contains(t, out, "Lollipop")

	out, _, err = h.run("sweets", "search", "--max-price", "1", "--json")
	require.NoError(t, err)
	var found []entity.Sweet
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Lollipop", found[0].Name)

	out, _, err = h.run("sweets", "purchase", seeded[0].ID, seeded[1].ID, "--json")
	require.NoError(t, err)
	var bought []entity.Sweet
	require.NoError(t, json.Unmarshal([]byte(out), &bought))
	require.Len(t, bought, 2)
	assert.Equal(t, 2, bought[0].Quantity)
	assert.Equal(t, 0, bought[1].Quantity)

	_, errOut, err := h.run("sweets", "restock", seeded[1].ID, "5")
	assert.ErrorIs(t, err, errAdminRequired)
	assert.Contains(t, errOut, "admin account")
}

func TestCLI_AdminFlow(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("login", "-e", "admin@x.com", "-p", "AdminPass123!")
	require.NoError(t, err)

	out, _, err := h.run("sweets", "create", "--name", "Toffee", "--category", "Candy", "--price", "1.25", "--quantity", "2", "--json")
	require.NoError(t, err)
	var created entity.Sweet
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Toffee", created.Name)

	out, _, err = h.run("sweets", "restock", created.ID, "8")
	require.NoError(t, err)
	assert.Contains(t, out, "Stock:")
	assert.Contains(t, out, "10")

	out, _, err = h.run("sweets", "update", created.ID, "--price", "1.5", "--json")
	require.NoError(t, err)
	var updated entity.Sweet
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, 1.5, updated.Price)

	_, _, err = h.run("sweets", "restock", created.ID, "many")
	assert.Error(t, err)

	out, _, err = h.run("sweets", "delete", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+created.ID)

	_, _, err = h.run("sweets", "show", created.ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Sweet not found")
}

func TestCommandFor(t *testing.T) {
	assert.Equal(t, "sweetshop login", commandFor("/login?from=%2Fadmin"))
	assert.Equal(t, "sweetshop sweets list", commandFor("/"))
	assert.Equal(t, "/elsewhere", commandFor("/elsewhere"))
}
