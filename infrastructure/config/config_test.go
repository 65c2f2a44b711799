package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clientKeys = []string{
	"SWEETSHOP_CONFIG", "SWEETSHOP_API_URL", "SWEETSHOP_HTTP_TIMEOUT", "SWEETSHOP_SESSION_BACKEND",
	"SWEETSHOP_SESSION_FILE", "SWEETSHOP_REDIS_URL", "SWEETSHOP_REDIS_PREFIX", "LOG_LEVEL", "LOG_FORMAT",
	"STUB_LISTEN_ADDR", "STUB_JWT_SECRET", "STUB_ADMIN_EMAIL", "STUB_ADMIN_PASSWORD", "STUB_ACCESS_TOKEN_TTL",
}

// isolate clears config variables and moves into an empty dir so no .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range clientKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, BackendFile, cfg.SessionBackend)
	assert.Equal(t, "sweetshop:session:", cfg.RedisPrefix)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SWEETSHOP_API_URL", "https://api.sweets.example")
	t.Setenv("SWEETSHOP_HTTP_TIMEOUT", "3")
	t.Setenv("SWEETSHOP_SESSION_BACKEND", "Memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://api.sweets.example", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
}

func TestLoad_ProfileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sweetshop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: http://profile.local:9000
http_timeout: 2m
session:
  backend: redis
  redis_url: redis://cache:6379/1
log:
  level: debug
`), 0o600))
	t.Setenv("SWEETSHOP_CONFIG", path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://profile.local:9000", cfg.APIURL)
	assert.Equal(t, 2*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, path, cfg.ProfilePath)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SWEETSHOP_SESSION_BACKEND=memory\n"), 0o600))
	// t.Setenv("", ...) above leaves the key set to empty, which godotenv will not override
	require.NoError(t, os.Unsetenv("SWEETSHOP_SESSION_BACKEND"))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"relative api url", map[string]string{"SWEETSHOP_API_URL": "localhost:8000"}, ErrInvalidAPIURL},
		{"ftp api url", map[string]string{"SWEETSHOP_API_URL": "ftp://files.local"}, ErrInvalidAPIURL},
		{"bad timeout", map[string]string{"SWEETSHOP_HTTP_TIMEOUT": "soon"}, ErrInvalidTimeout},
		{"zero timeout", map[string]string{"SWEETSHOP_HTTP_TIMEOUT": "0"}, ErrInvalidTimeout},
		{"unknown backend", map[string]string{"SWEETSHOP_SESSION_BACKEND": "cookie"}, ErrInvalidSessionBackend},
		{"redis without url", map[string]string{"SWEETSHOP_SESSION_BACKEND": "redis"}, ErrMissingRedisURL},
		{"missing profile", map[string]string{"SWEETSHOP_CONFIG": "/nonexistent/sweetshop.yaml"}, ErrInvalidProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadStub(t *testing.T) {
	isolate(t)

	_, err := LoadStub()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)

	t.Setenv("STUB_JWT_SECRET", "test-secret")
	t.Setenv("STUB_ACCESS_TOKEN_TTL", "30m")
	cfg, err := LoadStub()

	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "admin@sweetshop.local", cfg.AdminEmail)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
}
