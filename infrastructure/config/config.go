package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	APIURL      string
	HTTPTimeout time.Duration

	SessionBackend string
	SessionFile    string
	RedisURL       string
	RedisPrefix    string

	LogLevel  string
	LogFormat string

	// ProfilePath is the YAML profile that was applied, if any.
	ProfilePath string
}

// StubConfig configures the local stand-in API server.
type StubConfig struct {
	ListenAddr     string
	JWTSecret      string
	AdminEmail     string
	AdminPassword  string
	AccessTokenTTL time.Duration
	LogLevel       string
	LogFormat      string
}

var (
	ErrInvalidAPIURL         = errors.New("SWEETSHOP_API_URL must be an absolute http(s) URL")
	ErrInvalidTimeout        = errors.New("invalid duration format")
	ErrInvalidSessionBackend = errors.New("SWEETSHOP_SESSION_BACKEND must be file, redis or memory")
	ErrMissingRedisURL       = errors.New("SWEETSHOP_REDIS_URL is required for the redis session backend")
	ErrMissingJWTSecret      = errors.New("STUB_JWT_SECRET is required")
	ErrInvalidProfile        = errors.New("invalid config profile")
)

// profile mirrors the optional YAML file named by SWEETSHOP_CONFIG.
// Environment variables win over anything set here.
type profile struct {
	APIURL      string `yaml:"api_url"`
	HTTPTimeout string `yaml:"http_timeout"`
	Session     struct {
		Backend     string `yaml:"backend"`
		File        string `yaml:"file"`
		RedisURL    string `yaml:"redis_url"`
		RedisPrefix string `yaml:"redis_prefix"`
	} `yaml:"session"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Stub struct {
		ListenAddr     string `yaml:"listen_addr"`
		JWTSecret      string `yaml:"jwt_secret"`
		AdminEmail     string `yaml:"admin_email"`
		AdminPassword  string `yaml:"admin_password"`
		AccessTokenTTL string `yaml:"access_token_ttl"`
	} `yaml:"stub"`
}

// Load reads client configuration: .env, then the YAML profile, then the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	path := os.Getenv("SWEETSHOP_CONFIG")
	p, err := loadProfile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:         getEnvOrDefault("SWEETSHOP_API_URL", orDefault(p.APIURL, "http://localhost:8000")),
		SessionBackend: strings.ToLower(getEnvOrDefault("SWEETSHOP_SESSION_BACKEND", orDefault(p.Session.Backend, BackendFile))),
		SessionFile:    getEnvOrDefault("SWEETSHOP_SESSION_FILE", p.Session.File),
		RedisURL:       getEnvOrDefault("SWEETSHOP_REDIS_URL", p.Session.RedisURL),
		RedisPrefix:    getEnvOrDefault("SWEETSHOP_REDIS_PREFIX", orDefault(p.Session.RedisPrefix, "sweetshop:session:")),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", orDefault(p.Log.Level, "warn")),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", orDefault(p.Log.Format, "text")),
		ProfilePath:    path,
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidAPIURL
	}

	timeout, err := parseDuration(getEnvOrDefault("SWEETSHOP_HTTP_TIMEOUT", orDefault(p.HTTPTimeout, "10s")))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("SWEETSHOP_HTTP_TIMEOUT: %w", ErrInvalidTimeout)
	}
	cfg.HTTPTimeout = timeout

	switch cfg.SessionBackend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, ErrMissingRedisURL
		}
	default:
		return nil, ErrInvalidSessionBackend
	}

	return cfg, nil
}

// LoadStub reads configuration for cmd/stubapi.
func LoadStub() (*StubConfig, error) {
	_ = godotenv.Load()

	p, err := loadProfile(os.Getenv("SWEETSHOP_CONFIG"))
	if err != nil {
		return nil, err
	}

	cfg := &StubConfig{
		ListenAddr:    getEnvOrDefault("STUB_LISTEN_ADDR", orDefault(p.Stub.ListenAddr, ":8000")),
		JWTSecret:     getEnvOrDefault("STUB_JWT_SECRET", p.Stub.JWTSecret),
		AdminEmail:    getEnvOrDefault("STUB_ADMIN_EMAIL", orDefault(p.Stub.AdminEmail, "admin@sweetshop.local")),
		AdminPassword: getEnvOrDefault("STUB_ADMIN_PASSWORD", p.Stub.AdminPassword),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", orDefault(p.Log.Level, "info")),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", orDefault(p.Log.Format, "json")),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	ttl, err := parseDuration(getEnvOrDefault("STUB_ACCESS_TOKEN_TTL", orDefault(p.Stub.AccessTokenTTL, "900")))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("STUB_ACCESS_TOKEN_TTL: %w", ErrInvalidTimeout)
	}
	cfg.AccessTokenTTL = ttl

	return cfg, nil
}

func loadProfile(path string) (*profile, error) {
	p := &profile{}
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, path, err)
	}
	return p, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

// parseDuration accepts plain seconds ("900") or a Go duration ("15m").
func parseDuration(value string) (time.Duration, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(value)
}
