package rediskv

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
)

const DefaultPrefix = "sweetshop:session:"

// Config for the Redis-backed session storage
type Config struct {
	URL         string
	Prefix      string
	DialTimeout time.Duration
}

// Store keeps session keys in Redis so several terminals can share one
// session profile.
type Store struct {
	client *redis.Client
	prefix string
	logger logger.Logger
}

var _ outbound.KeyValueStore = (*Store)(nil)

// New connects and pings Redis.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Store, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, cfg.Prefix, log), nil
}

func NewWithClient(client *redis.Client, prefix string, log logger.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, logger: log}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error(ctx, "Failed to read session key", err, map[string]interface{}{"key": key})
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

// SetMany writes all entries in one MULTI/EXEC transaction.
func (s *Store) SetMany(ctx context.Context, entries map[string][]byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, s.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to write session keys", err, map[string]interface{}{"keys": len(entries)})
		return fmt.Errorf("failed to set session keys: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		s.logger.Error(ctx, "Failed to delete session keys", err, map[string]interface{}{"keys": keys})
		return fmt.Errorf("failed to delete session keys: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
