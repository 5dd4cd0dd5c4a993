package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds connection settings for the Redis-backed store.
type RedisConfig struct {
	Addr     string // Redis address, default "localhost:6379"
	Password string // Redis password, default ""
	DB       int    // Redis database number, default 0
	Prefix   string // Key prefix, default "proxydeck:"
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "proxydeck:",
	}
}

// RedisConfigFromEnv loads Redis configuration from environment variables.
// Falls back to defaults for any missing values.
func RedisConfigFromEnv() *RedisConfig {
	cfg := DefaultRedisConfig()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Password = pw
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.DB = db
		}
	}
	if prefix := os.Getenv("REDIS_STATE_PREFIX"); prefix != "" {
		cfg.Prefix = prefix
	}
	return cfg
}

// RedisStore keeps the state documents in a single Redis hash, one field
// per entity kind. Persistence is per process instance; the store is not
// used for cross-instance fan-out.
type RedisStore struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store. Call Ping before use to
// verify the server is reachable.
func NewRedisStore(cfg *RedisConfig, logger zerolog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{
		client: client,
		key:    cfg.Prefix + "state",
		logger: logger.With().Str("component", "redis-store").Logger(),
	}
}

// Ping verifies the Redis server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load returns the stored document for kind, or the kind's default if the
// hash field has never been written.
func (s *RedisStore) Load(ctx context.Context, kind string) (json.RawMessage, error) {
	if !KnownKind(kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	data, err := s.client.HGet(ctx, s.key, kind).Bytes()
	if errors.Is(err, redis.Nil) {
		return defaultDoc(kind), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return json.RawMessage(data), nil
}

// Save replaces the document for kind. HSET is atomic on the server side.
func (s *RedisStore) Save(ctx context.Context, kind string, doc json.RawMessage) (json.RawMessage, error) {
	if !KnownKind(kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	if err := s.client.HSet(ctx, s.key, kind, []byte(doc)).Err(); err != nil {
		return nil, fmt.Errorf("save %s: %w", kind, err)
	}

	s.logger.Debug().Str("kind", kind).Int("bytes", len(doc)).Msg("document saved")
	return doc, nil
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Key returns the Redis hash key holding the state documents.
func (s *RedisStore) Key() string { return s.key }
