package store

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, "proxydeck:", cfg.Prefix)
}

func TestRedisConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.example.com:6380")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_STATE_PREFIX", "test:")

	cfg := RedisConfigFromEnv()
	assert.Equal(t, "redis.example.com:6380", cfg.Addr)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 3, cfg.DB)
	assert.Equal(t, "test:", cfg.Prefix)
}

func TestRedisConfigFromEnvDefaults(t *testing.T) {
	// No env vars set, should return defaults.
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("REDIS_STATE_PREFIX", "")

	cfg := RedisConfigFromEnv()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, "proxydeck:", cfg.Prefix)
}

func TestRedisConfigFromEnvInvalidDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := RedisConfigFromEnv()
	assert.Equal(t, 0, cfg.DB) // falls back to default
}

func TestRedisStoreKeyLayout(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Prefix = "proxydeck:test:"

	s := NewRedisStore(cfg, zerolog.Nop())
	t.Cleanup(func() { s.Close() })

	assert.Equal(t, "proxydeck:test:state", s.Key())
}
