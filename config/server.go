package config

import (
	"os"
	"strconv"
)

// ServerConfig holds backend server configuration.
type ServerConfig struct {
	ListenAddr string // HTTP listen address, default ":8787"
	DataDir    string // file store directory, default "./data"
	UseRedis   bool   // probe Redis for state storage, default true
	DevLog     bool   // human-readable console logging, default false
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr: ":8787",
		DataDir:    "./data",
		UseRedis:   true,
	}
}

// FromEnv loads server configuration from environment variables, falling
// back to defaults for any missing values.
func FromEnv() *ServerConfig {
	cfg := DefaultConfig()

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if v := os.Getenv("USE_REDIS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseRedis = b
		}
	}
	if v := os.Getenv("DEV_LOG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DevLog = b
		}
	}
	return cfg
}
