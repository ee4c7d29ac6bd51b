// Package config loads server settings from the environment, falling
// back to defaults for any missing values.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Sahana-1004/HCI-CIA-2/src/storage"
)

// Config holds the server configuration.
type Config struct {
	Addr            string
	ReadBufferSize  int
	WriteBufferSize int
	ReconnectDelay  time.Duration
	Redis           *storage.HistoryConfig
	RedisEnabled    bool
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		ReconnectDelay:  5 * time.Second,
		Redis:           storage.DefaultHistoryConfig(),
	}
}

// Load reads configuration from environment variables. Redis history is
// enabled only when REDIS_ADDR is set.
func Load() *Config {
	cfg := Default()

	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if v := os.Getenv("WS_READ_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReadBufferSize = n
		}
	}
	if v := os.Getenv("WS_WRITE_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WriteBufferSize = n
		}
	}
	if v := os.Getenv("WS_RECONNECT_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReconnectDelay = d
		}
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisEnabled = true
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if key := os.Getenv("REDIS_HISTORY_KEY"); key != "" {
		cfg.Redis.Key = key
	}
	if v := os.Getenv("REDIS_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Redis.Limit = n
		}
	}

	return cfg
}
