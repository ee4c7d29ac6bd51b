package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, 1024, cfg.WriteBufferSize)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.False(t, cfg.RedisEnabled)
	require.NotNil(t, cfg.Redis)
	assert.Equal(t, "chat:history", cfg.Redis.Key)
	assert.EqualValues(t, 100, cfg.Redis.Limit)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("WS_RECONNECT_DELAY", "2s")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_HISTORY_KEY", "dash:chat")
	t.Setenv("REDIS_HISTORY_LIMIT", "500")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.ReconnectDelay)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "dash:chat", cfg.Redis.Key)
	assert.EqualValues(t, 500, cfg.Redis.Limit)
}

func TestInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("WS_READ_BUFFER", "not-a-number")
	t.Setenv("WS_RECONNECT_DELAY", "-3s")

	cfg := Load()
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
}
