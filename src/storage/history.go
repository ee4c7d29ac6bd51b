package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sahana-1004/HCI-CIA-2/src/codec"
	"github.com/Sahana-1004/HCI-CIA-2/src/types"
)

// HistoryConfig holds connection settings for the Redis chat history.
type HistoryConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	Key      string // list key, default "chat:history"
	Limit    int64  // retained messages, default 100
}

// DefaultHistoryConfig returns a HistoryConfig with sensible defaults.
func DefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		Addr:  "localhost:6379",
		Key:   "chat:history",
		Limit: 100,
	}
}

// History is a capped recent-message log backed by a Redis list.
// Appends are best-effort; the relay never waits on them.
type History struct {
	client *redis.Client
	key    string
	limit  int64
	logger zerolog.Logger
}

// NewHistory creates a history log using the given Redis settings.
func NewHistory(cfg *HistoryConfig, logger zerolog.Logger) *History {
	key := cfg.Key
	if key == "" {
		key = "chat:history"
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 100
	}
	return &History{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		key:    key,
		limit:  limit,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Start verifies the Redis connection is reachable.
func (h *History) Start(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

// AppendMessage pushes an envelope onto the history list and trims the
// list to the retention limit in one round trip.
func (h *History) AppendMessage(ctx context.Context, env types.Envelope) error {
	pipe := h.client.Pipeline()
	pipe.LPush(ctx, h.key, codec.Encode(env))
	pipe.LTrim(ctx, h.key, 0, h.limit-1)
	_, err := pipe.Exec(ctx)
	return err
}

// Recent returns up to n of the most recent envelopes, newest first.
// Entries that no longer decode are skipped.
func (h *History) Recent(ctx context.Context, n int64) ([]types.Envelope, error) {
	if n <= 0 || n > h.limit {
		n = h.limit
	}
	raw, err := h.client.LRange(ctx, h.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]types.Envelope, 0, len(raw))
	for _, item := range raw {
		env, err := codec.Decode([]byte(item))
		if err != nil {
			h.logger.Warn().Err(err).Msg("skipping undecodable history entry")
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

// Close releases the Redis connection.
func (h *History) Close() error {
	return h.client.Close()
}
