package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a Cache kept in a Redis server, expiry is enforced by the server.
type Redis struct {
	client *redis.Client
	log    zerolog.Logger
}

// OpenRedis connects to the server at 'url' (redis://[:password@]host:port/db).
func OpenRedis(ctx context.Context, url string, log zerolog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cannot reach redis: %w", err)
	}
	return &Redis{client: client, log: log.With().Str("component", "cache").Logger()}, nil
}

// Close closes the connection.
func (c *Redis) Close() error { return c.client.Close() }

func (c *Redis) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := c.client.Get(ctx, Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot read cache entry")
		return nil, false
	}
	if !json.Valid(raw) {
		c.client.Del(ctx, Prefix+key)
		return nil, false
	}
	return raw, true
}

func (c *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot encode cache entry")
		return
	}
	if err := c.client.Set(ctx, Prefix+key, data, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot write cache entry")
	}
}
