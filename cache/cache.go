// Package cache provides short-lived caching of upstream responses.
//
// Entries are JSON encoded and expire after a time-to-live. A cache is owned
// by the application and injected where it is needed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/etnz/carteira/store"
	"github.com/rs/zerolog"
)

// Cache stores JSON-encodable values for a limited time.
type Cache interface {
	// Get returns the JSON value at key, if it is present and not expired.
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	// Set stores value at key for ttl. Failures are not reported: a cache
	// that cannot store only makes the application slower.
	Set(ctx context.Context, key string, value any, ttl time.Duration)
}

// Lookup decodes the cached value at key into dst.
func Lookup(ctx context.Context, c Cache, key string, dst any) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// Prefix of every key written by the Store cache.
const Prefix = "cache:"

// envelope is the persisted form of an entry.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Expiry int64           `json:"expiry"` // unix milliseconds
}

// Store is a Cache kept in a store.Store.
//
// Expired or unreadable entries are removed when read.
type Store struct {
	store store.Store
	now   func() time.Time
	log   zerolog.Logger
}

// NewStore returns a cache keeping its entries in 's'.
func NewStore(s store.Store, log zerolog.Logger) *Store {
	return &Store{store: s, now: time.Now, log: log.With().Str("component", "cache").Logger()}
}

func (c *Store) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := c.store.Get(ctx, Prefix+key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot read cache entry")
		return nil, false
	}
	var e envelope
	if err := json.Unmarshal([]byte(raw), &e); err != nil || len(e.Data) == 0 {
		c.log.Debug().Str("key", key).Msg("evicting unreadable cache entry")
		c.evict(ctx, key)
		return nil, false
	}
	if c.now().UnixMilli() > e.Expiry {
		c.log.Debug().Str("key", key).Msg("evicting expired cache entry")
		c.evict(ctx, key)
		return nil, false
	}
	return e.Data, true
}

func (c *Store) evict(ctx context.Context, key string) {
	if err := c.store.Remove(ctx, Prefix+key); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot evict cache entry")
	}
}

func (c *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot encode cache entry")
		return
	}
	raw, err := json.Marshal(envelope{Data: data, Expiry: c.now().Add(ttl).UnixMilli()})
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot encode cache entry")
		return
	}
	if err := c.store.Set(ctx, Prefix+key, string(raw)); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cannot write cache entry")
	}
}
