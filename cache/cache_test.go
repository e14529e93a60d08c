package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/etnz/carteira/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quote struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	c := NewStore(s, zerolog.Nop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var got quote
	assert.False(t, Lookup(ctx, c, "market", &got), "empty cache")

	c.Set(ctx, "market", quote{"HGLG11", 160.5}, time.Hour)
	raw, err := s.Get(ctx, Prefix+"market")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"ticker":"HGLG11","price":160.5},"expiry":1735736400000}`, raw)

	now = now.Add(59 * time.Minute)
	require.True(t, Lookup(ctx, c, "market", &got))
	assert.Equal(t, quote{"HGLG11", 160.5}, got)

	now = now.Add(2 * time.Minute)
	assert.False(t, Lookup(ctx, c, "market", &got), "expired")
	_, err = s.Get(ctx, Prefix+"market")
	assert.ErrorIs(t, err, store.ErrNotFound, "expired entries are evicted on read")
}

func TestStore_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, Prefix+"news", "{not json"))
	c := NewStore(s, zerolog.Nop())

	_, ok := c.Get(ctx, "news")
	assert.False(t, ok)
	_, err := s.Get(ctx, Prefix+"news")
	assert.ErrorIs(t, err, store.ErrNotFound, "corrupt entries are evicted on read")
}

// TestRedis needs a server, e.g. FII_TEST_REDIS=redis://localhost:6379/15
func TestRedis(t *testing.T) {
	url := os.Getenv("FII_TEST_REDIS")
	if url == "" {
		t.Skip("FII_TEST_REDIS is not set")
	}
	ctx := context.Background()
	c, err := OpenRedis(ctx, url, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	c.Set(ctx, "test-quote", quote{"MXRF11", 10.2}, time.Second)
	var got quote
	require.True(t, Lookup(ctx, c, "test-quote", &got))
	assert.Equal(t, quote{"MXRF11", 10.2}, got)

	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "test-quote")
		return !ok
	}, 3*time.Second, 100*time.Millisecond)
}
