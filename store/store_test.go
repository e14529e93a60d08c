package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behavior every Store must have.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, TransactionsKey, "[]"))
	require.NoError(t, s.Set(ctx, TransactionsKey, `[{"id":"1"}]`))
	v, err := s.Get(ctx, TransactionsKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, v, "last write wins")

	require.NoError(t, s.Set(ctx, "cache:fii/market:HGLG11,MXRF11", "x"))
	require.NoError(t, s.Set(ctx, APIKeyKey, "secret"))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache:fii/market:HGLG11,MXRF11", TransactionsKey, APIKeyKey}, keys)

	require.NoError(t, s.Remove(ctx, APIKeyKey))
	require.NoError(t, s.Remove(ctx, APIKeyKey), "removing twice is fine")
	_, err = s.Get(ctx, APIKeyKey)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestDir(t *testing.T) {
	s, err := OpenDir(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	testStore(t, s)
}

func TestDirSharedBetweenInstances(t *testing.T) {
	root := t.TempDir()
	a, err := OpenDir(root)
	require.NoError(t, err)
	b, err := OpenDir(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Set(ctx, TransactionsKey, "from a"))
	v, err := b.Get(ctx, TransactionsKey)
	require.NoError(t, err)
	assert.Equal(t, "from a", v)
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "fii.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	testStore(t, s)
}

func TestWatch(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Set(ctx, TransactionsKey, "initial"))

	var (
		mu   sync.Mutex
		seen []string
	)
	done := Watch(ctx, s, TransactionsKey, time.Millisecond, func(v string, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if !ok {
			v = "<removed>"
		}
		seen = append(seen, v)
	})

	waitFor := func(n int) {
		t.Helper()
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(seen) >= n
		}, time.Second, time.Millisecond)
	}
	require.NoError(t, s.Set(ctx, TransactionsKey, "edited"))
	waitFor(1)
	require.NoError(t, s.Remove(ctx, TransactionsKey))
	waitFor(2)

	cancel()
	<-done
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"edited", "<removed>"}, seen)
}

func TestWatch_DefaultInterval(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, interval := range []time.Duration{0, -time.Second} {
		done := Watch(ctx, s, TransactionsKey, interval, func(string, bool) {
			t.Error("no change expected")
		})
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("Watch(interval=%v) did not stop on a cancelled context", interval)
		}
	}
}
