package update

import (
	"context"
	"testing"

	"github.com/etnz/carteira/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	testCases := []struct {
		current, latest string
		want            bool
	}{
		{"1.1.0", "1.2.0", true},
		{"v1.2.0", "v1.2.0", false},
		{"1.10.0", "1.9.0", false}, // a lexical comparison says otherwise
		{"1.9.0", "1.10.0", true},
		{"1.2.0", "garbage", false},
	}
	for _, tc := range testCases {
		got := Info{Current: tc.current, Latest: tc.latest}.Available()
		assert.Equal(t, tc.want, got, "%s -> %s", tc.current, tc.latest)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	for _, key := range []string{store.TransactionsKey, store.APIKeyKey, store.NotificationKey, "cache:news"} {
		require.NoError(t, s.Set(ctx, key, "x"))
	}
	removed, err := Apply(ctx, s)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{store.NotificationKey, "cache:news"}, removed)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{store.TransactionsKey, store.APIKeyKey}, keys)
}
