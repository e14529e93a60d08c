// Package store provides the key-value slots where the application keeps its
// state: the transaction list, the API key, cached responses and notifications.
//
// Values are opaque strings and the last write wins.
package store

import (
	"context"
	"fmt"
	"io/fs"
)

// ErrNotFound is returned by Get for a key that has no value.
var ErrNotFound = fmt.Errorf("key not found: %w", fs.ErrNotExist)

// Well known keys.
const (
	TransactionsKey = "fii-transactions"
	APIKeyKey       = "gemini-api-key"
	NotificationKey = "fii-notifications"
)

// Store is a key-value string storage.
//
// Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
