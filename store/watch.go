package store

import (
	"context"
	"errors"
	"time"
)

// DefaultWatchInterval is the polling interval used when Watch is given none.
const DefaultWatchInterval = 2 * time.Second

// Watch polls 'key' every 'interval' and calls fn with the new value each
// time it changes, including when it is removed (value "" and ok false).
//
// The value current when Watch is called is read before it returns and is
// not reported. Polling runs in its own goroutine until ctx is done: cancel
// it to unsubscribe. The returned channel is closed once polling stopped.
// Read errors other than a missing key are skipped, the key is polled again
// later. An interval that is not positive means DefaultWatchInterval.
func Watch(ctx context.Context, s Store, key string, interval time.Duration, fn func(value string, ok bool)) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	last, lastOK, _ := read(ctx, s, key)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			v, ok, err := read(ctx, s, key)
			if err != nil || (v == last && ok == lastOK) {
				continue
			}
			last, lastOK = v, ok
			fn(v, ok)
		}
	}()
	return done
}

func read(ctx context.Context, s Store, key string) (string, bool, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
