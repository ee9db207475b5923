// Package cache provides the key/value stores behind the home feed cache and
// a JSON cache-aside helper on top of them.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value store with per-entry expiry. Entries are
// written whole, so a reader sees either the complete value or a miss.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A ttl of zero keeps the entry until it is
	// deleted or the store is cleared.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Clear removes every entry owned by the store.
	Clear(ctx context.Context) error
}
