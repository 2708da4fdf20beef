// Package cache defines the shared key-value cache used for geocode results,
// the station catalog snapshot, and computed route plans. Entries are
// immutable once written; a racing recomputation simply overwrites an entry
// with an equivalent value, so no locking beyond the store's own is needed.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key-value store. Implementations must treat a missing key as
// (nil, false, nil), not an error.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value with the given TTL. Zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
