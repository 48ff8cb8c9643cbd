// Package cache defines the TTL key/value contract the chat pipeline and
// deck session layer depend on, plus an in-memory implementation. The
// interface mirrors the minimal surface of an external cache service:
// get, set-with-expiry, delete.
package cache

import (
	"context"
	"time"
)

// TTLs for the three key families held in the cache.
const (
	// DeckSessionTTL bounds how long an activated deck session survives
	// without being read or written.
	DeckSessionTTL = 24 * time.Hour
	// ViewTTL bounds cached conversation-history and conversation-list
	// views.
	ViewTTL = time.Hour
)

// Store is a string key/value store with per-key expiry. Implementations
// must treat an expired key exactly like an absent one.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value and
	// resetting the expiry to now+ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
