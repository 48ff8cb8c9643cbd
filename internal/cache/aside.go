package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Aside is a small cache-aside helper: get-or-compute with explicit
// invalidation at the write sites that own the underlying state. Concurrent
// misses for the same key are collapsed to one compute call.
type Aside struct {
	store Store
	group singleflight.Group
}

// NewAside wraps a Store with get-or-compute semantics.
func NewAside(store Store) *Aside {
	return &Aside{store: store}
}

// GetOrCompute returns the cached value for key, or runs compute, stores
// its result with ttl and returns it. A failed store write does not fail
// the call; the computed value is still returned.
func (a *Aside) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (string, error)) (string, error) {
	if v, ok, err := a.store.Get(ctx, key); err == nil && ok {
		return v, nil
	}

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have filled the
		// key while we waited.
		if v, ok, err := a.store.Get(ctx, key); err == nil && ok {
			return v, nil
		}
		computed, err := compute(ctx)
		if err != nil {
			return "", err
		}
		_ = a.store.Set(ctx, key, computed, ttl)
		return computed, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate deletes key from the underlying store.
func (a *Aside) Invalidate(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}
