// Package cache provides the result cache of the sales analytics query: a key-value store whose
// entries expire a fixed TTL after they are written, plus the read-through and circuit breaker decorators.
package cache

import (
	"context"
	"errors"
)

// ErrCacheUnavailable wraps every failure of the cache backend.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Cache stores opaque values. The entry lifetime is a property of the cache, fixed at construction.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
