package cache

import (
	"context"
	"time"
)

// Cache stores opaque string payloads under a caller-derived key. A miss is
// ("", nil); errors are reserved for backend failures. Eviction policy is an
// implementation detail behind this contract, so a bounded LRU could replace
// the full-clear memory cache without touching callers.
type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}
