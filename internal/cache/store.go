package cache

import (
	"context"
	"time"
)

// Store is the shared cache surface behind the rate limiter, the token
// cache and the maintenance sweeps. Redis backs it in production; the
// database-backed store is the fallback.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
