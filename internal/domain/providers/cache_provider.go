package providers

import (
	"context"
	"time"
)

// CacheProvider defines the shared counter store used for submission rate limiting
type CacheProvider interface {
	// Increment bumps the counter at key, starting a new window when the key
	// is absent, and returns the new count and the time left in the window
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
