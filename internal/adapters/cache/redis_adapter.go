package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/kinesiogame/encuesta/internal/domain/providers"
	redisclient "github.com/kinesiogame/encuesta/internal/infrastructure/clients/redis"
	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	client redis.Cmdable
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{
		client: client.Client(),
	}
}

// Increment bumps a fixed-window counter. The window starts with the first
// increment and the key expires with it.
func (a *RedisAdapter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := a.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	count := incr.Val()
	remaining := ttl.Val()

	// A negative TTL means the key has no expiry yet, either because this
	// increment created it or because an earlier EXPIRE was lost.
	if remaining < 0 {
		if err := a.client.PExpire(ctx, key, window).Err(); err != nil {
			return count, 0, fmt.Errorf("failed to set counter expiry: %w", err)
		}
		remaining = window
	}

	return count, remaining, nil
}
