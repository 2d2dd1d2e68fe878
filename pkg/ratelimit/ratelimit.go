package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckAndSet reserves key for the given window. It returns false when the
// key is already held. A nil client never limits.
func CheckAndSet(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (bool, error) {
	if rdb == nil || window <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, prefixed(key), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func TTL(ctx context.Context, rdb *redis.Client, key string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, prefixed(key)).Result()
}

func Clear(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, prefixed(key)).Result()
	return err
}

func prefixed(key string) string {
	return "rate_limit:" + key
}
