package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func key(address, action string) string {
	return fmt.Sprintf("rate_limit:grinder:%s:%s", address, action)
}

// CheckAndSetRateLimit takes the per-address lock for action. It returns
// false while a previous lock is still alive. A nil client always allows.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, address, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(address, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, address, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(address, action)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, address, action string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, key(address, action)).Result()
	return err
}
