package matches

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisProposalLimiter counts proposals per user in a sliding window using
// a Redis counter with TTL. A nil client disables limiting, which keeps
// local development working without Redis.
type RedisProposalLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewRedisProposalLimiter(client *redis.Client, max int, window time.Duration) *RedisProposalLimiter {
	return &RedisProposalLimiter{client: client, max: max, window: window}
}

func (l *RedisProposalLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	if l.client == nil {
		return true, nil
	}

	key := fmt.Sprintf("proposals:%d", userID)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First proposal in the window starts the clock
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(l.max), nil
}
