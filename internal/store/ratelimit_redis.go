package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// RateLimitRedisStore is a sliding-window ratelimit.Store shared across
// server instances. Each key is a sorted set of request timestamps.
type RateLimitRedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRateLimitRedisStore creates a Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{client: client, now: time.Now}
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := s.now()
	cutoff := now.Add(-window).UnixMicro()
	redisKey := rateLimitPrefix + key

	var count *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: uuid.NewString()})
		count = pipe.ZCard(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, window)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record request: %w", err)
	}

	return count.Val(), nil
}
