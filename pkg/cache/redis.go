// Package cache holds the Redis client used by the rate limiter. A nil
// client is a valid state: callers degrade by disabling rate limiting so
// the booking flow never depends on Redis being up.
package cache

import (
	"context"
	"time"

	"studio-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and pings it with a short timeout.
// Returns nil on failure.
func NewRedisClient(cfg utils.RedisConfig, log *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting disabled",
			zap.String("addr", cfg.Addr),
			zap.Error(err),
		)
		return nil
	}

	return client
}
