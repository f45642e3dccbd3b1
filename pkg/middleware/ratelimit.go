package middleware

import (
	"net"
	"net/http"
	"time"

	"studio-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit is a Redis-backed token bucket applied to the public checkout
// route. Disabled (pass-through) when the config says so or Redis is down;
// a broken limiter must never block purchases. The bucket state lives in a
// Redis hash so the limit holds across process instances.
func RateLimit(cfg utils.RedisConfig, rdb *redis.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	if !cfg.RateLimitEnabled || rdb == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	limiterScript := redis.NewScript(`
		local key = KEYS[1]
		local now_ms = tonumber(ARGV[1])
		local capacity = tonumber(ARGV[2])
		local refill_tokens = tonumber(ARGV[3])
		local interval_ms = tonumber(ARGV[4])
		local ttl_seconds = tonumber(ARGV[5])

		local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
		local tokens = tonumber(state[1])
		local last_refill = tonumber(state[2])

		if tokens == nil or last_refill == nil then
			tokens = capacity
			last_refill = now_ms
		end

		if interval_ms > 0 and refill_tokens > 0 then
			local elapsed = math.max(0, now_ms - last_refill)
			local intervals = math.floor(elapsed / interval_ms)
			if intervals > 0 then
				tokens = math.min(capacity, tokens + (intervals * refill_tokens))
				last_refill = last_refill + (intervals * interval_ms)
			end
		end

		local allowed = 0
		if tokens > 0 then
			allowed = 1
			tokens = tokens - 1
		end

		redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
		redis.call('EXPIRE', key, ttl_seconds)

		return allowed
	`)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "ratelimit:" + r.URL.Path + ":" + ip

			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.RateCapacity,
				cfg.RateRefillTokens,
				cfg.RateRefillInterval.Milliseconds(),
				int64(cfg.RateTTL / time.Second),
			}

			allowed, err := limiterScript.Run(r.Context(), rdb, []string{key}, args...).Int64()
			if err != nil {
				// Fail open on limiter errors.
				logger.Warn("Rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if allowed != 1 {
				logger.Info("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseTooManyRequests(w, "Too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
