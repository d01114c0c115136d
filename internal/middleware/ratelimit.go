package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Varun5711/shortlinks/internal/logger"
)

// RateLimiter is a sliding-window limiter keyed by client IP, backed by a
// Redis sorted set per client. It fails open when Redis is unreachable.
type RateLimiter struct {
	redis     *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
	log       *logger.Logger
}

// slidingWindow trims KEYS[1] to the window ending at ARGV[1] (ms), then
// admits the request if fewer than ARGV[3] remain. It returns
// {admitted, count including this request, oldest score when rejected}.
// Rejected requests are not recorded, so a blocked client recovers as soon as
// its oldest admitted request leaves the window.
var slidingWindow = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
local count = redis.call("ZCARD", KEYS[1])
if count >= limit then
	local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
	local score = 0
	if #oldest == 2 then
		score = tonumber(oldest[2])
	end
	return {0, count, score}
end

redis.call("ZADD", KEYS[1], now, now .. "-" .. ARGV[4])
redis.call("PEXPIRE", KEYS[1], window)
return {1, count + 1, 0}
`)

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		redis:     redisClient,
		limit:     limit,
		window:    window,
		keyPrefix: "ratelimit:",
		log:       log,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.keyPrefix + ClientIP(r)

		allowed, remaining, resetTime := rl.allowRequest(r.Context(), key)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allowRequest(ctx context.Context, key string) (bool, int, time.Time) {
	now := time.Now()

	res, err := slidingWindow.Run(ctx, rl.redis, []string{key},
		now.UnixMilli(), rl.window.Milliseconds(), rl.limit, uuid.NewString()).Int64Slice()
	if err != nil || len(res) != 3 {
		rl.log.Warn("Rate limiter unavailable, allowing request: %v", err)
		return true, rl.limit, now.Add(rl.window)
	}

	allowed, count, oldest := res[0] == 1, int(res[1]), res[2]
	if !allowed {
		resetTime := now.Add(rl.window)
		if oldest > 0 {
			resetTime = time.UnixMilli(oldest).Add(rl.window)
		}
		return false, 0, resetTime
	}
	return true, rl.limit - count, now.Add(rl.window)
}
