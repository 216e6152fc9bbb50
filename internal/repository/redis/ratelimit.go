package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// reserveWindow keeps one sorted-set member per accepted hit, scored by its
// time in ms. Refused hits are not recorded, so a caller that keeps retrying
// is let through as soon as its oldest accepted hit leaves the window.
//
// Reply: {allowed, hits in window, wait ms}.
var reserveWindow = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local used = redis.call('ZCARD', key)
if used >= limit then
  local wait = window
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then
    wait = tonumber(oldest[2]) + window - now
  end
  if wait < 0 then wait = 0 end
  return {0, used, wait}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, used + 1, 0}
`)

// SlidingWindowLimiter caps accepted hits per subject within a rolling
// window. A nil limiter, or one with a non-positive limit, allows everything.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindowLimiter(
	rdb *redis.Client,
	scope string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a hit for subject if the window has room. When it does not,
// retryAfter tells how long until the oldest hit expires.
func (l *SlidingWindowLimiter) Allow(
	ctx context.Context,
	subject string,
) (allowed bool, retryAfter time.Duration, err error) {
	const op = "redis.SlidingWindowLimiter.Allow"

	if l == nil || l.rdb == nil || l.limit <= 0 {
		return true, 0, nil
	}

	reply, err := reserveWindow.Run(
		ctx,
		l.rdb,
		[]string{KeyRateLimit(l.scope, subject)},
		l.now().UnixMilli(), l.window.Milliseconds(), l.limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(reply) != 3 {
		return false, 0, fmt.Errorf("%s: unexpected reply %v", op, reply)
	}

	return reply[0] == 1, time.Duration(reply[2]) * time.Millisecond, nil
}
