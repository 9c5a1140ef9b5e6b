package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua script for a “sliding window” on an ordered set.
// KEYS[1] = key
// ARGV[1] = now_ms
// ARGV[2] = window_ms
// ARGV[3] = limit
// ARGV[4] = member (unique)
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

-- remove expired
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
-- add current hit
redis.call('ZADD', key, 'NX', now, member)
local count = redis.call('ZCARD', key)
-- keep TTL ~ window
redis.call('PEXPIRE', key, window)

if count > limit then
  local earliest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local earliestScore = tonumber(earliest[2]) or (now - window)
  local retry_ms = window - (now - earliestScore)
  if retry_ms < 0 then retry_ms = 0 end
  return {0, count, retry_ms}
end
return {1, count, 0}
`

type SlidingWindowLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	script *redis.Script
}

func NewSlidingWindowLimiter(
	rdb *redis.Client,
	prefix string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		script: redis.NewScript(luaSlidingWindow),
	}
}

func (l *SlidingWindowLimiter) key(suffix string) string {
	return fmt.Sprintf("%s:%s", l.prefix, suffix)
}

// Allow records a hit for the given key and reports whether it fits the
// window. On rejection, retry tells the caller how long until the oldest
// hit slides out.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	const op = "redis.SlidingWindowLimiter.Allow"

	now := time.Now().UnixMilli()
	member := randomMember()

	res, err := l.script.Run(
		ctx,
		l.rdb,
		[]string{l.key(key)},
		now,
		l.window.Milliseconds(),
		l.limit,
		member,
	).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("%s:%w", op, err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("%s: unexpected script result %v", op, res)
	}

	allowed, _ := vals[0].(int64)
	count, _ := vals[1].(int64)
	retryMs, _ := vals[2].(int64)

	return allowed == 1, count, time.Duration(retryMs) * time.Millisecond, nil
}

func randomMember() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
