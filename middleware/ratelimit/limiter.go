package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result is the outcome of one poll-throttle check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

// Allower decides whether one more request under key fits in the window.
type Allower interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Limiter is a sliding-window limiter kept in Redis sorted sets, so every
// API instance shares one budget per user.
type Limiter struct {
	client    *redis.Client
	keyPrefix string
}

var _ Allower = (*Limiter)(nil)

func NewLimiter(client *redis.Client, keyPrefix string) *Limiter {
	return &Limiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// The whole check-and-record runs as one script so concurrent polls from the
// same user cannot both take the last slot.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		local seq = redis.call('INCR', key .. ':seq')
		redis.call('ZADD', key, now, now .. ':' .. seq)
		local ttl = math.ceil(window_ms / 1000)
		redis.call('EXPIRE', key, ttl)
		redis.call('EXPIRE', key .. ':seq', ttl)
		return {1, limit - current - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local reset_at = 0
	if oldest and #oldest >= 2 then
		reset_at = tonumber(oldest[2]) + window_ms
	end
	return {0, 0, reset_at}
`)

// Allow records one request under key if the window still has room.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()

	values, err := slidingWindow.Run(ctx, l.client, []string{l.keyPrefix + key},
		now.UnixMilli(), now.Add(-window).UnixMilli(), limit, window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis script error: %w", err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("unexpected Redis response length: %d", len(values))
	}

	resetAt := now.Add(window)
	if values[2] > 0 {
		resetAt = time.UnixMilli(values[2])
	}

	return &Result{
		Allowed:   values[0] == 1,
		Remaining: int(values[1]),
		ResetAt:   resetAt,
		Limit:     limit,
	}, nil
}

// Reset clears the budget for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	redisKey := l.keyPrefix + key
	return l.client.Del(ctx, redisKey, redisKey+":seq").Err()
}
