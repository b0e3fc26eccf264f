package store

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindowScript prunes expired members, records the current request
// and reads the window state in a single server-side operation. Concurrent
// requests for the same key therefore never lose updates.
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
local count = redis.call('ZCARD', KEYS[1])
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
return {count, oldest[2]}
`)

// RateLimitRedisStore is a Redis-backed implementation of ratelimit.Store
// using a sorted set per key, scored by request time in milliseconds.
type RateLimitRedisStore struct {
	client *redis.Client
	prefix string
	seq    atomic.Uint64
}

// NewRateLimitRedisStore creates a new Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()
	cutoff := now.Add(-window).UnixMilli()

	// Member must be unique per request; a nanosecond timestamp plus a
	// process-local sequence avoids collisions within the same tick.
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(s.seq.Add(1), 10)

	res, err := slidingWindowScript.Run(ctx, s.client,
		[]string{s.prefix + key},
		cutoff,
		now.UnixMilli(),
		member,
		window.Milliseconds(),
	).Slice()
	if err != nil {
		return 0, time.Time{}, err
	}

	return parseWindowReply(res)
}

// parseWindowReply decodes the {count, oldest score} pair the script
// returns. The script just wrote a member, so both elements must be
// present; anything else means the key holds corrupted state and is
// reported as an error instead of being passed off as an empty window.
func parseWindowReply(res []interface{}) (int64, time.Time, error) {
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit reply has %d elements, want 2", len(res))
	}

	count, ok := res[0].(int64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("rate limit count has type %T, want int64", res[0])
	}

	raw, ok := res[1].(string)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("rate limit score has type %T, want string", res[1])
	}

	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid rate limit score %q: %w", raw, err)
	}

	return count, time.UnixMilli(int64(ms)), nil
}
