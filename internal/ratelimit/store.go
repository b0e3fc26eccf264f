package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for rate limit data storage.
type Store interface {
	// Record records a request under the given key and reports the number of
	// requests inside the trailing window, plus the timestamp of the oldest
	// request still counted. Expired entries are pruned as part of the same
	// operation, which must be atomic on the store side. Every request is
	// recorded, including ones the caller goes on to deny, so denied
	// attempts consume window budget and hammering a closed limit pushes
	// the reset time further out.
	Record(ctx context.Context, key string, window time.Duration) (count int64, oldest time.Time, err error)
}
