package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a rate limit check, with enough information
// for callers to set X-RateLimit-* and Retry-After headers.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	// ResetAt is when the oldest counted request ages out of the window.
	ResetAt time.Time
}

// RetryAfter returns how long the caller should wait before retrying.
// It is never negative and rounds up to whole seconds.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return 0
	}

	// Round up so callers never retry before the window actually frees up.
	return ((wait + time.Second - 1) / time.Second) * time.Second
}

// Limiter decides whether a request identified by a bucket and client key
// should be allowed.
type Limiter interface {
	Allow(ctx context.Context, bucket Bucket, identifier string) (Decision, error)
}

// BucketLimiter applies sliding-window limits per bucket using a shared store.
// Window state is keyed by "{bucket}:{identifier}" so clients and buckets
// never interact.
type BucketLimiter struct {
	store  Store
	policy Policy
}

// NewBucketLimiter creates a limiter enforcing the given policy.
func NewBucketLimiter(store Store, policy Policy) *BucketLimiter {
	return &BucketLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request and checks it against the bucket's ceiling.
// Buckets absent from the policy are not limited.
func (l *BucketLimiter) Allow(ctx context.Context, bucket Bucket, identifier string) (Decision, error) {
	cfg, ok := l.policy[bucket]
	if !ok {
		return Decision{Allowed: true}, nil
	}

	key := string(bucket) + ":" + identifier

	count, oldest, err := l.store.Record(ctx, key, cfg.Window)
	if err != nil {
		return Decision{}, err
	}

	remaining := cfg.Max - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= cfg.Max,
		Limit:     cfg.Max,
		Remaining: remaining,
		ResetAt:   oldest.Add(cfg.Window),
	}, nil
}

var _ Limiter = (*BucketLimiter)(nil)
