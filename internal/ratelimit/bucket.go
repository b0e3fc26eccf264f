package ratelimit

import "time"

// Bucket names an independently configured rate limit class.
type Bucket string

const (
	// BucketCheckout covers checkout creation, the most abuse-prone surface.
	BucketCheckout Bucket = "checkout"
	// BucketForm covers form submissions such as subscribe and answer posts.
	BucketForm Bucket = "form"
	// BucketGeneral covers ordinary read traffic under the API prefix.
	BucketGeneral Bucket = "general"
)

// LimitConfig defines a ceiling over a trailing window.
type LimitConfig struct {
	Max    int64
	Window time.Duration
}

// Policy maps buckets to their configured limits.
type Policy map[Bucket]LimitConfig

// DefaultPolicy returns the production bucket configuration.
func DefaultPolicy() Policy {
	return Policy{
		BucketCheckout: {Max: 10, Window: time.Minute},
		BucketForm:     {Max: 5, Window: time.Minute},
		BucketGeneral:  {Max: 60, Window: time.Minute},
	}
}

// FailMode controls what happens when the backing store is unavailable.
type FailMode int

const (
	// FailOpen allows the request when the store errors. This trades strict
	// enforcement for availability and is the default.
	FailOpen FailMode = iota
	// FailClosed denies the request when the store errors.
	FailClosed
)

// ParseFailMode maps a configuration string to a FailMode.
// Unrecognized values fall back to FailOpen.
func ParseFailMode(s string) FailMode {
	if s == "closed" {
		return FailClosed
	}

	return FailOpen
}
