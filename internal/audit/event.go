package audit

import "time"

// Topics for the security audit stream.
const (
	TopicAuthAttempt = "gate.auth_attempt"
	TopicRateLimited = "gate.rate_limited"
)

// Auth attempt outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidPassword = "invalid_password"
	OutcomeMisconfigured   = "misconfigured"
)

// AuthAttemptEvent is emitted for every password submission.
type AuthAttemptEvent struct {
	Outcome    string    `json:"outcome"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// RateLimitExceededEvent is emitted when the boundary rejects a request
// with 429.
type RateLimitExceededEvent struct {
	Bucket     string    `json:"bucket"`
	ClientIP   string    `json:"clientIp"`
	Path       string    `json:"path"`
	Limit      int64     `json:"limit"`
	OccurredAt time.Time `json:"occurredAt"`
}
