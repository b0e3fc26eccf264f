package audit

import "context"

// Store defines the interface for persisting audit events.
type Store interface {
	SaveAuthAttempt(ctx context.Context, event *AuthAttemptEvent) error
	SaveRateLimitExceeded(ctx context.Context, event *RateLimitExceededEvent) error
}
