package store

import (
	"context"

	"github.com/serroba/storefront-gate/internal/audit"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of audit.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op audit store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveAuthAttempt(_ context.Context, event *audit.AuthAttemptEvent) error {
	n.logger.Info("auth attempt event received",
		zap.String("outcome", event.Outcome),
		zap.String("clientIp", event.ClientIP),
		zap.Time("occurredAt", event.OccurredAt),
	)

	return nil
}

func (n *Noop) SaveRateLimitExceeded(_ context.Context, event *audit.RateLimitExceededEvent) error {
	n.logger.Info("rate limit event received",
		zap.String("bucket", event.Bucket),
		zap.String("clientIp", event.ClientIP),
		zap.String("path", event.Path),
		zap.Time("occurredAt", event.OccurredAt),
	)

	return nil
}

var _ audit.Store = (*Noop)(nil)
