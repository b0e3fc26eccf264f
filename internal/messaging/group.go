package messaging

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is anything with a start/stop lifecycle the group can own.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs a set of consumers over one shared subscriber as a
// single unit. The audit binary uses one group covering both audit topics.
type ConsumerGroup struct {
	consumers  []Runnable
	subscriber message.Subscriber
	logger     *zap.Logger
}

// NewConsumerGroup creates an empty group over the given subscriber.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a consumer. Not safe to call after Start.
func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

// Start brings up every consumer. If one fails, the ones already running
// are stopped again so a partially started group never stays up.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	var running []Runnable

	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			for _, started := range running {
				_ = started.Shutdown()
			}

			return fmt.Errorf("starting consumer %d: %w", i, err)
		}

		running = append(running, consumer)
	}

	g.logger.Info("consumers running", zap.Int("count", len(g.consumers)))

	return nil
}

// Shutdown stops every consumer and then closes the shared subscriber.
// Each shutdown is attempted even after a failure; the first error is
// what gets reported.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("stopping consumers")

	var firstErr error

	for _, consumer := range g.consumers {
		if err := consumer.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := g.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}
