package shop

import (
	"context"
	"errors"
	"time"
)

// ErrMissingContact indicates a subscription without email or phone.
var ErrMissingContact = errors.New("email or phone required")

// Subscriber is a captured email/SMS signup.
type Subscriber struct {
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubscriberStore persists captured subscribers.
type SubscriberStore interface {
	Save(ctx context.Context, subscriber *Subscriber) error
}
