package store

import (
	"context"
	"sync"

	"github.com/serroba/storefront-gate/internal/audit"
)

// AuditMemoryStore is an in-memory implementation of audit.Store.
type AuditMemoryStore struct {
	mu          sync.Mutex
	attempts    []*audit.AuthAttemptEvent
	rateLimited []*audit.RateLimitExceededEvent
}

// NewAuditMemoryStore creates a new in-memory audit store.
func NewAuditMemoryStore() *AuditMemoryStore {
	return &AuditMemoryStore{}
}

func (s *AuditMemoryStore) SaveAuthAttempt(_ context.Context, event *audit.AuthAttemptEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts = append(s.attempts, event)

	return nil
}

func (s *AuditMemoryStore) SaveRateLimitExceeded(_ context.Context, event *audit.RateLimitExceededEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rateLimited = append(s.rateLimited, event)

	return nil
}

// AuthAttempts returns the stored auth attempt events.
func (s *AuditMemoryStore) AuthAttempts() []*audit.AuthAttemptEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*audit.AuthAttemptEvent(nil), s.attempts...)
}

// RateLimited returns the stored rate limit events.
func (s *AuditMemoryStore) RateLimited() []*audit.RateLimitExceededEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*audit.RateLimitExceededEvent(nil), s.rateLimited...)
}

var _ audit.Store = (*AuditMemoryStore)(nil)
