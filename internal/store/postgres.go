package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/storefront-gate/internal/audit"
)

// AuditPostgresStore is a PostgreSQL implementation of audit.Store.
type AuditPostgresStore struct {
	pool *pgxpool.Pool
}

// NewAuditPostgresStore creates a new PostgreSQL-backed audit store.
func NewAuditPostgresStore(pool *pgxpool.Pool) *AuditPostgresStore {
	return &AuditPostgresStore{pool: pool}
}

// EnsureSchema creates the audit tables if they do not exist. The consumer
// calls this once on startup.
func (p *AuditPostgresStore) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS auth_attempts (
			id BIGSERIAL PRIMARY KEY,
			outcome TEXT NOT NULL,
			client_ip TEXT NOT NULL,
			user_agent TEXT,
			request_id TEXT,
			occurred_at TIMESTAMPTZ NOT NULL
		)`,
		`
		CREATE TABLE IF NOT EXISTS rate_limit_events (
			id BIGSERIAL PRIMARY KEY,
			bucket TEXT NOT NULL,
			client_ip TEXT NOT NULL,
			path TEXT NOT NULL,
			max_requests BIGINT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := p.pool.Exec(ctx, query); err != nil {
			return err
		}
	}

	return nil
}

func (p *AuditPostgresStore) SaveAuthAttempt(ctx context.Context, event *audit.AuthAttemptEvent) error {
	query := `
		INSERT INTO auth_attempts (outcome, client_ip, user_agent, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		event.Outcome,
		event.ClientIP,
		event.UserAgent,
		event.RequestID,
		event.OccurredAt,
	)

	return err
}

func (p *AuditPostgresStore) SaveRateLimitExceeded(ctx context.Context, event *audit.RateLimitExceededEvent) error {
	query := `
		INSERT INTO rate_limit_events (bucket, client_ip, path, max_requests, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		event.Bucket,
		event.ClientIP,
		event.Path,
		event.Limit,
		event.OccurredAt,
	)

	return err
}

var _ audit.Store = (*AuditPostgresStore)(nil)
