package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements are idempotent and run in order on startup. A corrupt or
// unreachable database fails startup outright; existing data is never
// silently replaced with an empty state.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS reviews (
		id             text PRIMARY KEY,
		business_slug  text NOT NULL,
		category_slug  text NOT NULL,
		reviewer_name  text NOT NULL,
		reviewer_email text NOT NULL,
		rating         int NOT NULL CHECK (rating BETWEEN 1 AND 5),
		review_text    text NOT NULL,
		status         text NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'approved', 'rejected')),
		submitted_at   timestamptz NOT NULL DEFAULT now(),
		moderated_at   timestamptz,
		source_ip      text NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_business ON reviews (business_slug)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_status ON reviews (status)`,

	`CREATE TABLE IF NOT EXISTS admin_sessions (
		token      text PRIMARY KEY,
		username   text NOT NULL,
		source_ip  text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS rate_limit_events (
		id          bigserial PRIMARY KEY,
		source_ip   text NOT NULL,
		occurred_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rate_limit_events_ip ON rate_limit_events (source_ip, occurred_at)`,

	`CREATE TABLE IF NOT EXISTS csrf_tokens (
		session_id text PRIMARY KEY,
		token      text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS admin_credentials (
		username      text PRIMARY KEY,
		password_hash bytea NOT NULL,
		must_rotate   boolean NOT NULL DEFAULT false,
		created_at    timestamptz NOT NULL DEFAULT now(),
		updated_at    timestamptz NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
