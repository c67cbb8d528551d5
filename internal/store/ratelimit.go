package store

import (
	"context"
	"time"
)

// RateLimitStore is the durable sliding-window submission log. The log itself
// is the limiter's state, so the window survives process restarts.
type RateLimitStore struct {
	db DBTX
}

// Reserve prunes entries that fell out of the window, counts what the caller's
// address has left, and either records a new attempt or refuses. The whole
// check-then-append runs in one transaction under a per-address advisory lock,
// so two concurrent submissions from the same address cannot both slip under
// the cap.
//
// When refused, the returned duration is how long until the oldest surviving
// entry leaves the window.
func (s *RateLimitStore) Reserve(ctx context.Context, sourceIP string, limit int, window time.Duration) (bool, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, sourceIP); err != nil {
		return false, 0, err
	}

	cutoff := time.Now().Add(-window)

	if _, err := tx.Exec(ctx, `DELETE FROM rate_limit_events WHERE occurred_at < $1`, cutoff); err != nil {
		return false, 0, err
	}

	var (
		count  int
		oldest *time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), MIN(occurred_at) FROM rate_limit_events WHERE source_ip = $1`,
		sourceIP,
	).Scan(&count, &oldest)
	if err != nil {
		return false, 0, err
	}

	if count >= limit {
		retryAfter := window
		if oldest != nil {
			retryAfter = time.Until(oldest.Add(window))
		}
		if retryAfter < 0 {
			retryAfter = 0
		}
		// Refused attempts do not append an entry.
		return false, retryAfter, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO rate_limit_events (source_ip) VALUES ($1)`, sourceIP); err != nil {
		return false, 0, err
	}

	return true, 0, tx.Commit(ctx)
}
