package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CsrfStore keeps one anti-forgery token per client browser session. A token
// is minted once and reused for the life of the session; a successful submit
// does not invalidate it.
type CsrfStore struct {
	db DBTX
}

// Issue stores token for the session unless one already exists, and returns
// whichever token is now current. The no-op upsert makes the read-or-mint
// race-free without an explicit transaction.
func (s *CsrfStore) Issue(ctx context.Context, sessionID, token string) (string, error) {
	query := `
        INSERT INTO csrf_tokens (session_id, token)
        VALUES ($1, $2)
        ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
        RETURNING token
    `
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var current string
	if err := s.db.QueryRow(ctx, query, sessionID, token).Scan(&current); err != nil {
		return "", err
	}
	return current, nil
}

func (s *CsrfStore) Get(ctx context.Context, sessionID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var token string
	err := s.db.QueryRow(ctx, `SELECT token FROM csrf_tokens WHERE session_id = $1`, sessionID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}
