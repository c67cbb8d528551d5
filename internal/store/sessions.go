package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// AdminSession is one logged-in admin. Lifetime is fixed from CreatedAt; there
// is no sliding renewal, so expiry is a pure function of this row.
type AdminSession struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	SourceIP  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionStore struct {
	db DBTX
}

func (s *SessionStore) Create(ctx context.Context, session *AdminSession) error {
	query := `
        INSERT INTO admin_sessions (token, username, source_ip)
        VALUES ($1, $2, $3)
        RETURNING created_at
    `
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		session.Token,
		session.Username,
		session.SourceIP,
	).Scan(&session.CreatedAt)
}

func (s *SessionStore) Get(ctx context.Context, token string) (*AdminSession, error) {
	query := `
        SELECT token, username, source_ip, created_at
        FROM admin_sessions
        WHERE token = $1
    `
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var session AdminSession
	err := s.db.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.Username,
		&session.SourceIP,
		&session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM admin_sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCreatedBefore removes sessions older than cutoff. Expiry is enforced
// lazily on access; this only keeps the table from growing unbounded.
func (s *SessionStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM admin_sessions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
