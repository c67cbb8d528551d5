package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("resource not found")
	QueryTimeoutDuration = time.Second * 5
)

// DBTX is the subset of pgxpool.Pool the stores use. pgxmock satisfies it too,
// which is what the store tests run against.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Storage struct {
	Reviews interface {
		Create(context.Context, *Review) error
		UpdateStatus(ctx context.Context, id, status string) error
		List(context.Context, Filter) ([]Review, error)
		Stats(context.Context) (*Stats, error)
	}
	Sessions interface {
		Create(context.Context, *AdminSession) error
		Get(ctx context.Context, token string) (*AdminSession, error)
		Delete(ctx context.Context, token string) error
		DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
	Credentials interface {
		Get(context.Context) (*AdminCredential, error)
		Create(context.Context, *AdminCredential) error
	}
	RateLimit interface {
		Reserve(ctx context.Context, sourceIP string, limit int, window time.Duration) (bool, time.Duration, error)
	}
	Csrf interface {
		Issue(ctx context.Context, sessionID, token string) (string, error)
		Get(ctx context.Context, sessionID string) (string, error)
	}
}

func NewStorage(db DBTX) Storage {
	return Storage{
		Reviews:     &ReviewStore{db},
		Sessions:    &SessionStore{db},
		Credentials: &CredentialStore{db},
		RateLimit:   &RateLimitStore{db},
		Csrf:        &CsrfStore{db},
	}
}
