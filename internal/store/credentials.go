package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// AdminCredential is the single admin identity. MustRotate is set when the
// record was bootstrap-generated with the default password.
type AdminCredential struct {
	Username   string    `json:"username"`
	Password   password  `json:"-"`
	MustRotate bool      `json:"must_rotate"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// password keeps the plaintext (when freshly set) and hash together so the
// plaintext never ends up in a struct that gets serialized.
type password struct {
	text *string `json:"-"`
	hash []byte  `json:"-"`
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type CredentialStore struct {
	db DBTX
}

// Get returns the admin credential record, or ErrNotFound before bootstrap.
func (s *CredentialStore) Get(ctx context.Context) (*AdminCredential, error) {
	query := `
        SELECT username, password_hash, must_rotate, created_at, updated_at
        FROM admin_credentials
        LIMIT 1
    `
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var cred AdminCredential
	err := s.db.QueryRow(ctx, query).Scan(
		&cred.Username,
		&cred.Password.hash,
		&cred.MustRotate,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (s *CredentialStore) Create(ctx context.Context, cred *AdminCredential) error {
	query := `
        INSERT INTO admin_credentials (username, password_hash, must_rotate)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at
    `
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		cred.Username,
		cred.Password.hash,
		cred.MustRotate,
	).Scan(&cred.CreatedAt, &cred.UpdatedAt)
}
