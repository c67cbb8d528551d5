package store

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_SetAndCompare(t *testing.T) {
	var p password
	require.NoError(t, p.Set("s3cret-pass"))

	assert.NoError(t, p.Compare("s3cret-pass"))
	assert.Error(t, p.Compare("wrong-pass"))
}

func TestCredentialStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	s := &CredentialStore{mock}

	t.Run("returns the record with a usable hash", func(t *testing.T) {
		var seed password
		require.NoError(t, seed.Set("s3cret-pass"))
		now := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT username, password_hash, must_rotate, created_at, updated_at FROM admin_credentials`).
			WillReturnRows(pgxmock.NewRows([]string{"username", "password_hash", "must_rotate", "created_at", "updated_at"}).
				AddRow("admin", seed.hash, true, now, now))

		cred, err := s.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "admin", cred.Username)
		assert.True(t, cred.MustRotate)
		assert.NoError(t, cred.Password.Compare("s3cret-pass"))
	})

	t.Run("empty table yields ErrNotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT username, password_hash, must_rotate, created_at, updated_at FROM admin_credentials`).
			WillReturnRows(pgxmock.NewRows([]string{"username", "password_hash", "must_rotate", "created_at", "updated_at"}))

		_, err := s.Get(context.Background())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCredentialStore_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	s := &CredentialStore{mock}

	cred := &AdminCredential{Username: "admin", MustRotate: true}
	require.NoError(t, cred.Password.Set("change-me-now"))
	now := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO admin_credentials`).
		WithArgs("admin", cred.Password.hash, true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, s.Create(context.Background(), cred))
	assert.Equal(t, now, cred.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
