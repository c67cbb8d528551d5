package store

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReviewStore(t *testing.T) (*ReviewStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &ReviewStore{mock}, mock
}

func sampleReview() *Review {
	return &Review{
		ID:            "3e9a2f6e-1d24-4c52-9a34-0c9a4d2f1b11",
		BusinessSlug:  "acme",
		CategorySlug:  "auto",
		ReviewerName:  "Jo",
		ReviewerEmail: "jo@x.com",
		Rating:        5,
		Text:          "Great service overall!",
		Status:        StatusPending,
		SourceIP:      "203.0.113.9",
	}
}

var reviewColumns = []string{
	"id", "business_slug", "category_slug", "reviewer_name", "reviewer_email",
	"rating", "review_text", "status", "submitted_at", "moderated_at", "source_ip",
}

func reviewRows(reviews ...Review) *pgxmock.Rows {
	rows := pgxmock.NewRows(reviewColumns)
	for _, r := range reviews {
		rows.AddRow(
			r.ID, r.BusinessSlug, r.CategorySlug, r.ReviewerName, r.ReviewerEmail,
			r.Rating, r.Text, r.Status, r.SubmittedAt, r.ModeratedAt, r.SourceIP,
		)
	}
	return rows
}

func TestReviewStore_Create(t *testing.T) {
	s, mock := setupReviewStore(t)
	review := sampleReview()
	submitted := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(
			review.ID, review.BusinessSlug, review.CategorySlug, review.ReviewerName,
			review.ReviewerEmail, review.Rating, review.Text, StatusPending, review.SourceIP,
		).
		WillReturnRows(pgxmock.NewRows([]string{"submitted_at"}).AddRow(submitted))

	err := s.Create(context.Background(), review)
	require.NoError(t, err)
	assert.Equal(t, submitted, review.SubmittedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewStore_UpdateStatus(t *testing.T) {
	t.Run("moves a pending review to approved", func(t *testing.T) {
		s, mock := setupReviewStore(t)

		mock.ExpectExec(`UPDATE reviews`).
			WithArgs("r-1", StatusApproved).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, s.UpdateStatus(context.Background(), "r-1", StatusApproved))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-moderation flips approved to rejected", func(t *testing.T) {
		s, mock := setupReviewStore(t)

		mock.ExpectExec(`UPDATE reviews`).
			WithArgs("r-1", StatusRejected).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, s.UpdateStatus(context.Background(), "r-1", StatusRejected))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id yields ErrNotFound", func(t *testing.T) {
		s, mock := setupReviewStore(t)

		mock.ExpectExec(`UPDATE reviews`).
			WithArgs("missing", StatusApproved).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := s.UpdateStatus(context.Background(), "missing", StatusApproved)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects a status outside the lifecycle without touching the store", func(t *testing.T) {
		s, mock := setupReviewStore(t)

		err := s.UpdateStatus(context.Background(), "r-1", "deleted")
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReviewStore_List(t *testing.T) {
	t.Run("no filter selects everything newest first", func(t *testing.T) {
		s, mock := setupReviewStore(t)
		r := *sampleReview()
		r.SubmittedAt = time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`FROM reviews ORDER BY submitted_at DESC`).
			WillReturnRows(reviewRows(r))

		got, err := s.List(context.Background(), Filter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, r.ID, got[0].ID)
	})

	t.Run("filters are AND-combined in declaration order", func(t *testing.T) {
		s, mock := setupReviewStore(t)

		mock.ExpectQuery(`WHERE status = \$1 AND business_slug = \$2 AND category_slug = \$3`).
			WithArgs(StatusApproved, "acme", "auto").
			WillReturnRows(reviewRows())

		got, err := s.List(context.Background(), Filter{
			Status:       StatusApproved,
			BusinessSlug: "acme",
			CategorySlug: "auto",
		})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search matches name, text and business case-insensitively", func(t *testing.T) {
		s, mock := setupReviewStore(t)

		mock.ExpectQuery(`reviewer_name ILIKE \$1 OR review_text ILIKE \$1 OR business_slug ILIKE \$1`).
			WithArgs("%plumb%").
			WillReturnRows(reviewRows())

		_, err := s.List(context.Background(), Filter{Search: "plumb"})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure surfaces instead of degrading to empty", func(t *testing.T) {
		s, mock := setupReviewStore(t)

		mock.ExpectQuery(`FROM reviews`).
			WillReturnError(errors.New("relation corrupted"))

		got, err := s.List(context.Background(), Filter{})
		require.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestReviewStore_Stats(t *testing.T) {
	s, mock := setupReviewStore(t)

	mock.ExpectQuery(`SELECT status, COUNT`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(StatusPending, 2).
			AddRow(StatusApproved, 5).
			AddRow(StatusRejected, 1))

	mock.ExpectQuery(`SELECT business_slug, COUNT`).
		WillReturnRows(pgxmock.NewRows([]string{"business_slug", "count"}).
			AddRow("acme", 6).
			AddRow("globex", 2))

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 5, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, map[string]int{"acme": 6, "globex": 2}, stats.Businesses)
	assert.NoError(t, mock.ExpectationsWereMet())
}
