package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is one of the three review states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

type Review struct {
	ID            string     `json:"id"`
	BusinessSlug  string     `json:"business_slug"`
	CategorySlug  string     `json:"category_slug"`
	ReviewerName  string     `json:"reviewer_name"`
	ReviewerEmail string     `json:"reviewer_email,omitempty"`
	Rating        int        `json:"rating"` // 1-5
	Text          string     `json:"text"`
	Status        string     `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ModeratedAt   *time.Time `json:"moderated_at,omitempty"`
	SourceIP      string     `json:"source_ip,omitempty"`
}

// Filter narrows List results. Zero-valued fields are ignored; set fields are
// AND-combined. Search matches reviewer_name, text and business_slug
// case-insensitively.
type Filter struct {
	Status       string
	BusinessSlug string
	CategorySlug string
	Search       string
}

type Stats struct {
	Total      int            `json:"total"`
	Pending    int            `json:"pending"`
	Approved   int            `json:"approved"`
	Rejected   int            `json:"rejected"`
	Businesses map[string]int `json:"businesses"`
}

type ReviewStore struct {
	db DBTX
}

func (s *ReviewStore) Create(ctx context.Context, review *Review) error {
	query := `
        INSERT INTO reviews (id, business_slug, category_slug, reviewer_name, reviewer_email, rating, review_text, status, source_ip)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING submitted_at
    `
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		review.ID,
		review.BusinessSlug,
		review.CategorySlug,
		review.ReviewerName,
		review.ReviewerEmail,
		review.Rating,
		review.Text,
		StatusPending,
		review.SourceIP,
	).Scan(&review.SubmittedAt)
}

// UpdateStatus moves a review to the given status and stamps moderated_at.
// The single UPDATE is the whole read-modify-write span, so two racing
// moderation calls serialize on the row and neither update is lost.
func (s *ReviewStore) UpdateStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid review status %q", status)
	}

	query := `
        UPDATE reviews
        SET status = $2, moderated_at = now()
        WHERE id = $1
    `
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ReviewStore) List(ctx context.Context, filter Filter) ([]Review, error) {
	query := `
        SELECT id, business_slug, category_slug, reviewer_name, reviewer_email,
               rating, review_text, status, submitted_at, moderated_at, source_ip
        FROM reviews
    `
	var (
		clauses []string
		args    []any
	)
	addClause := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		addClause("status = $%d", filter.Status)
	}
	if filter.BusinessSlug != "" {
		addClause("business_slug = $%d", filter.BusinessSlug)
	}
	if filter.CategorySlug != "" {
		addClause("category_slug = $%d", filter.CategorySlug)
	}
	if filter.Search != "" {
		addClause("(reviewer_name ILIKE $%[1]d OR review_text ILIKE $%[1]d OR business_slug ILIKE $%[1]d)",
			"%"+filter.Search+"%")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY submitted_at DESC"

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.BusinessSlug,
			&review.CategorySlug,
			&review.ReviewerName,
			&review.ReviewerEmail,
			&review.Rating,
			&review.Text,
			&review.Status,
			&review.SubmittedAt,
			&review.ModeratedAt,
			&review.SourceIP,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (s *ReviewStore) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	stats := &Stats{Businesses: map[string]int{}}

	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM reviews GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		switch status {
		case StatusPending:
			stats.Pending = count
		case StatusApproved:
			stats.Approved = count
		case StatusRejected:
			stats.Rejected = count
		}
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	bizRows, err := s.db.Query(ctx, `SELECT business_slug, COUNT(*) FROM reviews GROUP BY business_slug`)
	if err != nil {
		return nil, err
	}
	defer bizRows.Close()

	for bizRows.Next() {
		var (
			slug  string
			count int
		)
		if err := bizRows.Scan(&slug, &count); err != nil {
			return nil, err
		}
		stats.Businesses[slug] = count
	}
	return stats, bizRows.Err()
}
