package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wanderlust"

	"github.com/google/uuid"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

var _ Reviews = (*ReviewRepository)(nil)

const (
	insertReviewSQL = `INSERT INTO reviews (id, listing_id, author_id, body, rating, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	selectReviewByIDSQL = `SELECT id, listing_id, author_id, body, rating, created_at FROM reviews WHERE id = ?`

	// Joins the author so show pages render usernames without N+1 lookups.
	selectReviewsForListingSQL = `SELECT r.id, r.listing_id, r.author_id, r.body, r.rating, r.created_at, u.username, u.email
    FROM reviews r JOIN users u ON u.id = r.author_id
    WHERE r.listing_id = ? ORDER BY r.created_at ASC`

	deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

	touchListingSQL = `UPDATE listings SET updated_at = ? WHERE id = ?`
)

// Create inserts the review and touches its listing inside one transaction,
// so a failure leaves neither write behind.
func (r *ReviewRepository) Create(ctx context.Context, review *wanderlust.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	} else {
		review.CreatedAt = review.CreatedAt.UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertReviewSQL,
		review.ID, review.ListingID, review.AuthorID, review.Body, review.Rating, review.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert review %q: %w", review.ID, err)
	}
	if _, err := tx.ExecContext(ctx, touchListingSQL, review.CreatedAt, review.ListingID); err != nil {
		return fmt.Errorf("touch listing %q: %w", review.ListingID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review insert: %w", err)
	}
	return nil
}

// GetByID fetches one review. Returns (nil, nil) if not found.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*wanderlust.Review, error) {
	var rv wanderlust.Review
	err := r.db.QueryRowContext(ctx, selectReviewByIDSQL, id).
		Scan(&rv.ID, &rv.ListingID, &rv.AuthorID, &rv.Body, &rv.Rating, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select review %q: %w", id, err)
	}
	return &rv, nil
}

// ListForListing returns the listing's reviews oldest first, each with its
// author populated.
func (r *ReviewRepository) ListForListing(ctx context.Context, listingID string) ([]wanderlust.Review, error) {
	rows, err := r.db.QueryContext(ctx, selectReviewsForListingSQL, listingID)
	if err != nil {
		return nil, fmt.Errorf("select reviews for listing %q: %w", listingID, err)
	}
	defer rows.Close()

	out := make([]wanderlust.Review, 0, 8)
	for rows.Next() {
		var (
			rv wanderlust.Review
			au wanderlust.User
		)
		if err := rows.Scan(&rv.ID, &rv.ListingID, &rv.AuthorID, &rv.Body, &rv.Rating, &rv.CreatedAt,
			&au.Username, &au.Email); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		au.ID = rv.AuthorID
		rv.Author = &au
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return out, nil
}

// Delete removes the review and touches its listing inside one transaction.
func (r *ReviewRepository) Delete(ctx context.Context, listingID, reviewID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteReviewSQL, reviewID); err != nil {
		return fmt.Errorf("delete review %q: %w", reviewID, err)
	}
	if _, err := tx.ExecContext(ctx, touchListingSQL, time.Now().UTC(), listingID); err != nil {
		return fmt.Errorf("touch listing %q: %w", listingID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review delete: %w", err)
	}
	return nil
}
