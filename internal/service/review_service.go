package service

import (
	"context"
	"errors"
	"strings"

	"wanderlust"
	"wanderlust/internal/repository"
)

// Domain errors for review flows.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewAuthor = errors.New("requester is not the review author")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// ReviewService creates and deletes reviews with ownership checks.
type ReviewService struct {
	reviews  repository.Reviews
	listings repository.Listings
}

func NewReviewService(reviews repository.Reviews, listings repository.Listings) *ReviewService {
	return &ReviewService{reviews: reviews, listings: listings}
}

var _ Reviews = (*ReviewService)(nil)

// Add creates a review on the listing, tagged with the author. The parent
// listing must exist.
func (s *ReviewService) Add(ctx context.Context, listingID string, authorID int64, body string, rating int) (*wanderlust.Review, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("review body is empty")
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}

	review := &wanderlust.Review{
		ListingID: listingID,
		AuthorID:  authorID,
		Body:      body,
		Rating:    rating,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review after checking it exists, belongs to the listing,
// and was written by the requester. A missing review yields
// ErrReviewNotFound rather than a blind delete.
func (s *ReviewService) Delete(ctx context.Context, listingID, reviewID string, requesterID int64) error {
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if rv == nil || rv.ListingID != listingID {
		return ErrReviewNotFound
	}
	if rv.AuthorID != requesterID {
		return ErrNotReviewAuthor
	}
	return s.reviews.Delete(ctx, listingID, reviewID)
}
