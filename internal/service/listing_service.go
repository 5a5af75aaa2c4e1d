package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"wanderlust"
	"wanderlust/internal/logger"
	"wanderlust/internal/repository"
	"wanderlust/internal/storage"

	"github.com/google/uuid"
)

// ErrListingNotFound is returned when the requested listing does not exist.
var ErrListingNotFound = errors.New("listing not found")

// ListingService implements the marketplace CRUD around the repositories,
// the geocoder, and the image store.
type ListingService struct {
	listings repository.Listings
	reviews  repository.Reviews
	geocoder Geocoder
	store    storage.Store
	log      *logger.Logger
}

func NewListingService(listings repository.Listings, reviews repository.Reviews, geocoder Geocoder, store storage.Store, log *logger.Logger) *ListingService {
	return &ListingService{
		listings: listings,
		reviews:  reviews,
		geocoder: geocoder,
		store:    store,
		log:      log,
	}
}

var _ Listings = (*ListingService)(nil)

// List returns all listings, newest first. The result set is unbounded.
func (s *ListingService) List(ctx context.Context) ([]wanderlust.Listing, error) {
	return s.listings.GetAll(ctx)
}

// Get fetches one listing with its reviews and their authors populated.
func (s *ListingService) Get(ctx context.Context, id string) (*wanderlust.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	reviews, err := s.reviews.ListForListing(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Reviews = reviews
	return l, nil
}

// Create stores the uploaded image, geocodes the location, and persists the
// new listing. A geocoder miss or failure degrades to a listing without
// geometry. If the insert fails after the image was stored, the file stays
// behind unreferenced; that is logged, not rolled back.
func (s *ListingService) Create(ctx context.Context, in ListingInput, image *multipart.FileHeader) (*wanderlust.Listing, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := &wanderlust.Listing{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Country:     in.Country,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if image != nil {
		img, err := s.saveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		l.Image = img
	}

	l.Geometry = s.resolveGeometry(ctx, in.Location)

	if err := s.listings.Create(ctx, l); err != nil {
		if l.Image.Filename != "" {
			s.log.Warnw("listing_insert_failed_image_orphaned",
				"listing_id", l.ID, "filename", l.Image.Filename, "err", err)
		}
		return nil, err
	}
	return l, nil
}

// Update overwrites the listing's fields; if a new file was uploaded the
// image is replaced in a second write. Without a new file the stored image
// is preserved exactly.
func (s *ListingService) Update(ctx context.Context, id string, in ListingInput, image *multipart.FileHeader) (*wanderlust.Listing, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}

	l.Title = in.Title
	l.Description = in.Description
	l.Price = in.Price
	l.Country = in.Country
	if in.Location != l.Location {
		l.Location = in.Location
		l.Geometry = s.resolveGeometry(ctx, in.Location)
	}
	l.UpdatedAt = time.Now().UTC()

	if err := s.listings.Update(ctx, l); err != nil {
		return nil, err
	}

	if image != nil {
		img, err := s.saveImage(ctx, image)
		if err != nil {
			return nil, err
		}
		if err := s.listings.UpdateImage(ctx, id, img); err != nil {
			return nil, err
		}
		l.Image = img
	}
	return l, nil
}

// Delete removes the listing only. Its reviews stay queryable by ID and the
// stored image is not removed.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l == nil {
		return ErrListingNotFound
	}
	return s.listings.Delete(ctx, id)
}

// resolveGeometry geocodes the location string. Both an empty candidate list
// and a transport/decode failure degrade to nil geometry; failures are
// logged so a broken geocoder is visible.
func (s *ListingService) resolveGeometry(ctx context.Context, location string) *wanderlust.Geometry {
	pt, err := s.geocoder.Forward(ctx, location)
	if err != nil {
		s.log.Warnw("geocode_failed", "location", location, "err", err)
		return nil
	}
	if pt == nil {
		return nil
	}
	return &wanderlust.Geometry{
		Type:        "Point",
		Coordinates: [2]float64{pt.Lon, pt.Lat},
	}
}

func (s *ListingService) saveImage(ctx context.Context, fh *multipart.FileHeader) (wanderlust.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return wanderlust.Image{}, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()
	return s.store.Save(ctx, f, fh.Filename)
}

func validateInput(in ListingInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return errors.New("title is required")
	case strings.TrimSpace(in.Location) == "":
		return errors.New("location is required")
	case in.Price < 0:
		return errors.New("price must not be negative")
	}
	return nil
}
