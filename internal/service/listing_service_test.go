package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"wanderlust"
	"wanderlust/internal/geocode"
	"wanderlust/internal/logger"
)

type mockListingsRepo struct {
	CreateFn      func(l *wanderlust.Listing) error
	GetAllFn      func() ([]wanderlust.Listing, error)
	GetByIDFn     func(id string) (*wanderlust.Listing, error)
	UpdateFn      func(l *wanderlust.Listing) error
	UpdateImageFn func(id string, img wanderlust.Image) error
	DeleteFn      func(id string) error

	updateImageCalls int
	deleteCalls      int
}

func (m *mockListingsRepo) Create(_ context.Context, l *wanderlust.Listing) error {
	return m.CreateFn(l)
}

func (m *mockListingsRepo) GetAll(_ context.Context) ([]wanderlust.Listing, error) {
	return m.GetAllFn()
}

func (m *mockListingsRepo) GetByID(_ context.Context, id string) (*wanderlust.Listing, error) {
	return m.GetByIDFn(id)
}

func (m *mockListingsRepo) Update(_ context.Context, l *wanderlust.Listing) error {
	return m.UpdateFn(l)
}

func (m *mockListingsRepo) UpdateImage(_ context.Context, id string, img wanderlust.Image) error {
	m.updateImageCalls++
	return m.UpdateImageFn(id, img)
}

func (m *mockListingsRepo) Delete(_ context.Context, id string) error {
	m.deleteCalls++
	return m.DeleteFn(id)
}

type mockReviewsRepo struct {
	CreateFn         func(r *wanderlust.Review) error
	GetByIDFn        func(id string) (*wanderlust.Review, error)
	ListForListingFn func(listingID string) ([]wanderlust.Review, error)
	DeleteFn         func(listingID, reviewID string) error

	deleteCalls int
}

func (m *mockReviewsRepo) Create(_ context.Context, r *wanderlust.Review) error {
	return m.CreateFn(r)
}

func (m *mockReviewsRepo) GetByID(_ context.Context, id string) (*wanderlust.Review, error) {
	return m.GetByIDFn(id)
}

func (m *mockReviewsRepo) ListForListing(_ context.Context, listingID string) ([]wanderlust.Review, error) {
	return m.ListForListingFn(listingID)
}

func (m *mockReviewsRepo) Delete(_ context.Context, listingID, reviewID string) error {
	m.deleteCalls++
	return m.DeleteFn(listingID, reviewID)
}

type mockGeocoder struct {
	ForwardFn func(address string) (*geocode.Point, error)
}

func (m *mockGeocoder) Forward(_ context.Context, address string) (*geocode.Point, error) {
	return m.ForwardFn(address)
}

type mockStore struct {
	SaveFn   func(r io.Reader, originalName string) (wanderlust.Image, error)
	RemoveFn func(filename string) error
}

func (m *mockStore) Save(_ context.Context, r io.Reader, originalName string) (wanderlust.Image, error) {
	return m.SaveFn(r, originalName)
}

func (m *mockStore) Remove(_ context.Context, filename string) error {
	if m.RemoveFn == nil {
		return nil
	}
	return m.RemoveFn(filename)
}

func testLog() *logger.Logger {
	return logger.New(logger.ErrorLevel)
}

func validInput() ListingInput {
	return ListingInput{
		Title:       "Cozy Cabin",
		Description: "A cabin in the woods",
		Price:       120,
		Location:    "Pune, India",
		Country:     "India",
	}
}

func TestListingService_Create_ResolvesGeometry(t *testing.T) {
	var created *wanderlust.Listing
	listings := &mockListingsRepo{
		CreateFn: func(l *wanderlust.Listing) error {
			created = l
			return nil
		},
	}
	geocoder := &mockGeocoder{
		ForwardFn: func(address string) (*geocode.Point, error) {
			if address != "Pune, India" {
				t.Fatalf("geocoder called with %q", address)
			}
			return &geocode.Point{Lat: 18.52, Lon: 73.85}, nil
		},
	}
	svc := NewListingService(listings, &mockReviewsRepo{}, geocoder, &mockStore{}, testLog())

	l, err := svc.Create(context.Background(), validInput(), nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created == nil {
		t.Fatal("repo Create was not called")
	}
	if l.ID == "" {
		t.Error("expected a generated listing id")
	}
	if l.Geometry == nil {
		t.Fatal("expected geometry on resolvable location")
	}
	if l.Geometry.Type != "Point" {
		t.Errorf("geometry type = %q, want Point", l.Geometry.Type)
	}
	// GeoJSON order: [longitude, latitude].
	if l.Geometry.Coordinates != [2]float64{73.85, 18.52} {
		t.Errorf("coordinates = %v", l.Geometry.Coordinates)
	}
}

func TestListingService_Create_GeocoderMissDegrades(t *testing.T) {
	listings := &mockListingsRepo{
		CreateFn: func(l *wanderlust.Listing) error { return nil },
	}
	geocoder := &mockGeocoder{
		ForwardFn: func(address string) (*geocode.Point, error) { return nil, nil },
	}
	svc := NewListingService(listings, &mockReviewsRepo{}, geocoder, &mockStore{}, testLog())

	l, err := svc.Create(context.Background(), validInput(), nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if l.Geometry != nil {
		t.Errorf("expected nil geometry, got %+v", l.Geometry)
	}
}

func TestListingService_Create_GeocoderFailureDegrades(t *testing.T) {
	listings := &mockListingsRepo{
		CreateFn: func(l *wanderlust.Listing) error { return nil },
	}
	geocoder := &mockGeocoder{
		ForwardFn: func(address string) (*geocode.Point, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewListingService(listings, &mockReviewsRepo{}, geocoder, &mockStore{}, testLog())

	l, err := svc.Create(context.Background(), validInput(), nil)
	if err != nil {
		t.Fatalf("geocoder failure must not fail the create, got: %v", err)
	}
	if l.Geometry != nil {
		t.Errorf("expected nil geometry after geocoder failure, got %+v", l.Geometry)
	}
}

func TestListingService_Create_Validation(t *testing.T) {
	svc := NewListingService(&mockListingsRepo{
		CreateFn: func(l *wanderlust.Listing) error {
			t.Fatal("Create should not be called for invalid input")
			return nil
		},
	}, &mockReviewsRepo{}, &mockGeocoder{
		ForwardFn: func(string) (*geocode.Point, error) { return nil, nil },
	}, &mockStore{}, testLog())

	tests := []struct {
		name   string
		mutate func(*ListingInput)
	}{
		{"empty title", func(in *ListingInput) { in.Title = " " }},
		{"empty location", func(in *ListingInput) { in.Location = "" }},
		{"negative price", func(in *ListingInput) { in.Price = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if _, err := svc.Create(context.Background(), in, nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestListingService_Get_PopulatesReviews(t *testing.T) {
	listings := &mockListingsRepo{
		GetByIDFn: func(id string) (*wanderlust.Listing, error) {
			return &wanderlust.Listing{ID: id, Title: "Cabin"}, nil
		},
	}
	reviews := &mockReviewsRepo{
		ListForListingFn: func(listingID string) ([]wanderlust.Review, error) {
			return []wanderlust.Review{{ID: "r1", ListingID: listingID, Rating: 5}}, nil
		},
	}
	svc := NewListingService(listings, reviews, &mockGeocoder{}, &mockStore{}, testLog())

	l, err := svc.Get(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(l.Reviews) != 1 || l.Reviews[0].ID != "r1" {
		t.Fatalf("unexpected reviews: %+v", l.Reviews)
	}
}

func TestListingService_Get_NotFound(t *testing.T) {
	listings := &mockListingsRepo{
		GetByIDFn: func(id string) (*wanderlust.Listing, error) { return nil, nil },
	}
	svc := NewListingService(listings, &mockReviewsRepo{}, &mockGeocoder{}, &mockStore{}, testLog())

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestListingService_Update_WithoutImageKeepsStoredImage(t *testing.T) {
	stored := &wanderlust.Listing{
		ID:       "abc",
		Title:    "Old Title",
		Location: "Pune, India",
		Image:    wanderlust.Image{URL: "/uploads/a.jpg", Filename: "a.jpg"},
	}
	var updated *wanderlust.Listing
	listings := &mockListingsRepo{
		GetByIDFn: func(id string) (*wanderlust.Listing, error) { return stored, nil },
		UpdateFn: func(l *wanderlust.Listing) error {
			updated = l
			return nil
		},
		UpdateImageFn: func(id string, img wanderlust.Image) error { return nil },
	}
	geocoder := &mockGeocoder{
		ForwardFn: func(string) (*geocode.Point, error) {
			t.Fatal("geocoder should not be called when location is unchanged")
			return nil, nil
		},
	}
	svc := NewListingService(listings, &mockReviewsRepo{}, geocoder, &mockStore{}, testLog())

	in := validInput() // same location as stored
	l, err := svc.Update(context.Background(), "abc", in, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated == nil {
		t.Fatal("repo Update was not called")
	}
	if listings.updateImageCalls != 0 {
		t.Errorf("UpdateImage called %d times without an upload", listings.updateImageCalls)
	}
	if l.Image.Filename != "a.jpg" {
		t.Errorf("stored image not preserved: %+v", l.Image)
	}
	if l.Title != in.Title {
		t.Errorf("title = %q, want %q", l.Title, in.Title)
	}
}

func TestListingService_Update_RegeocodesOnLocationChange(t *testing.T) {
	stored := &wanderlust.Listing{ID: "abc", Title: "Cabin", Location: "Pune, India"}
	listings := &mockListingsRepo{
		GetByIDFn: func(id string) (*wanderlust.Listing, error) { return stored, nil },
		UpdateFn:  func(l *wanderlust.Listing) error { return nil },
	}
	calls := 0
	geocoder := &mockGeocoder{
		ForwardFn: func(address string) (*geocode.Point, error) {
			calls++
			return &geocode.Point{Lat: 51.5, Lon: -0.12}, nil
		},
	}
	svc := NewListingService(listings, &mockReviewsRepo{}, geocoder, &mockStore{}, testLog())

	in := validInput()
	in.Location = "London, UK"
	l, err := svc.Update(context.Background(), "abc", in, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("geocoder calls = %d, want 1", calls)
	}
	if l.Geometry == nil || l.Geometry.Coordinates != [2]float64{-0.12, 51.5} {
		t.Fatalf("unexpected geometry: %+v", l.Geometry)
	}
}

func TestListingService_Update_NotFound(t *testing.T) {
	listings := &mockListingsRepo{
		GetByIDFn: func(id string) (*wanderlust.Listing, error) { return nil, nil },
	}
	svc := NewListingService(listings, &mockReviewsRepo{}, &mockGeocoder{}, &mockStore{}, testLog())

	if _, err := svc.Update(context.Background(), "missing", validInput(), nil); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestListingService_Delete(t *testing.T) {
	t.Run("missing listing", func(t *testing.T) {
		listings := &mockListingsRepo{
			GetByIDFn: func(id string) (*wanderlust.Listing, error) { return nil, nil },
			DeleteFn:  func(id string) error { return nil },
		}
		svc := NewListingService(listings, &mockReviewsRepo{}, &mockGeocoder{}, &mockStore{}, testLog())

		if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound, got %v", err)
		}
		if listings.deleteCalls != 0 {
			t.Errorf("Delete called %d times for a missing listing", listings.deleteCalls)
		}
	})

	t.Run("existing listing", func(t *testing.T) {
		listings := &mockListingsRepo{
			GetByIDFn: func(id string) (*wanderlust.Listing, error) {
				return &wanderlust.Listing{ID: id}, nil
			},
			DeleteFn: func(id string) error { return nil },
		}
		svc := NewListingService(listings, &mockReviewsRepo{}, &mockGeocoder{}, &mockStore{}, testLog())

		if err := svc.Delete(context.Background(), "abc"); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		if listings.deleteCalls != 1 {
			t.Errorf("Delete calls = %d, want 1", listings.deleteCalls)
		}
	})
}
