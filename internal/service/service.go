package service

import (
	"context"
	"mime/multipart"
	"time"

	"wanderlust"
	"wanderlust/internal/geocode"
	"wanderlust/internal/logger"
	"wanderlust/internal/repository"
	"wanderlust/internal/storage"
)

// Authorization handles signup and credential checks.
type Authorization interface {
	SignUp(ctx context.Context, username, email, password string) (*wanderlust.User, error)
	Authenticate(ctx context.Context, username, password string) (*wanderlust.User, error)
	UserByID(ctx context.Context, id int64) (*wanderlust.User, error)
}

// ListingInput carries the submitted form fields for create/update.
type ListingInput struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Country     string
}

// Listings exposes the marketplace CRUD operations.
type Listings interface {
	List(ctx context.Context) ([]wanderlust.Listing, error)
	Get(ctx context.Context, id string) (*wanderlust.Listing, error)
	Create(ctx context.Context, in ListingInput, image *multipart.FileHeader) (*wanderlust.Listing, error)
	Update(ctx context.Context, id string, in ListingInput, image *multipart.FileHeader) (*wanderlust.Listing, error)
	Delete(ctx context.Context, id string) error
}

// Reviews exposes review creation and ownership-checked deletion.
type Reviews interface {
	Add(ctx context.Context, listingID string, authorID int64, body string, rating int) (*wanderlust.Review, error)
	Delete(ctx context.Context, listingID, reviewID string, requesterID int64) error
}

// SessionManager owns cookie-backed session state and flash messages.
// Sweep runs the background loop that clears expired rows; stop it via
// context cancellation in main() for graceful shutdown.
type SessionManager interface {
	Start(ctx context.Context) (*wanderlust.Session, error)
	Get(ctx context.Context, token string) (*wanderlust.Session, error)
	Login(ctx context.Context, token string, userID int64) error
	Logout(ctx context.Context, token string) error
	AddFlash(ctx context.Context, token, kind, message string) error
	PopFlash(ctx context.Context, token string) (wanderlust.Flash, error)
	Sweep(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Listings
	Reviews
	Sessions SessionManager
}

// Deps are the collaborators the services are wired with in main.
type Deps struct {
	Repos    *repository.Repository
	Geocoder Geocoder
	Store    storage.Store
	Log      *logger.Logger
}

// Geocoder is the slice of geocode.Client the listing service needs.
type Geocoder interface {
	Forward(ctx context.Context, address string) (*geocode.Point, error)
}

func NewService(d Deps) *Service {
	return &Service{
		Authorization: NewAuthService(d.Repos.Users),
		Listings:      NewListingService(d.Repos.Listings, d.Repos.Reviews, d.Geocoder, d.Store, d.Log),
		Reviews:       NewReviewService(d.Repos.Reviews, d.Repos.Listings),
		Sessions:      NewSessionService(d.Repos.Sessions, d.Log),
	}
}
