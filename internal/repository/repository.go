package repository

import (
	"context"
	"database/sql"
	"time"

	"wanderlust"
	"wanderlust/internal/repository/db"
)

// Users stores accounts. Lookups return (nil, nil) when no row matches.
type Users interface {
	Create(ctx context.Context, username, email, passwordHash string) (int64, error)
	GetByUsername(ctx context.Context, username string) (*wanderlust.User, error)
	GetByID(ctx context.Context, id int64) (*wanderlust.User, error)
}

// Listings stores property records.
type Listings interface {
	Create(ctx context.Context, l *wanderlust.Listing) error
	GetAll(ctx context.Context) ([]wanderlust.Listing, error)
	GetByID(ctx context.Context, id string) (*wanderlust.Listing, error)
	Update(ctx context.Context, l *wanderlust.Listing) error
	UpdateImage(ctx context.Context, id string, img wanderlust.Image) error
	Delete(ctx context.Context, id string) error
}

// Reviews stores listing reviews. Create and Delete run the review write and
// the listing touch inside one transaction.
type Reviews interface {
	Create(ctx context.Context, r *wanderlust.Review) error
	GetByID(ctx context.Context, id string) (*wanderlust.Review, error)
	ListForListing(ctx context.Context, listingID string) ([]wanderlust.Review, error)
	Delete(ctx context.Context, listingID, reviewID string) error
}

// Sessions stores server-side session state keyed by cookie token.
type Sessions interface {
	Create(ctx context.Context, s *wanderlust.Session) error
	Get(ctx context.Context, token string) (*wanderlust.Session, error)
	SetUser(ctx context.Context, token string, userID int64) error
	SetFlash(ctx context.Context, token string, f wanderlust.Flash) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Repository struct {
	Users    Users
	Listings Listings
	Reviews  Reviews
	Sessions Sessions
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Users:    NewUserRepository(sqlDB),
		Listings: NewListingRepository(sqlDB),
		Reviews:  NewReviewRepository(sqlDB),
		Sessions: NewSessionRepository(sqlDB),
	}
}

// InitDB opens the SQLite file and bootstraps the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
