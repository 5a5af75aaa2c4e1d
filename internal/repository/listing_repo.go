package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wanderlust"
)

type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

var _ Listings = (*ListingRepository)(nil)

const (
	insertListingSQL = `INSERT INTO listings
    (id, title, description, price, location, country, image_url, image_filename, geom_lat, geom_lon, created_at, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectListingSQL = `SELECT id, title, description, price, location, country, image_url, image_filename, geom_lat, geom_lon, created_at, updated_at FROM listings`

	selectListingByIDSQL = selectListingSQL + ` WHERE id = ?`
	selectAllListingsSQL = selectListingSQL + ` ORDER BY created_at DESC`

	updateListingSQL = `UPDATE listings SET
    title = ?, description = ?, price = ?, location = ?, country = ?, geom_lat = ?, geom_lon = ?, updated_at = ?
    WHERE id = ?`

	updateListingImageSQL = `UPDATE listings SET image_url = ?, image_filename = ? WHERE id = ?`

	deleteListingSQL = `DELETE FROM listings WHERE id = ?`
)

// Create inserts a new listing row.
func (r *ListingRepository) Create(ctx context.Context, l *wanderlust.Listing) error {
	lat, lon := geomColumns(l.Geometry)
	_, err := r.db.ExecContext(ctx, insertListingSQL,
		l.ID, l.Title, l.Description, l.Price, l.Location, l.Country,
		l.Image.URL, l.Image.Filename, lat, lon,
		l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert listing %q: %w", l.ID, err)
	}
	return nil
}

// GetAll returns every listing, newest first. No pagination.
func (r *ListingRepository) GetAll(ctx context.Context) ([]wanderlust.Listing, error) {
	rows, err := r.db.QueryContext(ctx, selectAllListingsSQL)
	if err != nil {
		return nil, fmt.Errorf("select listings: %w", err)
	}
	defer rows.Close()

	out := make([]wanderlust.Listing, 0, 32)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

// GetByID fetches one listing. Returns (nil, nil) if not found.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*wanderlust.Listing, error) {
	rows, err := r.db.QueryContext(ctx, selectListingByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("select listing %q: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("select listing %q: %w", id, err)
		}
		return nil, nil
	}
	l, err := scanListing(rows)
	if err != nil {
		return nil, fmt.Errorf("scan listing %q: %w", id, err)
	}
	return l, nil
}

// Update overwrites the listing's fields. The image columns are left alone;
// image replacement is a separate write (UpdateImage).
func (r *ListingRepository) Update(ctx context.Context, l *wanderlust.Listing) error {
	lat, lon := geomColumns(l.Geometry)
	_, err := r.db.ExecContext(ctx, updateListingSQL,
		l.Title, l.Description, l.Price, l.Location, l.Country,
		lat, lon, l.UpdatedAt.UTC(), l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing %q: %w", l.ID, err)
	}
	return nil
}

// UpdateImage overwrites only the image columns.
func (r *ListingRepository) UpdateImage(ctx context.Context, id string, img wanderlust.Image) error {
	_, err := r.db.ExecContext(ctx, updateListingImageSQL, img.URL, img.Filename, id)
	if err != nil {
		return fmt.Errorf("update listing image %q: %w", id, err)
	}
	return nil
}

// Delete removes the listing row only. Reviews and the stored image are
// intentionally left behind.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteListingSQL, id)
	if err != nil {
		return fmt.Errorf("delete listing %q: %w", id, err)
	}
	return nil
}

// geomColumns flattens an optional point into nullable lat/lon args.
func geomColumns(g *wanderlust.Geometry) (lat, lon any) {
	if g == nil {
		return nil, nil
	}
	return g.Coordinates[1], g.Coordinates[0]
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(rs rowScanner) (*wanderlust.Listing, error) {
	var (
		l        wanderlust.Listing
		lat, lon sql.NullFloat64
	)
	err := rs.Scan(
		&l.ID, &l.Title, &l.Description, &l.Price, &l.Location, &l.Country,
		&l.Image.URL, &l.Image.Filename, &lat, &lon, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		l.Geometry = &wanderlust.Geometry{
			Type:        "Point",
			Coordinates: [2]float64{lon.Float64, lat.Float64},
		}
	}
	return &l, nil
}
