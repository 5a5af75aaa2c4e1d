// Package storage keeps uploaded listing images outside the database and
// hands back the URL+filename pair the listing records.
package storage

import (
	"context"
	"io"

	"wanderlust"
)

// Store saves uploaded files and can remove them again. Save returns the
// public URL and the stored filename; Remove takes that filename.
type Store interface {
	Save(ctx context.Context, src io.Reader, originalName string) (wanderlust.Image, error)
	Remove(ctx context.Context, filename string) error
}
