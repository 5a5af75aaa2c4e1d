package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wanderlust"

	"github.com/google/uuid"
)

// LocalStore writes images under a directory served statically by the HTTP
// layer. Filenames get a uuid prefix so uploads never collide.
type LocalStore struct {
	dir     string
	baseURL string // URL path prefix the files are served under, e.g. "/uploads"
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir %q: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save streams src to disk and returns the image record for the listing.
func (s *LocalStore) Save(ctx context.Context, src io.Reader, originalName string) (wanderlust.Image, error) {
	if err := ctx.Err(); err != nil {
		return wanderlust.Image{}, err
	}

	name := uuid.NewString() + sanitizeExt(originalName)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return wanderlust.Image{}, fmt.Errorf("create %q: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return wanderlust.Image{}, fmt.Errorf("write %q: %w", path, err)
	}
	if err := dst.Sync(); err != nil {
		_ = os.Remove(path)
		return wanderlust.Image{}, fmt.Errorf("sync %q: %w", path, err)
	}

	return wanderlust.Image{
		URL:      s.baseURL + "/" + name,
		Filename: name,
	}, nil
}

// Remove deletes a stored file. Missing files are not an error; the caller
// may be sweeping already-gone orphans.
func (s *LocalStore) Remove(ctx context.Context, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Reject anything that could escape the uploads dir.
	if filename == "" || filename != filepath.Base(filename) {
		return fmt.Errorf("invalid stored filename %q", filename)
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", filename, err)
	}
	return nil
}

// Dir returns the directory files are written to, for static serving.
func (s *LocalStore) Dir() string { return s.dir }

// sanitizeExt keeps only a plausible file extension from the upload name.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
