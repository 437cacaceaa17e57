package postgres

import (
	"context"
	"strings"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// ImageStore implements ports.ImageStore on a bytea table. Images are served
// back through the API under urlPrefix.
type ImageStore struct {
	db        *DB
	urlPrefix string
}

// NewImageStore creates a new ImageStore. urlPrefix is typically "/v1/images/".
func NewImageStore(db *DB, urlPrefix string) *ImageStore {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &ImageStore{db: db, urlPrefix: urlPrefix}
}

// Upload stores an image.
func (s *ImageStore) Upload(ctx context.Context, img *domain.Image) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO listing_images (id, content_type, size, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, img.ID, img.ContentType, img.Size, img.Data, img.CreatedAt)
	return err
}

// Get returns an image with its bytes.
func (s *ImageStore) Get(ctx context.Context, id string) (*domain.Image, error) {
	var img domain.Image
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, content_type, size, data, created_at
		FROM listing_images WHERE id = $1
	`, id).Scan(&img.ID, &img.ContentType, &img.Size, &img.Data, &img.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &img, nil
}

// URL returns the path an image is served from.
func (s *ImageStore) URL(id string) string {
	return s.urlPrefix + id
}

// IDFromURL reverses URL. Absolute URLs are accepted if their path matches.
func (s *ImageStore) IDFromURL(url string) (string, bool) {
	i := strings.Index(url, s.urlPrefix)
	if i < 0 {
		return "", false
	}
	id := url[i+len(s.urlPrefix):]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// Delete removes an image.
func (s *ImageStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM listing_images WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
