package ports

import (
	"context"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// ListingRepository is the document store for listings.
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	Update(ctx context.Context, l *domain.Listing) error
	UpsertBatch(ctx context.Context, listings []domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	// List returns every listing in store order (creation time, then id).
	List(ctx context.Context) ([]domain.Listing, error)
	// ListByField returns listings whose field equals value. Supported fields
	// are "property_type" and "geohash" (prefix match).
	ListByField(ctx context.Context, field, value string) ([]domain.Listing, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore is the blob store for listing photos.
type ImageStore interface {
	Upload(ctx context.Context, img *domain.Image) error
	Get(ctx context.Context, id string) (*domain.Image, error)
	// URL returns the public path an image is served from.
	URL(id string) string
	// IDFromURL extracts the image id from a URL produced by URL.
	IDFromURL(url string) (string, bool)
	Delete(ctx context.Context, id string) error
}
