package usecases

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/explorer"
	"github.com/samirrijal/propmap/internal/core/ports"
	"github.com/samirrijal/propmap/internal/pkg/geospatial"
	"github.com/samirrijal/propmap/internal/pkg/metrics"
)

const (
	listingsCacheKey = "listings:all"
	listingsCacheTTL = 60 // seconds

	geohashPrecision = 7

	// DefaultMaxImageBytes is the upload limit for listing photos (5 MiB).
	DefaultMaxImageBytes = 5 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var tracer = otel.Tracer("github.com/samirrijal/propmap/internal/core/usecases")

// ImageUpload is a photo received with a create or update request.
type ImageUpload struct {
	ContentType string
	Data        []byte
}

// ListingService handles listing CRUD on top of the document and blob stores.
type ListingService struct {
	listings      ports.ListingRepository
	images        ports.ImageStore
	cache         ports.CacheService
	publisher     ports.EventPublisher
	validator     ports.ListingValidator
	maxImageBytes int64
}

// NewListingService creates a new ListingService. cache and publisher may be nil.
func NewListingService(
	listings ports.ListingRepository,
	images ports.ImageStore,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	validator ports.ListingValidator,
) *ListingService {
	return &ListingService{
		listings:      listings,
		images:        images,
		cache:         cache,
		publisher:     publisher,
		validator:     validator,
		maxImageBytes: DefaultMaxImageBytes,
	}
}

// WithMaxImageBytes overrides the upload size limit.
func (s *ListingService) WithMaxImageBytes(n int64) *ListingService {
	if n > 0 {
		s.maxImageBytes = n
	}
	return s
}

// List returns the full listing collection in store order.
func (s *ListingService) List(ctx context.Context) ([]domain.Listing, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, listingsCacheKey); err == nil {
			var listings []domain.Listing
			if err := json.Unmarshal(data, &listings); err == nil {
				metrics.CacheHits.WithLabelValues("listings").Inc()
				return listings, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("listings").Inc()
	}

	listings, err := s.listings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}

	if s.cache != nil {
		if data, err := json.Marshal(listings); err == nil {
			_ = s.cache.Set(ctx, listingsCacheKey, data, listingsCacheTTL)
		}
	}

	return listings, nil
}

// GetByID returns a single listing.
func (s *ListingService) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.listings.GetByID(ctx, id)
}

// ListByType returns listings of one property type.
func (s *ListingService) ListByType(ctx context.Context, propertyType string) ([]domain.Listing, error) {
	if propertyType == "" {
		return nil, &domain.ValidationError{Details: []string{"property type must not be empty"}}
	}
	return s.listings.ListByField(ctx, "property_type", propertyType)
}

// Nearby returns listings within radiusMeters of a point, nearest first.
func (s *ListingService) Nearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	center := domain.GeoPoint{Lat: lat, Lon: lon}
	box := geospatial.BoundAround(center, radiusMeters)
	var near []domain.Listing
	for _, l := range all {
		if !geospatial.InBounds(box, l.Location) {
			continue
		}
		d := geospatial.Distance(center, l.Location)
		if d > radiusMeters {
			continue
		}
		l.Distance = &d
		near = append(near, l)
	}

	slices.SortStableFunc(near, func(a, b domain.Listing) int { return cmp.Compare(*a.Distance, *b.Distance) })
	if len(near) > limit {
		near = near[:limit]
	}
	return near, nil
}

// Facets summarises the collection for filter controls.
func (s *ListingService) Facets(ctx context.Context) (domain.Facets, error) {
	all, err := s.List(ctx)
	if err != nil {
		return domain.Facets{}, err
	}
	return explorer.ComputeFacets(all), nil
}

// Create validates the input, stores the image, then the listing document.
// If the document cannot be written the stored image is removed again.
func (s *ListingService) Create(ctx context.Context, in domain.ListingInput, img *ImageUpload) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingService.Create")
	defer span.End()

	in = in.Trimmed()
	if err := s.validator.ValidateInput(in); err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, domain.ErrImageRequired
	}

	image, err := s.storeImage(ctx, img)
	if err != nil {
		return nil, err
	}
	url := s.images.URL(image.ID)

	now := time.Now().UTC()
	l := &domain.Listing{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Description:  in.Description,
		Image:        &url,
		Location:     domain.GeoPoint{Lat: in.Latitude, Lon: in.Longitude},
		Price:        in.Price,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		PropertyType: in.PropertyType,
		Area:         in.Area,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	l.Geohash = geohash.EncodeWithPrecision(l.Location.Lat, l.Location.Lon, geohashPrecision)

	if err := s.listings.Create(ctx, l); err != nil {
		if delErr := s.images.Delete(ctx, image.ID); delErr != nil {
			slog.WarnContext(ctx, "orphaned listing image", "image_id", image.ID, "error", delErr)
		}
		return nil, fmt.Errorf("create listing: %w", err)
	}
	span.SetAttributes(attribute.String("listing.id", l.ID))

	s.afterMutation(ctx, domain.ListingCreated, l.ID)
	return l, nil
}

// Update applies a partial update. A new image replaces the old one, which is
// then deleted. If the document cannot be written the new image is removed
// and the old one kept.
func (s *ListingService) Update(ctx context.Context, id string, patch domain.ListingPatch, img *ImageUpload) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", id))

	patch = patch.Trimmed()
	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, err
	}

	l, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(l)
	if !l.Location.Valid() {
		return nil, &domain.ValidationError{Details: []string{"coordinate out of range"}}
	}
	l.Geohash = geohash.EncodeWithPrecision(l.Location.Lat, l.Location.Lon, geohashPrecision)
	l.UpdatedAt = time.Now().UTC()

	var oldImage *string
	var newImageID string
	if img != nil && len(img.Data) > 0 {
		image, err := s.storeImage(ctx, img)
		if err != nil {
			return nil, err
		}
		newImageID = image.ID
		url := s.images.URL(image.ID)
		oldImage, l.Image = l.Image, &url
	}

	if err := s.listings.Update(ctx, l); err != nil {
		if newImageID != "" {
			if delErr := s.images.Delete(ctx, newImageID); delErr != nil {
				slog.WarnContext(ctx, "orphaned listing image", "image_id", newImageID, "error", delErr)
			}
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}

	if oldImage != nil {
		s.deleteImageBestEffort(ctx, *oldImage)
	}

	s.afterMutation(ctx, domain.ListingUpdated, l.ID)
	return l, nil
}

// Delete removes the listing document and, best-effort, its image.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "ListingService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", id))

	imageURL, err := s.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}
	if imageURL != "" {
		s.deleteImageBestEffort(ctx, imageURL)
	}
	s.afterMutation(ctx, domain.ListingDeleted, id)
	return nil
}

// DeleteDocument removes only the listing document and returns its image URL.
func (s *ListingService) DeleteDocument(ctx context.Context, id string) (string, error) {
	l, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("delete listing: %w", err)
	}
	s.invalidate(ctx)
	if l.Image == nil {
		return "", nil
	}
	return *l.Image, nil
}

// DeleteImage removes the image behind a URL produced by the image store.
// URLs that do not belong to the store are ignored.
func (s *ListingService) DeleteImage(ctx context.Context, url string) error {
	id, ok := s.images.IDFromURL(url)
	if !ok {
		return nil
	}
	if err := s.images.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete image %s: %w", id, err)
	}
	return nil
}

// GetImage returns a stored image.
func (s *ListingService) GetImage(ctx context.Context, id string) (*domain.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.images.Get(ctx, id)
}

// Publish emits a listing event, if a publisher is configured.
func (s *ListingService) Publish(ctx context.Context, kind domain.ListingEventKind, id string) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishListingEvent(ctx, &domain.ListingEvent{Kind: kind, ListingID: id, Time: time.Now().UTC()})
}

func (s *ListingService) storeImage(ctx context.Context, img *ImageUpload) (*domain.Image, error) {
	if int64(len(img.Data)) > s.maxImageBytes {
		return nil, domain.ErrImageTooLarge
	}
	contentType := http.DetectContentType(img.Data)
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, contentType)
	}

	image := &domain.Image{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Size:        int64(len(img.Data)),
		Data:        img.Data,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.images.Upload(ctx, image); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	metrics.ImageBytesUploaded.Add(float64(image.Size))
	return image, nil
}

func (s *ListingService) deleteImageBestEffort(ctx context.Context, url string) {
	if err := s.DeleteImage(ctx, url); err != nil {
		slog.WarnContext(ctx, "delete listing image failed", "url", url, "error", err)
	}
}

func (s *ListingService) afterMutation(ctx context.Context, kind domain.ListingEventKind, id string) {
	metrics.ListingMutations.WithLabelValues(string(kind)).Inc()
	s.invalidate(ctx)
	if err := s.Publish(ctx, kind, id); err != nil {
		slog.WarnContext(ctx, "publish listing event failed", "kind", kind, "listing_id", id, "error", err)
	}
}

func (s *ListingService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, listingsCacheKey)
	}
}
