package ports

import (
	"context"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// EventPublisher publishes listing events to a message broker.
type EventPublisher interface {
	PublishListingEvent(ctx context.Context, event *domain.ListingEvent) error
}

// EventSubscriber delivers listing events from a message broker.
type EventSubscriber interface {
	SubscribeListingEvents(ctx context.Context, handler func(ctx context.Context, event *domain.ListingEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ListingValidator checks submitted listing data before it is stored.
type ListingValidator interface {
	ValidateInput(in domain.ListingInput) error
	ValidatePatch(p domain.ListingPatch) error
}

// ListingRemovalScheduler starts a durable listing removal and returns its
// run identifier.
type ListingRemovalScheduler interface {
	ScheduleListingRemoval(ctx context.Context, listingID string) (string, error)
}
