package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// ListingRemover is the slice of the listing service the removal activities need.
type ListingRemover interface {
	DeleteDocument(ctx context.Context, id string) (string, error)
	DeleteImage(ctx context.Context, url string) error
	Publish(ctx context.Context, kind domain.ListingEventKind, id string) error
}

// RemovalActivities holds the activity implementations for the listing removal workflow.
type RemovalActivities struct {
	Listings ListingRemover
}

// DeleteListingDocument removes the listing document and returns its image URL.
// A missing listing is not retried.
func (a *RemovalActivities) DeleteListingDocument(ctx context.Context, listingID string) (string, error) {
	url, err := a.Listings.DeleteDocument(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return "", temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("listing %s not found", listingID), errTypeListingNotFound, err)
		}
		return "", fmt.Errorf("delete listing %s: %w", listingID, err)
	}
	return url, nil
}

// DeleteListingImage removes the photo behind url.
func (a *RemovalActivities) DeleteListingImage(ctx context.Context, url string) error {
	if err := a.Listings.DeleteImage(ctx, url); err != nil {
		activity.GetLogger(ctx).Warn("delete listing image failed", "url", url, "attempt", activity.GetInfo(ctx).Attempt, "error", err)
		return err
	}
	return nil
}

// PublishListingDeleted announces the removal to other instances.
func (a *RemovalActivities) PublishListingDeleted(ctx context.Context, listingID string) error {
	return a.Listings.Publish(ctx, domain.ListingDeleted, listingID)
}
