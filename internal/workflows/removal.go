// Package workflows runs listing removal as a durable Temporal workflow.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TaskQueue is the default Temporal task queue for listing workflows.
const TaskQueue = "propmap-listings"

const errTypeListingNotFound = "ListingNotFound"

// ListingRemovalInput is the input for the listing removal workflow.
type ListingRemovalInput struct {
	ListingID string
}

// ListingRemovalResult reports what the workflow removed.
type ListingRemovalResult struct {
	ListingID string
	ImageURL  string
	// ImageOrphaned is set when the document is gone but its photo could not
	// be deleted after all retries.
	ImageOrphaned bool
	Published     bool
}

// ListingRemovalWorkflow deletes the listing document, then its photo, then
// publishes a deleted event. Only the document step is fatal: once it has
// succeeded the listing is gone, and the later steps are retried and reported.
func ListingRemovalWorkflow(ctx workflow.Context, input ListingRemovalInput) (ListingRemovalResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting listing removal", "listingID", input.ListingID)

	result := ListingRemovalResult{ListingID: input.ListingID}

	docCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{errTypeListingNotFound},
		},
	})
	if err := workflow.ExecuteActivity(docCtx, "DeleteListingDocument", input.ListingID).Get(ctx, &result.ImageURL); err != nil {
		return result, err
	}

	if result.ImageURL != "" {
		imgCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 30 * time.Second,
			RetryPolicy: &temporal.RetryPolicy{
				InitialInterval:    time.Second,
				BackoffCoefficient: 2,
				MaximumAttempts:    5,
			},
		})
		if err := workflow.ExecuteActivity(imgCtx, "DeleteListingImage", result.ImageURL).Get(ctx, nil); err != nil {
			logger.Warn("listing image orphaned", "url", result.ImageURL, "error", err)
			result.ImageOrphaned = true
		}
	}

	pubCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
	if err := workflow.ExecuteActivity(pubCtx, "PublishListingDeleted", input.ListingID).Get(ctx, nil); err != nil {
		logger.Warn("publish listing deleted failed", "error", err)
	} else {
		result.Published = true
	}

	logger.Info("Listing removed", "listingID", input.ListingID, "imageOrphaned", result.ImageOrphaned)
	return result, nil
}
