package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
)

// RemovalStarter schedules listing removals on a Temporal cluster.
type RemovalStarter struct {
	client    client.Client
	taskQueue string
}

// NewRemovalStarter creates a starter. An empty taskQueue uses TaskQueue.
func NewRemovalStarter(c client.Client, taskQueue string) *RemovalStarter {
	if taskQueue == "" {
		taskQueue = TaskQueue
	}
	return &RemovalStarter{client: c, taskQueue: taskQueue}
}

// ScheduleListingRemoval starts ListingRemovalWorkflow for a listing. A removal
// already running for the same listing is returned instead of a new one.
func (s *RemovalStarter) ScheduleListingRemoval(ctx context.Context, listingID string) (string, error) {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "listing-removal-" + listingID,
		TaskQueue: s.taskQueue,
	}, ListingRemovalWorkflow, ListingRemovalInput{ListingID: listingID})
	if err != nil {
		return "", fmt.Errorf("start listing removal: %w", err)
	}
	return run.GetID(), nil
}
