package usecases_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/explorer"
	"github.com/samirrijal/propmap/internal/core/usecases"
)

func exploreFixture() *mockListingRepo {
	return newMockListingRepo(
		domain.Listing{ID: "a", Name: "Garden house", Price: 100, Bedrooms: 3, Location: domain.GeoPoint{Lat: 1, Lon: 1}},
		domain.Listing{ID: "b", Name: "City flat", Price: 200, Bedrooms: 1, Location: domain.GeoPoint{Lat: 5, Lon: 5}},
		domain.Listing{ID: "c", Name: "Beach villa", Price: 300, Bedrooms: 4, Location: domain.GeoPoint{Lat: 9, Lon: 9}},
	)
}

func visibleIDs(snap domain.Snapshot) []string {
	out := make([]string, len(snap.Visible))
	for i, l := range snap.Visible {
		out[i] = l.ID
	}
	return out
}

func TestExploreService_OpenUsesDefaults(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, 0)

	id, snap, err := svc.Open(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected session id")
	}
	if len(snap.Visible) != 3 {
		t.Errorf("expected all 3 visible, got %v", visibleIDs(snap))
	}
	if snap.Criteria.PriceRange.Low != 100 || snap.Criteria.PriceRange.High != 300 {
		t.Errorf("expected default range [100,300], got %+v", snap.Criteria.PriceRange)
	}
	if snap.Viewport.Action != domain.ViewportFit {
		t.Errorf("expected fit viewport, got %s", snap.Viewport.Action)
	}
}

func TestExploreService_ApplySelectAndAutoClear(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, 0)
	ctx := context.Background()
	id, _, _ := svc.Open(ctx)

	snap, applied, err := svc.Apply(ctx, id, domain.Command{Action: domain.ActionSelect, ID: "b"})
	if err != nil || !applied {
		t.Fatalf("select failed: applied=%v err=%v", applied, err)
	}
	if snap.Selection == nil || *snap.Selection != "b" {
		t.Fatalf("expected b selected, got %v", snap.Selection)
	}
	if snap.Viewport.Action != domain.ViewportFocus || snap.Viewport.Zoom != domain.FocusZoom {
		t.Errorf("expected focus at zoom %d, got %+v", domain.FocusZoom, snap.Viewport)
	}

	snap, _, err = svc.Apply(ctx, id, domain.Command{Action: domain.ActionSearch, Query: "villa"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if snap.Selection != nil {
		t.Errorf("expected selection cleared, got %s", *snap.Selection)
	}
	if got := visibleIDs(snap); len(got) != 1 || got[0] != "c" {
		t.Errorf("expected [c], got %v", got)
	}
}

func TestExploreService_SelectInvisibleIsNoop(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, 0)
	ctx := context.Background()
	id, _, _ := svc.Open(ctx)

	_, applied, err := svc.Apply(ctx, id, domain.Command{Action: domain.ActionSelect, ID: "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Error("selecting an invisible listing should not apply")
	}
}

func TestExploreService_InvalidCommands(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, 0)
	ctx := context.Background()
	id, _, _ := svc.Open(ctx)

	cmds := []domain.Command{
		{Action: "teleport"},
		{Action: domain.ActionFilter},
		{Action: domain.ActionSelect},
		{Action: domain.ActionSort, Sort: "colour"},
		{Action: domain.ActionDraw, Vertices: []domain.GeoPoint{{Lat: 91, Lon: 0}}},
	}
	for _, cmd := range cmds {
		if _, _, err := svc.Apply(ctx, id, cmd); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%+v: expected ErrValidation, got %v", cmd, err)
		}
	}
}

func TestExploreService_UnknownSession(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, 0)
	_, _, err := svc.Apply(context.Background(), "nope", domain.Command{Action: domain.ActionReset})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Close("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on close, got %v", err)
	}
}

func TestExploreService_DrawAndErase(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, 0)
	ctx := context.Background()
	id, _, _ := svc.Open(ctx)

	square := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 6}, {Lat: 6, Lon: 6}, {Lat: 6, Lon: 0}}
	snap, _, err := svc.Apply(ctx, id, domain.Command{Action: domain.ActionDraw, Vertices: square})
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if got := visibleIDs(snap); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}

	snap, _, _ = svc.Apply(ctx, id, domain.Command{Action: domain.ActionErase})
	if snap.Boundary != nil || len(snap.Visible) != 3 {
		t.Errorf("expected boundary removed and 3 visible, got %v", visibleIDs(snap))
	}
}

func TestExploreService_RefreshAndWatch(t *testing.T) {
	repo := exploreFixture()
	svc := usecases.NewExploreService(repo, explorer.ContainEnvelope, 0)
	ctx := context.Background()
	id, _, _ := svc.Open(ctx)

	ch, cancel, err := svc.Watch(id)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	defer cancel()

	if _, _, err := svc.Apply(ctx, id, domain.Command{Action: domain.ActionSelect, ID: "c"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	<-ch

	_ = repo.Delete(ctx, "c")
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	select {
	case snap := <-ch:
		if len(snap.Visible) != 2 {
			t.Errorf("expected 2 visible after refresh, got %v", visibleIDs(snap))
		}
		if snap.Selection != nil {
			t.Error("expected selection of removed listing to be cleared")
		}
		if snap.Criteria.PriceRange.High != 200 {
			t.Errorf("expected default range to follow collection, got %+v", snap.Criteria.PriceRange)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after refresh")
	}
}

func TestExploreService_WatchEndsOnClose(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, 0)
	id, _, _ := svc.Open(context.Background())

	ch, cancel, err := svc.Watch(id)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	defer cancel()

	if err := svc.Close(id); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel closed")
	}
}

func TestExploreService_Sweep(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, time.Nanosecond)
	ctx := context.Background()
	_, _, _ = svc.Open(ctx)
	_, _, _ = svc.Open(ctx)

	time.Sleep(time.Millisecond)
	if n := svc.Sweep(); n != 2 {
		t.Errorf("expected 2 expired sessions, got %d", n)
	}
	if svc.Count() != 0 {
		t.Errorf("expected no sessions left, got %d", svc.Count())
	}
}

func TestExploreService_VisibleIsStateless(t *testing.T) {
	svc := usecases.NewExploreService(exploreFixture(), explorer.ContainEnvelope, 0)
	ctx := context.Background()

	got, err := svc.Visible(ctx, usecases.VisibleQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 visible with defaults, got %d", len(got))
	}

	two := 2
	got, _ = svc.Visible(ctx, usecases.VisibleQuery{
		Criteria: domain.FilterCriteria{Bedrooms: &two},
		Sort:     domain.SortPrice,
	})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("expected [a c], got %+v", got)
	}

	got, _ = svc.Visible(ctx, usecases.VisibleQuery{Price: &domain.PriceRange{Low: 150, High: 250}})
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("expected [b], got %+v", got)
	}
	if svc.Count() != 0 {
		t.Error("stateless query must not create sessions")
	}
}

func TestExploreService_OpenSourceError(t *testing.T) {
	repo := exploreFixture()
	repo.listErr = errors.New("boom")
	svc := usecases.NewExploreService(repo, explorer.ContainEnvelope, 0)
	if _, _, err := svc.Open(context.Background()); err == nil {
		t.Error("expected error")
	}
}

// racingSource runs onFirstList inside the first List call and returns what
// the repo held before the hook ran.
type racingSource struct {
	repo        *mockListingRepo
	listed      atomic.Bool
	onFirstList func()
}

func (r *racingSource) List(ctx context.Context) ([]domain.Listing, error) {
	listings, err := r.repo.List(ctx)
	if r.listed.CompareAndSwap(false, true) {
		r.onFirstList()
	}
	return listings, err
}

func TestExploreService_RefreshDuringOpen(t *testing.T) {
	repo := exploreFixture()
	src := &racingSource{repo: repo}
	svc := usecases.NewExploreService(src, explorer.ContainEnvelope, 0)
	ctx := context.Background()

	refreshed := make(chan error, 1)
	src.onFirstList = func() {
		_ = repo.Delete(ctx, "c")
		go func() { refreshed <- svc.Refresh(ctx) }()
		// Give a Refresh that does not wait for Open the chance to finish.
		time.Sleep(20 * time.Millisecond)
	}

	id, snap, err := svc.Open(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Visible) != 3 {
		t.Fatalf("expected the collection loaded by Open, got %v", visibleIDs(snap))
	}

	select {
	case err := <-refreshed:
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("refresh did not finish")
	}

	got, err := svc.Get(id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Visible) != 2 {
		t.Errorf("expected the refreshed collection, got %v", visibleIDs(got))
	}
}

func TestExploreService_OpenSourceErrorLeavesNoSession(t *testing.T) {
	repo := exploreFixture()
	repo.listErr = errors.New("boom")
	svc := usecases.NewExploreService(repo, explorer.ContainEnvelope, 0)
	_, _, _ = svc.Open(context.Background())
	if svc.Count() != 0 {
		t.Errorf("expected no sessions after a failed open, got %d", svc.Count())
	}
}
