package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/usecases"
	"github.com/samirrijal/propmap/internal/pkg/validation"
)

func TestListingService_Import(t *testing.T) {
	repo := newMockListingRepo()
	cache := newMockCache()
	pub := &mockPublisher{}
	svc := usecases.NewListingService(repo, newMockImageStore(), cache, pub, validation.MustNew())

	photo := "https://cdn.example.com/loft.jpg"
	bad := validInput()
	bad.Price = 0
	records := []usecases.ImportRecord{
		{ListingInput: validInput(), Image: &photo},
		{ListingInput: bad},
		{ListingInput: validInput(), ID: "not-a-uuid"},
	}
	second := validInput()
	second.Name = "Old town duplex"
	records = append(records, usecases.ImportRecord{ListingInput: second})

	report, err := svc.Import(context.Background(), records, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", report.Imported)
	}
	if len(report.Skipped) != 2 || !strings.HasPrefix(report.Skipped[0], "record 1:") {
		t.Errorf("unexpected skipped %v", report.Skipped)
	}
	if repo.batches != 2 {
		t.Errorf("expected one batch per listing, got %d", repo.batches)
	}
	if cache.deletes == 0 {
		t.Error("expected cache invalidation")
	}
	if len(pub.events) != 1 || pub.events[0].Kind != domain.ListingUpdated {
		t.Errorf("expected one updated event, got %+v", pub.events)
	}

	listings, _ := repo.List(context.Background())
	if listings[0].Image == nil || *listings[0].Image != photo {
		t.Errorf("expected external image kept, got %v", listings[0].Image)
	}
	if len(listings[0].Geohash) != 7 {
		t.Errorf("expected geohash, got %q", listings[0].Geohash)
	}
}

func TestListingService_Import_IsIdempotent(t *testing.T) {
	repo := newMockListingRepo()
	svc := usecases.NewListingService(repo, newMockImageStore(), nil, nil, validation.MustNew())
	records := []usecases.ImportRecord{{ListingInput: validInput()}}

	for i := 0; i < 2; i++ {
		if _, err := svc.Import(context.Background(), records, 0); err != nil {
			t.Fatalf("import %d: %v", i, err)
		}
	}
	listings, _ := repo.List(context.Background())
	if len(listings) != 1 {
		t.Errorf("re-import should replace, got %d listings", len(listings))
	}
}

func TestListingService_Import_TrimsText(t *testing.T) {
	repo := newMockListingRepo()
	svc := usecases.NewListingService(repo, newMockImageStore(), nil, nil, validation.MustNew())
	padded := validInput()
	padded.Name = "   Riverside loft  "
	plain := validInput()

	if _, err := svc.Import(context.Background(), []usecases.ImportRecord{{ListingInput: padded}, {ListingInput: plain}}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	listings, _ := repo.List(context.Background())
	if len(listings) != 1 {
		t.Fatalf("padded and plain names should derive the same id, got %d listings", len(listings))
	}
	if listings[0].Name != "Riverside loft" {
		t.Errorf("expected trimmed name, got %q", listings[0].Name)
	}
}

type failingBatchRepo struct{ *mockListingRepo }

func (failingBatchRepo) UpsertBatch(ctx context.Context, listings []domain.Listing) error {
	return errors.New("connection reset")
}

func TestListingService_Import_StoreError(t *testing.T) {
	repo := failingBatchRepo{newMockListingRepo()}
	pub := &mockPublisher{}
	svc := usecases.NewListingService(repo, newMockImageStore(), nil, pub, validation.MustNew())

	_, err := svc.Import(context.Background(), []usecases.ImportRecord{{ListingInput: validInput()}}, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(pub.events) != 0 {
		t.Error("no event should be published when the import fails")
	}
}
