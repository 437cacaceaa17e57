package usecases_test

import (
	"context"
	"strings"
	"sync"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// --- Mock ListingRepository ---

type mockListingRepo struct {
	mu       sync.Mutex
	items    map[string]domain.Listing
	order    []string
	listErr  error
	createFn func(ctx context.Context, l *domain.Listing) error
	listHits int
	batches  int
}

func newMockListingRepo(listings ...domain.Listing) *mockListingRepo {
	m := &mockListingRepo{items: make(map[string]domain.Listing)}
	for _, l := range listings {
		m.items[l.ID] = l
		m.order = append(m.order, l.ID)
	}
	return m
}

func (m *mockListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, l); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[l.ID] = *l
	m.order = append(m.order, l.ID)
	return nil
}

func (m *mockListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[l.ID]; !ok {
		return domain.ErrNotFound
	}
	m.items[l.ID] = *l
	return nil
}

func (m *mockListingRepo) UpsertBatch(ctx context.Context, listings []domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	for _, l := range listings {
		if _, ok := m.items[l.ID]; !ok {
			m.order = append(m.order, l.ID)
		}
		m.items[l.ID] = l
	}
	return nil
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (m *mockListingRepo) List(ctx context.Context) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listHits++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Listing, 0, len(m.order))
	for _, id := range m.order {
		if l, ok := m.items[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockListingRepo) ListByField(ctx context.Context, field, value string) ([]domain.Listing, error) {
	all, _ := m.List(ctx)
	var out []domain.Listing
	for _, l := range all {
		if field == "property_type" && l.PropertyType == value {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockListingRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// --- Mock ImageStore ---

type mockImageStore struct {
	images  map[string]*domain.Image
	deleted []string
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{images: make(map[string]*domain.Image)}
}

func (m *mockImageStore) Upload(ctx context.Context, img *domain.Image) error {
	m.images[img.ID] = img
	return nil
}

func (m *mockImageStore) Get(ctx context.Context, id string) (*domain.Image, error) {
	img, ok := m.images[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return img, nil
}

func (m *mockImageStore) URL(id string) string { return "/v1/images/" + id }

func (m *mockImageStore) IDFromURL(url string) (string, bool) {
	id, ok := strings.CutPrefix(url, "/v1/images/")
	return id, ok && id != ""
}

func (m *mockImageStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.images[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.images, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	data    map[string][]byte
	deletes int
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	m.deletes++
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []domain.ListingEvent
}

func (m *mockPublisher) PublishListingEvent(ctx context.Context, e *domain.ListingEvent) error {
	m.events = append(m.events, *e)
	return nil
}

// --- Stub ListingValidator ---

type stubValidator struct {
	err error
}

func (v stubValidator) ValidateInput(domain.ListingInput) error { return v.err }
func (v stubValidator) ValidatePatch(domain.ListingPatch) error { return v.err }

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
