package explorer

import (
	"slices"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// Session is the single owner of one client's exploration state: the listing
// collection, search text, filter criteria, boundary, sort order, and
// selection. Every mutator recomputes the visible set, reconciles the
// selection, and returns the resulting snapshot.
//
// A Session is not safe for concurrent use.
type Session struct {
	reducer    Reducer
	reconciler Reconciler

	source   []domain.Listing // as supplied
	listings []domain.Listing // source, ordered by sort
	facets   domain.Facets

	query      string
	criteria   domain.FilterCriteria
	priceFixed bool
	boundary   *domain.Boundary
	sort       domain.SortOption

	visible  []domain.Listing
	viewport domain.ViewportInstruction
	cleared  bool
}

// NewSession returns an empty session using the given containment mode.
func NewSession(mode Containment) *Session {
	s := &Session{
		reducer: Reducer{Containment: mode},
		sort:    domain.SortNone,
	}
	s.recompute()
	return s
}

// ReplaceListings swaps in a new collection. Until the user sets a price
// range, the range follows the collection's min and max.
func (s *Session) ReplaceListings(listings []domain.Listing) domain.Snapshot {
	s.source = slices.Clone(listings)
	s.listings = SortListings(s.source, s.sort)
	s.facets = ComputeFacets(s.source)
	if !s.priceFixed {
		s.criteria.PriceRange = domain.PriceRange{Low: s.facets.MinPrice, High: s.facets.MaxPrice}
	}
	return s.recompute()
}

// SetQuery replaces the free-text search.
func (s *Session) SetQuery(q string) domain.Snapshot {
	s.query = q
	return s.recompute()
}

// SetCriteria replaces every criterion, including the price range, which then
// stays fixed across collection changes. An inverted range empties the
// visible set.
func (s *Session) SetCriteria(c domain.FilterCriteria) domain.Snapshot {
	s.criteria = cloneCriteria(c)
	s.priceFixed = true
	return s.recompute()
}

// RefineCriteria replaces every criterion except the price range.
func (s *Session) RefineCriteria(c domain.FilterCriteria) domain.Snapshot {
	price := s.criteria.PriceRange
	s.criteria = cloneCriteria(c)
	s.criteria.PriceRange = price
	return s.recompute()
}

// ResetCriteria restores the default criteria for the current collection.
func (s *Session) ResetCriteria() domain.Snapshot {
	s.criteria = DefaultCriteria(s.source)
	s.priceFixed = false
	return s.recompute()
}

// SetBoundary replaces any existing boundary. A boundary without vertices
// clears it.
func (s *Session) SetBoundary(b domain.Boundary) domain.Snapshot {
	if len(b.Vertices) == 0 {
		return s.ClearBoundary()
	}
	s.boundary = &domain.Boundary{Vertices: slices.Clone(b.Vertices)}
	return s.recompute()
}

// ClearBoundary removes the boundary.
func (s *Session) ClearBoundary() domain.Snapshot {
	s.boundary = nil
	return s.recompute()
}

// SetSort reorders the collection. Filtering keeps the new order.
func (s *Session) SetSort(opt domain.SortOption) domain.Snapshot {
	s.sort = opt
	s.listings = SortListings(s.source, opt)
	return s.recompute()
}

// Select selects a visible listing. It reports false, leaving the state
// unchanged, when id is not visible.
func (s *Session) Select(id string) (domain.Snapshot, bool) {
	if !s.reconciler.Select(id, s.visible) {
		return s.Snapshot(), false
	}
	s.cleared = false
	s.viewport = s.reconciler.Viewport(s.visible)
	return s.Snapshot(), true
}

// Deselect clears the selection.
func (s *Session) Deselect() domain.Snapshot {
	s.reconciler.Deselect()
	s.cleared = false
	s.viewport = s.reconciler.Viewport(s.visible)
	return s.Snapshot()
}

// SelectionCleared reports whether the last recompute dropped the selection
// because it fell out of the visible set.
func (s *Session) SelectionCleared() bool {
	return s.cleared
}

// Visible returns the current visible set. Callers must not modify it.
func (s *Session) Visible() []domain.Listing {
	return s.visible
}

// Snapshot returns the current state without recomputing.
func (s *Session) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		Visible:  s.visible,
		Viewport: s.viewport,
		Query:    s.query,
		Criteria: cloneCriteria(s.criteria),
		Sort:     s.sort,
		Facets:   s.facets,
	}
	if id, ok := s.reconciler.Selection(); ok {
		snap.Selection = &id
	}
	if s.boundary != nil {
		snap.Boundary = &domain.Boundary{Vertices: slices.Clone(s.boundary.Vertices)}
	}
	return snap
}

func (s *Session) recompute() domain.Snapshot {
	s.visible = s.reducer.ComputeVisible(s.listings, s.query, s.criteria, s.boundary)
	s.cleared = s.reconciler.Reconcile(s.visible)
	s.viewport = s.reconciler.Viewport(s.visible)
	return s.Snapshot()
}

func cloneCriteria(c domain.FilterCriteria) domain.FilterCriteria {
	out := c
	if c.Bedrooms != nil {
		v := *c.Bedrooms
		out.Bedrooms = &v
	}
	if c.Bathrooms != nil {
		v := *c.Bathrooms
		out.Bathrooms = &v
	}
	if c.MinArea != nil {
		v := *c.MinArea
		out.MinArea = &v
	}
	if c.PropertyType != nil {
		v := *c.PropertyType
		out.PropertyType = &v
	}
	return out
}
