package explorer

import "github.com/samirrijal/propmap/internal/core/domain"

// Reducer derives the visible subset of a listing collection. It keeps no
// state between calls; recompute it whenever any input changes.
type Reducer struct {
	Containment Containment
}

// ComputeVisible returns the listings that satisfy query, criteria, and the
// boundary, in input order. The input slice is not modified.
func (r Reducer) ComputeVisible(listings []domain.Listing, query string, c domain.FilterCriteria, b *domain.Boundary) []domain.Listing {
	visible := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, query, c) && IsInside(l.Location, b, r.Containment) {
			visible = append(visible, l)
		}
	}
	return visible
}

// ComputeVisible filters with envelope containment.
func ComputeVisible(listings []domain.Listing, query string, c domain.FilterCriteria, b *domain.Boundary) []domain.Listing {
	return Reducer{}.ComputeVisible(listings, query, c, b)
}
