package explorer

import (
	"cmp"
	"slices"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// SortListings returns a copy of listings ordered ascending by opt. The sort
// is stable, and SortNone returns the listings in their original order.
func SortListings(listings []domain.Listing, opt domain.SortOption) []domain.Listing {
	out := slices.Clone(listings)
	var key func(a, b domain.Listing) int
	switch opt {
	case domain.SortPrice:
		key = func(a, b domain.Listing) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortArea:
		key = func(a, b domain.Listing) int { return cmp.Compare(a.Area, b.Area) }
	case domain.SortBedrooms:
		key = func(a, b domain.Listing) int { return cmp.Compare(a.Bedrooms, b.Bedrooms) }
	default:
		return out
	}
	slices.SortStableFunc(out, key)
	return out
}

// ComputeFacets summarises listings for the filter controls.
func ComputeFacets(listings []domain.Listing) domain.Facets {
	f := domain.Facets{Count: len(listings), PropertyTypes: []string{}}
	if len(listings) == 0 {
		return f
	}
	f.MinPrice, f.MaxPrice = listings[0].Price, listings[0].Price
	seen := make(map[string]struct{})
	for _, l := range listings {
		f.MinPrice = min(f.MinPrice, l.Price)
		f.MaxPrice = max(f.MaxPrice, l.Price)
		f.MaxArea = max(f.MaxArea, l.Area)
		if l.PropertyType == "" {
			continue
		}
		if _, ok := seen[l.PropertyType]; !ok {
			seen[l.PropertyType] = struct{}{}
			f.PropertyTypes = append(f.PropertyTypes, l.PropertyType)
		}
	}
	slices.Sort(f.PropertyTypes)
	return f
}

// DefaultCriteria spans the full price range of listings and leaves every
// other field unconstrained.
func DefaultCriteria(listings []domain.Listing) domain.FilterCriteria {
	f := ComputeFacets(listings)
	return domain.FilterCriteria{
		PriceRange: domain.PriceRange{Low: f.MinPrice, High: f.MaxPrice},
	}
}
