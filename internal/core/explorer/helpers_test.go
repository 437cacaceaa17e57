package explorer_test

import "github.com/samirrijal/propmap/internal/core/domain"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func listing(id string, price float64, bedrooms int) domain.Listing {
	return domain.Listing{
		ID:           id,
		Name:         "Listing " + id,
		Description:  "A listing numbered " + id,
		Location:     domain.GeoPoint{Lat: 37.77, Lon: -122.42},
		Price:        price,
		Bedrooms:     bedrooms,
		Bathrooms:    1,
		PropertyType: "House",
		Area:         100,
	}
}

func ids(listings []domain.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}

// openCriteria places no constraint besides a price range wide enough for the fixtures.
func openCriteria() domain.FilterCriteria {
	return domain.FilterCriteria{PriceRange: domain.PriceRange{Low: 0, High: 1e9}}
}
