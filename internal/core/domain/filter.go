package domain

// PriceRange is a closed interval. Low > High matches nothing.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// FilterCriteria is the structured constraint set applied to listings.
// Nil pointers and empty strings mean "no constraint".
type FilterCriteria struct {
	PriceRange   PriceRange `json:"price_range"`
	Bedrooms     *int       `json:"bedrooms"`
	Bathrooms    *int       `json:"bathrooms"`
	MinArea      *float64   `json:"min_area"`
	PropertyType *string    `json:"property_type"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
}

// SortOption orders the listing collection. SortNone keeps source order.
type SortOption string

const (
	SortNone     SortOption = "none"
	SortPrice    SortOption = "price"
	SortArea     SortOption = "area"
	SortBedrooms SortOption = "bedrooms"
)

// ParseSortOption maps user input to a SortOption; unknown values yield false.
func ParseSortOption(s string) (SortOption, bool) {
	switch SortOption(s) {
	case "", SortNone:
		return SortNone, true
	case SortPrice, SortArea, SortBedrooms:
		return SortOption(s), true
	}
	return SortNone, false
}

// Facets summarise a listing collection for the filter controls.
type Facets struct {
	Count         int      `json:"count"`
	MinPrice      float64  `json:"min_price"`
	MaxPrice      float64  `json:"max_price"`
	MaxArea       float64  `json:"max_area"`
	PropertyTypes []string `json:"property_types"`
}
