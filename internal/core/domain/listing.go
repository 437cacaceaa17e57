package domain

import (
	"strings"
	"time"
)

// Listing is a single property record shown on the map and in the sidebar.
type Listing struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Image        *string   `json:"image"`
	Location     GeoPoint  `json:"location"`
	Price        float64   `json:"price"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	PropertyType string    `json:"property_type"`
	Area         float64   `json:"area"`
	Geohash      string    `json:"geohash,omitempty"`
	Distance     *float64  `json:"distance,omitempty"` // computed field
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListingInput is the writable part of a listing, as submitted by the form.
type ListingInput struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Price        float64 `json:"price"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    int     `json:"bathrooms"`
	PropertyType string  `json:"propertyType"`
	Area         float64 `json:"area"`
}

// Trimmed returns in with surrounding whitespace removed from the text fields.
func (in ListingInput) Trimmed() ListingInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// ListingPatch carries a partial update. Nil fields are left unchanged.
type ListingPatch struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	PropertyType *string  `json:"propertyType,omitempty"`
	Area         *float64 `json:"area,omitempty"`
}

// Trimmed returns p with surrounding whitespace removed from the text fields
// it sets.
func (p ListingPatch) Trimmed() ListingPatch {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	return p
}

// Apply copies the non-nil fields of p onto l.
func (p ListingPatch) Apply(l *Listing) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Latitude != nil {
		l.Location.Lat = *p.Latitude
	}
	if p.Longitude != nil {
		l.Location.Lon = *p.Longitude
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Bedrooms != nil {
		l.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		l.Bathrooms = *p.Bathrooms
	}
	if p.PropertyType != nil {
		l.PropertyType = *p.PropertyType
	}
	if p.Area != nil {
		l.Area = *p.Area
	}
}

// Image is an uploaded listing photo held by the blob store.
type Image struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// PropertyTypes are the categories offered by the listing form.
// Other values are accepted as-is.
var PropertyTypes = []string{"House", "Apartment", "Condo", "Townhouse", "Villa", "Land"}

// ListingEventKind names a listing mutation.
type ListingEventKind string

const (
	ListingCreated ListingEventKind = "created"
	ListingUpdated ListingEventKind = "updated"
	ListingDeleted ListingEventKind = "deleted"
)

// ListingEvent is published after a listing mutation completes.
type ListingEvent struct {
	Kind      ListingEventKind `json:"kind"`
	ListingID string           `json:"listing_id"`
	Time      time.Time        `json:"time"`
}
