package domain

// ViewportAction tells the map renderer what to do with its camera.
type ViewportAction string

const (
	// ViewportKeep leaves the current camera untouched.
	ViewportKeep ViewportAction = "keep"
	// ViewportFocus centers on one listing at close zoom.
	ViewportFocus ViewportAction = "focus"
	// ViewportFit fits the camera to the enclosing bounds.
	ViewportFit ViewportAction = "fit"
)

// FocusZoom is the map zoom level used when centering on a selected listing.
const FocusZoom = 16

// ViewportInstruction is advisory output for the rendering layer.
type ViewportInstruction struct {
	Action    ViewportAction `json:"action"`
	Center    *GeoPoint      `json:"center,omitempty"`
	Zoom      int            `json:"zoom,omitempty"`
	Bounds    *Bounds        `json:"bounds,omitempty"`
	ListingID string         `json:"listing_id,omitempty"`
}

// Snapshot is the full observable state of one explore session.
type Snapshot struct {
	Visible   []Listing           `json:"visible"`
	Selection *string             `json:"selection"`
	Viewport  ViewportInstruction `json:"viewport"`
	Query     string              `json:"query"`
	Criteria  FilterCriteria      `json:"criteria"`
	Boundary  *Boundary           `json:"boundary"`
	Sort      SortOption          `json:"sort"`
	Facets    Facets              `json:"facets"`
}
