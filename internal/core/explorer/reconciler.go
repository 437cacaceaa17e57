package explorer

import "github.com/samirrijal/propmap/internal/core/domain"

// Reconciler owns the selection and keeps it a member of the visible set.
// It holds no camera state; viewport instructions are derived on demand.
type Reconciler struct {
	selected *string
}

// Selection returns the selected listing id, if any.
func (r *Reconciler) Selection() (string, bool) {
	if r.selected == nil {
		return "", false
	}
	return *r.selected, true
}

// Reconcile clears the selection when it is no longer visible. It reports
// whether a selection was cleared.
func (r *Reconciler) Reconcile(visible []domain.Listing) bool {
	if r.selected == nil {
		return false
	}
	if indexOf(visible, *r.selected) >= 0 {
		return false
	}
	r.selected = nil
	return true
}

// Select makes id the selection if it is currently visible. Selecting a
// listing outside the visible set is a no-op and returns false.
func (r *Reconciler) Select(id string, visible []domain.Listing) bool {
	if indexOf(visible, id) < 0 {
		return false
	}
	r.selected = &id
	return true
}

// Deselect clears the selection.
func (r *Reconciler) Deselect() {
	r.selected = nil
}

// Viewport focuses on the selected listing when it is visible, otherwise
// fits all visible listings. With nothing visible the camera is kept.
func (r *Reconciler) Viewport(visible []domain.Listing) domain.ViewportInstruction {
	if r.selected != nil {
		if i := indexOf(visible, *r.selected); i >= 0 {
			center := visible[i].Location
			return domain.ViewportInstruction{
				Action:    domain.ViewportFocus,
				Center:    &center,
				Zoom:      domain.FocusZoom,
				ListingID: visible[i].ID,
			}
		}
	}
	bounds, ok := Envelope(visible)
	if !ok {
		return domain.ViewportInstruction{Action: domain.ViewportKeep}
	}
	return domain.ViewportInstruction{Action: domain.ViewportFit, Bounds: &bounds}
}

func indexOf(listings []domain.Listing, id string) int {
	for i := range listings {
		if listings[i].ID == id {
			return i
		}
	}
	return -1
}
