package explorer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/explorer"
)

func placed(id string, lat, lon float64) domain.Listing {
	l := listing(id, 100, 1)
	l.Location = domain.GeoPoint{Lat: lat, Lon: lon}
	return l
}

func TestReconciler_SelectOnlyVisible(t *testing.T) {
	var r explorer.Reconciler
	visible := []domain.Listing{placed("A", 1, 1)}

	assert.False(t, r.Select("B", visible))
	_, ok := r.Selection()
	assert.False(t, ok)

	assert.True(t, r.Select("A", visible))
	id, ok := r.Selection()
	require.True(t, ok)
	assert.Equal(t, "A", id)

	// An invalid request leaves the existing selection alone.
	assert.False(t, r.Select("B", visible))
	id, _ = r.Selection()
	assert.Equal(t, "A", id)
}

func TestReconciler_AutoClear(t *testing.T) {
	var r explorer.Reconciler
	a, b := placed("A", 1, 1), placed("B", 2, 2)

	require.True(t, r.Select("A", []domain.Listing{a, b}))
	assert.False(t, r.Reconcile([]domain.Listing{a, b}))
	assert.True(t, r.Reconcile([]domain.Listing{b}))
	_, ok := r.Selection()
	assert.False(t, ok)
	assert.False(t, r.Reconcile(nil), "nothing left to clear")
}

func TestReconciler_Viewport(t *testing.T) {
	var r explorer.Reconciler
	a, b := placed("A", 10, -5), placed("B", 12, -3)
	visible := []domain.Listing{a, b}

	vp := r.Viewport(visible)
	assert.Equal(t, domain.ViewportFit, vp.Action)
	require.NotNil(t, vp.Bounds)
	assert.Equal(t, domain.Bounds{MinLat: 10, MinLon: -5, MaxLat: 12, MaxLon: -3}, *vp.Bounds)

	require.True(t, r.Select("B", visible))
	vp = r.Viewport(visible)
	assert.Equal(t, domain.ViewportFocus, vp.Action)
	assert.Equal(t, domain.FocusZoom, vp.Zoom)
	assert.Equal(t, "B", vp.ListingID)
	require.NotNil(t, vp.Center)
	assert.Equal(t, b.Location, *vp.Center)

	// Selection outside the visible set, before reconciliation, falls back to fit.
	vp = r.Viewport([]domain.Listing{a})
	assert.Equal(t, domain.ViewportFit, vp.Action)

	r.Deselect()
	assert.Equal(t, domain.ViewportKeep, r.Viewport(nil).Action)
}
