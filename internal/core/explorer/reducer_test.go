package explorer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/explorer"
)

// triangle covers lon -10..0, lat 0..10; its hypotenuse runs from (0,-10) to (10,0).
var triangle = &domain.Boundary{Vertices: []domain.GeoPoint{
	{Lat: 0, Lon: -10},
	{Lat: 0, Lon: 0},
	{Lat: 10, Lon: 0},
}}

func TestIsInside_NoBoundary(t *testing.T) {
	for _, p := range []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: -90, Lon: 180}, {Lat: 45.5, Lon: -73.6}} {
		assert.True(t, explorer.IsInside(p, nil, explorer.ContainEnvelope))
		assert.True(t, explorer.IsInside(p, nil, explorer.ContainPolygon))
		assert.True(t, explorer.IsInside(p, &domain.Boundary{}, explorer.ContainEnvelope))
	}
}

func TestIsInside_Envelope(t *testing.T) {
	// Outside the triangle but inside its bounding box.
	corner := domain.GeoPoint{Lat: 9, Lon: -9}

	assert.True(t, explorer.IsInside(corner, triangle, explorer.ContainEnvelope))
	assert.True(t, explorer.IsInside(domain.GeoPoint{Lat: 10, Lon: 0}, triangle, explorer.ContainEnvelope))
	assert.False(t, explorer.IsInside(domain.GeoPoint{Lat: 11, Lon: -5}, triangle, explorer.ContainEnvelope))
}

func TestIsInside_Polygon(t *testing.T) {
	assert.False(t, explorer.IsInside(domain.GeoPoint{Lat: 9, Lon: -9}, triangle, explorer.ContainPolygon))
	assert.True(t, explorer.IsInside(domain.GeoPoint{Lat: 1, Lon: -1}, triangle, explorer.ContainPolygon))
}

func TestIsInside_DoesNotMutate(t *testing.T) {
	b := &domain.Boundary{Vertices: []domain.GeoPoint{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 1, Lon: 4}}}
	before := append([]domain.GeoPoint(nil), b.Vertices...)
	explorer.IsInside(domain.GeoPoint{Lat: 2, Lon: 3}, b, explorer.ContainPolygon)
	assert.Equal(t, before, b.Vertices)
}

func TestParseContainment(t *testing.T) {
	m, err := explorer.ParseContainment("Polygon")
	require.NoError(t, err)
	assert.Equal(t, explorer.ContainPolygon, m)

	m, err = explorer.ParseContainment("")
	require.NoError(t, err)
	assert.Equal(t, explorer.ContainEnvelope, m)

	_, err = explorer.ParseContainment("circle")
	assert.Error(t, err)
}

func TestComputeVisible_PreservesOrder(t *testing.T) {
	all := []domain.Listing{listing("A", 50, 1), listing("B", 150, 1), listing("C", 60, 1), listing("D", 120, 1)}
	c := domain.FilterCriteria{PriceRange: domain.PriceRange{Low: 100, High: 200}}

	visible := explorer.ComputeVisible(all, "", c, nil)
	assert.Equal(t, []string{"B", "D"}, ids(visible))
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(all), "input must not be reordered")
}

func TestComputeVisible_Empty(t *testing.T) {
	visible := explorer.ComputeVisible(nil, "anything", openCriteria(), triangle)
	require.NotNil(t, visible)
	assert.Empty(t, visible)
}

func TestComputeVisible_Boundary(t *testing.T) {
	in := listing("in", 100, 1)
	in.Location = domain.GeoPoint{Lat: 5, Lon: -5}
	out := listing("out", 100, 1)
	out.Location = domain.GeoPoint{Lat: 20, Lon: 20}

	visible := explorer.ComputeVisible([]domain.Listing{out, in}, "", openCriteria(), triangle)
	assert.Equal(t, []string{"in"}, ids(visible))
}

func TestSortListings(t *testing.T) {
	a := listing("a", 300, 2)
	b := listing("b", 100, 3)
	c := listing("c", 300, 1)
	all := []domain.Listing{a, b, c}

	assert.Equal(t, []string{"b", "a", "c"}, ids(explorer.SortListings(all, domain.SortPrice)), "stable on ties")
	assert.Equal(t, []string{"c", "a", "b"}, ids(explorer.SortListings(all, domain.SortBedrooms)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(explorer.SortListings(all, domain.SortNone)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))
}

func TestComputeFacets(t *testing.T) {
	a := listing("a", 300, 2)
	a.PropertyType = "Villa"
	a.Area = 250
	b := listing("b", 100, 3)

	f := explorer.ComputeFacets([]domain.Listing{a, b})
	assert.Equal(t, 2, f.Count)
	assert.Equal(t, 100.0, f.MinPrice)
	assert.Equal(t, 300.0, f.MaxPrice)
	assert.Equal(t, 250.0, f.MaxArea)
	assert.Equal(t, []string{"House", "Villa"}, f.PropertyTypes)

	empty := explorer.ComputeFacets(nil)
	assert.Zero(t, empty.Count)
	assert.Empty(t, empty.PropertyTypes)
}
