// Package geospatial holds distance helpers for WGS 84 coordinates.
package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// Distance is the great-circle distance in meters between two points.
func Distance(a, b domain.GeoPoint) float64 {
	return geo.DistanceHaversine(point(a), point(b))
}

// BoundAround returns the box enclosing a circle of radiusMeters around center.
// Use it as a cheap prefilter before Distance.
func BoundAround(center domain.GeoPoint, radiusMeters float64) domain.Bounds {
	b := geo.NewBoundAroundPoint(point(center), radiusMeters)
	return domain.Bounds{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}
}

// InBounds reports whether p lies inside b, edges included.
func InBounds(b domain.Bounds, p domain.GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

func point(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
