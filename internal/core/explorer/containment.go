package explorer

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// Containment selects how a boundary is tested against a coordinate.
type Containment int

const (
	// ContainEnvelope tests against the polygon's axis-aligned bounding box.
	ContainEnvelope Containment = iota
	// ContainPolygon performs an exact point-in-polygon test.
	ContainPolygon
)

func (c Containment) String() string {
	if c == ContainPolygon {
		return "polygon"
	}
	return "envelope"
}

// ParseContainment maps a config value to a Containment mode.
func ParseContainment(s string) (Containment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "envelope", "bbox":
		return ContainEnvelope, nil
	case "polygon":
		return ContainPolygon, nil
	}
	return ContainEnvelope, fmt.Errorf("unknown containment mode %q", s)
}

// IsInside reports whether p lies within b. A nil or vertex-less boundary
// places no constraint. Points on the edge count as inside.
func IsInside(p domain.GeoPoint, b *domain.Boundary, mode Containment) bool {
	if b == nil || len(b.Vertices) == 0 {
		return true
	}
	ring := toRing(b.Vertices)
	pt := orb.Point{p.Lon, p.Lat}
	if mode == ContainPolygon {
		return planar.RingContains(ring, pt)
	}
	return ring.Bound().Contains(pt)
}

// orb points are [lon, lat].
func toRing(vertices []domain.GeoPoint) orb.Ring {
	ring := make(orb.Ring, len(vertices))
	for i, v := range vertices {
		ring[i] = orb.Point{v.Lon, v.Lat}
	}
	return ring
}

// Envelope returns the bounds enclosing every listing, or false if there are none.
func Envelope(listings []domain.Listing) (domain.Bounds, bool) {
	if len(listings) == 0 {
		return domain.Bounds{}, false
	}
	mp := make(orb.MultiPoint, len(listings))
	for i, l := range listings {
		mp[i] = orb.Point{l.Location.Lon, l.Location.Lat}
	}
	b := mp.Bound()
	return domain.Bounds{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}, true
}
