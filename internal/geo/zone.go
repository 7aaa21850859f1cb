package geo

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/emberwatch/evac-cli/internal/model"
)

// zoneVertices controls how finely the circular buffer is approximated.
const zoneVertices = 32

// DangerZone is unsafe territory around a fire detection. The guidance
// pipeline treats it as opaque and only passes it to collaborators; the
// polygon is what those collaborators test against.
type DangerZone struct {
	Center   Point
	RadiusKm float64
	polygon  *geom.Polygon
}

// NewCircleZone builds a circular danger zone of radiusKm around center.
func NewCircleZone(center Point, radiusKm float64) DangerZone {
	angular := radiusKm / earthRadiusKm * 180 / math.Pi
	lngScale := math.Cos(center.Lat * math.Pi / 180)
	if math.Abs(lngScale) < 1e-9 {
		lngScale = 1e-9
	}

	flat := make([]float64, 0, (zoneVertices+1)*2)
	for i := 0; i <= zoneVertices; i++ {
		theta := 2 * math.Pi * float64(i%zoneVertices) / zoneVertices
		flat = append(flat,
			center.Lng+angular*math.Sin(theta)/lngScale,
			center.Lat+angular*math.Cos(theta),
		)
	}

	polygon := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(4326)
	return DangerZone{Center: center, RadiusKm: radiusKm, polygon: polygon}
}

// ZonesFromFires derives one circular danger zone per fire detection.
func ZonesFromFires(fires []model.Fire, radiusKm float64) []DangerZone {
	zones := make([]DangerZone, 0, len(fires))
	for _, fire := range fires {
		zones = append(zones, NewCircleZone(Point{Lat: fire.Latitude, Lng: fire.Longitude}, radiusKm))
	}
	return zones
}

// Contains reports whether p lies inside the zone polygon.
func (z DangerZone) Contains(p Point) bool {
	if z.polygon == nil {
		return false
	}
	ring := z.polygon.LinearRing(0)
	return xy.IsPointInRing(ring.Layout(), geom.Coord{p.Lng, p.Lat}, ring.FlatCoords())
}

// Polygon exposes the underlying geometry for collaborators that need it.
func (z DangerZone) Polygon() *geom.Polygon {
	return z.polygon
}

// AnyContains reports whether p is inside at least one of the zones.
func AnyContains(zones []DangerZone, p Point) bool {
	for _, z := range zones {
		if z.Contains(p) {
			return true
		}
	}
	return false
}
