package geo

import "math"

// cardinals is ordered clockwise starting at north; one entry per 45 degrees.
var cardinals = [8]string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// Bearing returns the initial great-circle bearing from origin to dest in
// degrees, normalized to [0, 360). atan2 handles the meridian, equator, and
// antipodal cases without special branches.
func Bearing(origin, dest Point) float64 {
	lat1 := origin.Lat * math.Pi / 180
	lat2 := dest.Lat * math.Pi / 180
	dLng := (dest.Lng - origin.Lng) * math.Pi / 180

	x := math.Sin(dLng) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Atan2(x, y) * 180 / math.Pi

	return math.Mod(deg+360, 360)
}

// Cardinal maps the bearing from origin to dest onto one of the 8
// cardinal/intercardinal directions.
func Cardinal(origin, dest Point) string {
	idx := int(math.Round(Bearing(origin, dest)/45)) % len(cardinals)
	return cardinals[idx]
}
