package geospatial

import "math"

// Meters per degree at the equator. Longitude is additionally scaled by
// cos(latitude) when projecting.
const (
	metersPerDegreeLat = 110574.0
	metersPerDegreeLon = 111320.0
)

// PointToSegmentMeters returns the distance in meters from (lat, lon) to the
// segment (lat1, lon1)-(lat2, lon2). Coordinates are projected to a local
// planar frame (longitude scaled by cos(latitude)), then the point is
// projected onto the segment with the parameter clamped to [0,1]. The planar
// approximation is accurate for the sub-kilometer radii this service uses.
func PointToSegmentMeters(lat, lon, lat1, lon1, lat2, lon2 float64) float64 {
	xp := lon * metersPerDegreeLon * math.Cos(toRad(lat))
	yp := lat * metersPerDegreeLat

	x1 := lon1 * metersPerDegreeLon * math.Cos(toRad(lat1))
	y1 := lat1 * metersPerDegreeLat

	x2 := lon2 * metersPerDegreeLon * math.Cos(toRad(lat2))
	y2 := lat2 * metersPerDegreeLat

	l2 := (x2-x1)*(x2-x1) + (y2-y1)*(y2-y1)
	if l2 == 0 {
		return math.Hypot(xp-x1, yp-y1)
	}

	t := ((xp-x1)*(x2-x1) + (yp-y1)*(y2-y1)) / l2
	t = math.Max(0, math.Min(1, t))

	xProj := x1 + t*(x2-x1)
	yProj := y1 + t*(y2-y1)

	return math.Hypot(xp-xProj, yp-yProj)
}

// DistanceToPathMeters returns the minimum distance from a point to any
// segment of the polyline. A single-point path degenerates to point
// distance.
func DistanceToPathMeters(lat, lon float64, path []Point) float64 {
	if len(path) == 0 {
		return math.Inf(1)
	}
	if len(path) == 1 {
		return Haversine(lat, lon, path[0].Lat, path[0].Lon)
	}

	min := math.Inf(1)
	for i := 0; i < len(path)-1; i++ {
		d := PointToSegmentMeters(lat, lon,
			path[i].Lat, path[i].Lon,
			path[i+1].Lat, path[i+1].Lon)
		if d < min {
			min = d
		}
	}
	return min
}
