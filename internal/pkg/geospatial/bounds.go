package geospatial

import "math"

// Bounds is a geographic bounding box.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// BoundsOf returns the bounding box of a point sequence. An empty input
// yields the inverted box (MinLat > MaxLat), which contains nothing.
func BoundsOf(points []Point) Bounds {
	b := Bounds{MinLat: 90, MinLon: 180, MaxLat: -90, MaxLon: -180}
	for _, p := range points {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
	}
	return b
}

// Expand grows the box by meters/111000 degrees of latitude on every side.
// Longitude degrees shrink with latitude, so the east-west buffer is widened
// by 1/cos(lat) at the box midpoint. The box must never undercut the radius:
// it is a prefilter and a dropped candidate skips the exact distance test.
// Over-selection is fine, candidates outside the radius are filtered later.
func (b Bounds) Expand(meters float64) Bounds {
	latDeg := meters / 111000.0
	lonDeg := latDeg
	if c := math.Cos(toRad((b.MinLat + b.MaxLat) / 2)); c > 0.01 {
		lonDeg = latDeg / c
	}
	return Bounds{
		MinLat: b.MinLat - latDeg,
		MinLon: b.MinLon - lonDeg,
		MaxLat: b.MaxLat + latDeg,
		MaxLon: b.MaxLon + lonDeg,
	}
}

// Contains reports whether the point lies inside the box (inclusive).
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}
