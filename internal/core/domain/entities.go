package domain

import (
	"encoding/json"
	"time"
)

// Difficulty is the hiking difficulty rating of a route.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyModerate Difficulty = "Moderate"
	DifficultyHard     Difficulty = "Hard"
)

// RouteAlternative is one of the alternative paths the routing provider
// returns for an origin/destination pair. Index 0 is the provider's
// primary route.
type RouteAlternative struct {
	Geometry        []Coordinate    `json:"geometry"`
	DurationSeconds float64         `json:"duration_seconds"`
	Legs            json.RawMessage `json:"legs,omitempty"`
	Index           int             `json:"index"`
	// Degraded marks a straight-line fallback produced when every routing
	// server failed. Degraded results are never cached.
	Degraded bool `json:"degraded,omitempty"`
}

// RouteStats summarizes an elevation-enriched route. Values are computed
// once per alternative and read-only afterwards.
type RouteStats struct {
	DistanceKm     float64         `json:"distance_km"`
	ElevationGainM float64         `json:"elevation_gain_m"`
	ElevationLossM float64         `json:"elevation_loss_m"`
	MaxElevationM  float64         `json:"max_elevation_m"`
	MinElevationM  float64         `json:"min_elevation_m"`
	Difficulty     Difficulty      `json:"difficulty"`
	RouteIndex     int             `json:"route_index"`
	OsrmTimeMin    float64         `json:"osrm_time_min"`
	Legs           json.RawMessage `json:"legs"`
}

// PointOfInterest is an OSM element matched near a route.
type PointOfInterest struct {
	ID        int64             `json:"id"`
	OSMType   string            `json:"type"` // node, way, relation
	Lat       float64           `json:"lat"`
	Lon       float64           `json:"lon"`
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Tags      map[string]string `json:"tags"`
	Relevance int               `json:"relevance"`
	CreatedAt time.Time         `json:"-"`
}

// Feature is a GeoJSON Feature carrying one enriched route alternative.
// Geometry coordinates are [lon, lat, ele] triples.
type Feature struct {
	Type       string     `json:"type"`
	ID         int        `json:"id"`
	Properties RouteStats `json:"properties"`
	Geometry   LineString `json:"geometry"`
}

// LineString is a GeoJSON LineString geometry.
type LineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// FeatureCollection is the GeoJSON response of the hiking route endpoint.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewLineString builds a GeoJSON LineString from 3-D points, converting
// from (lat,lon) to GeoJSON (lon,lat) order.
func NewLineString(points []Point3D) LineString {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lon, p.Lat, p.Elevation}
	}
	return LineString{Type: "LineString", Coordinates: coords}
}
