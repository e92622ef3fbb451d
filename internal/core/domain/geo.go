package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate represents a validated geographic coordinate (WGS 84).
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewCoordinate builds a Coordinate, rejecting out-of-range values.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("latitude must be between -90 and 90, got %v", lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinate{}, fmt.Errorf("longitude must be between -180 and 180, got %v", lon)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// ParseCoordinate parses a "lat,lon" string.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("coordinate must be \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid longitude %q", parts[1])
	}
	return NewCoordinate(lat, lon)
}

// String formats the coordinate as "lat,lon" with six decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// RouteGeometry is an ordered sequence of coordinates. Order is significant;
// the first and last point survive simplification.
type RouteGeometry struct {
	Coordinates []Coordinate `json:"coordinates"`
}

// NewRouteGeometry validates every coordinate pair ([lat,lon] order).
func NewRouteGeometry(pairs [][2]float64) (RouteGeometry, error) {
	coords := make([]Coordinate, 0, len(pairs))
	for i, p := range pairs {
		c, err := NewCoordinate(p[0], p[1])
		if err != nil {
			return RouteGeometry{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		coords = append(coords, c)
	}
	return RouteGeometry{Coordinates: coords}, nil
}

// String joins all coordinates as "lat,lon,lat,lon,...", the format the
// Overpass around: filter expects.
func (g RouteGeometry) String() string {
	parts := make([]string, len(g.Coordinates))
	for i, c := range g.Coordinates {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// Point3D is a coordinate with elevation in meters.
type Point3D struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"ele"`
}
