package usecases

import (
	"context"
	"fmt"
	"math"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/core/ports"
	"github.com/imartinde/senderos/internal/pkg/metrics"
)

// HikingService computes enriched hiking routes: alternative geometries
// from the routing provider, elevation per point, trail statistics and a
// difficulty rating, assembled into a GeoJSON FeatureCollection.
type HikingService struct {
	routes    ports.RouteProvider
	elevation ports.ElevationProvider
	profile   string
}

// NewHikingService creates a new HikingService. profile is the routing
// profile passed to the provider, typically "foot".
func NewHikingService(routes ports.RouteProvider, elevation ports.ElevationProvider, profile string) *HikingService {
	return &HikingService{routes: routes, elevation: elevation, profile: profile}
}

// ComputeHikingRoute builds the route start -> waypoints -> end and
// enriches every alternative the provider returns, preserving provider
// ranking (feature id 0 is the primary route).
func (s *HikingService) ComputeHikingRoute(ctx context.Context, start, end domain.Coordinate, waypoints []domain.Coordinate) (domain.FeatureCollection, error) {
	coords := make([]domain.Coordinate, 0, len(waypoints)+2)
	coords = append(coords, start)
	coords = append(coords, waypoints...)
	coords = append(coords, end)

	alternatives, err := s.routes.GetAlternatives(ctx, coords, s.profile, ports.RouteOptions{
		Alternatives: 3,
		Steps:        true,
	})
	if err != nil {
		return domain.FeatureCollection{}, fmt.Errorf("get route alternatives: %w", err)
	}

	features := make([]domain.Feature, 0, len(alternatives))
	for i, alt := range alternatives {
		route3D := s.elevation.AddElevation(ctx, alt.Geometry)

		stats := computeStatistics(route3D)
		stats.RouteIndex = i
		stats.OsrmTimeMin = math.Round(alt.DurationSeconds / 60)
		stats.Legs = alt.Legs

		features = append(features, domain.Feature{
			Type:       "Feature",
			ID:         i,
			Properties: stats,
			Geometry:   domain.NewLineString(route3D),
		})
	}

	metrics.RoutesComputed.WithLabelValues(s.profile).Inc()
	return domain.FeatureCollection{Type: "FeatureCollection", Features: features}, nil
}
