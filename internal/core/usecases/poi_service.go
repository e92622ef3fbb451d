package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/core/ports"
	"github.com/imartinde/senderos/internal/pkg/geospatial"
	"github.com/imartinde/senderos/internal/pkg/osm"
)

// Simplification bounds for the POI corridor query. The simplified route
// is serialized into the provider's query, so its size must stay bounded.
const (
	poiEpsilon    = 0.001
	poiEpsilonMax = 0.01
	poiMaxPoints  = 100
)

// PoiService finds points of interest around a hiking route.
type PoiService struct {
	provider         ports.PoiProvider
	perCategoryLimit int
}

// NewPoiService creates a new PoiService. perCategoryLimit caps the
// result per category to keep the map readable; zero or negative
// disables the cap.
func NewPoiService(provider ports.PoiProvider, perCategoryLimit int) *PoiService {
	return &PoiService{provider: provider, perCategoryLimit: perCategoryLimit}
}

// GetRoutePois returns POIs within radiusMeters of the route. The route
// is simplified first so the provider query stays bounded, and results
// are capped per category by descending relevance.
func (s *PoiService) GetRoutePois(ctx context.Context, route []domain.Coordinate, radiusMeters int) ([]domain.PointOfInterest, error) {
	if len(route) == 0 {
		return []domain.PointOfInterest{}, nil
	}

	points := make([]geospatial.Point, len(route))
	for i, c := range route {
		points[i] = geospatial.Point{Lat: c.Lat, Lon: c.Lon}
	}
	simplified := geospatial.SimplifyAdaptive(points, poiEpsilon, poiEpsilonMax, poiMaxPoints)

	coords := make([]domain.Coordinate, len(simplified))
	for i, p := range simplified {
		coords[i] = domain.Coordinate{Lat: p.Lat, Lon: p.Lon}
	}

	pois, err := s.provider.PoisNearRoute(ctx, domain.RouteGeometry{Coordinates: coords}, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("pois near route: %w", err)
	}

	return s.capPerCategory(pois), nil
}

// capPerCategory groups POIs by category and keeps the most relevant N
// of each, preserving a deterministic category order in the output.
func (s *PoiService) capPerCategory(pois []domain.PointOfInterest) []domain.PointOfInterest {
	if s.perCategoryLimit <= 0 {
		return pois
	}

	byCategory := make(map[string][]domain.PointOfInterest)
	for _, p := range pois {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	out := make([]domain.PointOfInterest, 0, len(pois))
	for _, category := range osm.Categories {
		group := byCategory[category]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Relevance > group[j].Relevance
		})
		if len(group) > s.perCategoryLimit {
			group = group[:s.perCategoryLimit]
		}
		out = append(out, group...)
	}
	return out
}
