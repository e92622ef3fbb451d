package postgres

import (
	"context"
	"fmt"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/core/ports"
	"github.com/imartinde/senderos/internal/pkg/geospatial"
	"github.com/imartinde/senderos/internal/pkg/metrics"
)

// PoiProvider implements ports.PoiProvider against the local pois table.
// It prefilters with the route's expanded bounding box, then keeps only
// POIs whose exact distance to the polyline is within the radius.
type PoiProvider struct {
	repo ports.PoiRepository
}

// NewPoiProvider creates a database-backed POI provider.
func NewPoiProvider(repo ports.PoiRepository) *PoiProvider {
	return &PoiProvider{repo: repo}
}

// PoisNearRoute returns stored POIs within radiusMeters of the route.
func (p *PoiProvider) PoisNearRoute(ctx context.Context, route domain.RouteGeometry, radiusMeters int) ([]domain.PointOfInterest, error) {
	if len(route.Coordinates) == 0 {
		return nil, fmt.Errorf("route has no coordinates")
	}

	path := make([]geospatial.Point, len(route.Coordinates))
	for i, c := range route.Coordinates {
		path[i] = geospatial.Point{Lat: c.Lat, Lon: c.Lon}
	}

	bounds := geospatial.BoundsOf(path).Expand(float64(radiusMeters))

	candidates, err := p.repo.FindInBounds(ctx, bounds)
	if err != nil {
		metrics.PoiQueries.WithLabelValues("database", "error").Inc()
		return nil, fmt.Errorf("find pois in bounds: %w", err)
	}

	var pois []domain.PointOfInterest
	for _, poi := range candidates {
		d := geospatial.DistanceToPathMeters(poi.Lat, poi.Lon, path)
		if d <= float64(radiusMeters) {
			pois = append(pois, poi)
		}
	}

	metrics.PoiQueries.WithLabelValues("database", "ok").Inc()
	return pois, nil
}
