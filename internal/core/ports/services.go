package ports

import (
	"context"

	"github.com/imartinde/senderos/internal/core/domain"
)

// RouteOptions tune a routing provider request.
type RouteOptions struct {
	// Alternatives asks the provider for up to N alternative routes.
	// Zero or one means a single route.
	Alternatives int
	// Steps requests per-leg turn instructions.
	Steps bool
}

// RouteProvider fetches routes from an external routing engine.
type RouteProvider interface {
	// GetAlternatives returns alternatives in provider ranking order
	// (index 0 is the primary). When every server fails, implementations
	// degrade to a single straight-line alternative built from the input
	// instead of returning an error.
	GetAlternatives(ctx context.Context, coords []domain.Coordinate, profile string, opts RouteOptions) ([]domain.RouteAlternative, error)
}

// ElevationProvider attaches elevation to a 2-D polyline. Enrichment is
// best-effort: implementations log failures and return the input points
// with zero elevation rather than an error, and always return exactly
// one output point per input point.
type ElevationProvider interface {
	AddElevation(ctx context.Context, coords []domain.Coordinate) []domain.Point3D
}

// PoiProvider finds points of interest near a route.
type PoiProvider interface {
	// PoisNearRoute returns POIs within radiusMeters of some segment of
	// the (already simplified) route.
	PoisNearRoute(ctx context.Context, route domain.RouteGeometry, radiusMeters int) ([]domain.PointOfInterest, error)
}

// CacheService provides whole-value read-through caching. Values are
// overwritten wholesale and expire after their TTL.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
