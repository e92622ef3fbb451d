package postgres

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/pkg/geospatial"
)

type mockPoiRepo struct {
	findInBoundsFn func(ctx context.Context, b geospatial.Bounds) ([]domain.PointOfInterest, error)
}

func (m *mockPoiRepo) FindInBounds(ctx context.Context, b geospatial.Bounds) ([]domain.PointOfInterest, error) {
	return m.findInBoundsFn(ctx, b)
}

func (m *mockPoiRepo) List(ctx context.Context, category string, offset, limit int) ([]domain.PointOfInterest, int, error) {
	return nil, 0, nil
}

func (m *mockPoiRepo) ReplaceAll(ctx context.Context, pois []domain.PointOfInterest) error {
	return nil
}

func TestPoisNearRouteFiltersByExactDistance(t *testing.T) {
	route := domain.RouteGeometry{Coordinates: []domain.Coordinate{
		{Lat: 27.95, Lon: -15.59},
		{Lat: 27.95, Lon: -15.57},
	}}

	repo := &mockPoiRepo{
		findInBoundsFn: func(ctx context.Context, b geospatial.Bounds) ([]domain.PointOfInterest, error) {
			if !b.Contains(27.95, -15.58) {
				t.Errorf("bounds do not cover the route: %+v", b)
			}
			return []domain.PointOfInterest{
				// On the segment, distance ~0.
				{ID: 1, Lat: 27.95, Lon: -15.58, Name: "on route"},
				// Roughly 550m north of the segment.
				{ID: 2, Lat: 27.955, Lon: -15.58, Name: "near route"},
				// Roughly 5.5km north, inside an expanded bbox corner but
				// outside the corridor.
				{ID: 3, Lat: 28.0, Lon: -15.58, Name: "far away"},
			}, nil
		},
	}

	p := NewPoiProvider(repo)

	pois, err := p.PoisNearRoute(context.Background(), route, 1000)
	if err != nil {
		t.Fatalf("PoisNearRoute: %v", err)
	}
	if len(pois) != 2 {
		t.Fatalf("got %d pois, want 2", len(pois))
	}
	if pois[0].ID != 1 || pois[1].ID != 2 {
		t.Errorf("unexpected pois: %+v", pois)
	}
}

func TestPoisNearRouteRadiusBoundary(t *testing.T) {
	route := domain.RouteGeometry{Coordinates: []domain.Coordinate{
		{Lat: 27.95, Lon: -15.59},
		{Lat: 27.95, Lon: -15.57},
	}}
	path := []geospatial.Point{
		{Lat: 27.95, Lon: -15.59},
		{Lat: 27.95, Lon: -15.57},
	}

	// A candidate a few hundred meters off the segment; its exact distance
	// decides inclusion, not the bbox prefilter.
	candidate := domain.PointOfInterest{ID: 7, Lat: 27.953, Lon: -15.58, Name: "fountain"}
	d := geospatial.DistanceToPathMeters(candidate.Lat, candidate.Lon, path)
	if d < 100 {
		t.Fatalf("candidate too close for a boundary check: %.1fm", d)
	}

	repo := &mockPoiRepo{
		findInBoundsFn: func(ctx context.Context, b geospatial.Bounds) ([]domain.PointOfInterest, error) {
			return []domain.PointOfInterest{candidate}, nil
		},
	}
	p := NewPoiProvider(repo)

	// Radius exactly covering the distance keeps the POI.
	pois, err := p.PoisNearRoute(context.Background(), route, int(math.Ceil(d)))
	if err != nil {
		t.Fatalf("PoisNearRoute: %v", err)
	}
	if len(pois) != 1 {
		t.Errorf("poi at distance %.1fm dropped by radius %d", d, int(math.Ceil(d)))
	}

	// One meter short of the distance excludes it.
	pois, err = p.PoisNearRoute(context.Background(), route, int(math.Floor(d))-1)
	if err != nil {
		t.Fatalf("PoisNearRoute: %v", err)
	}
	if len(pois) != 0 {
		t.Errorf("poi at distance %.1fm kept by radius %d", d, int(math.Floor(d))-1)
	}
}

func TestPoisNearRouteRepoErrorSurfaced(t *testing.T) {
	repo := &mockPoiRepo{
		findInBoundsFn: func(ctx context.Context, b geospatial.Bounds) ([]domain.PointOfInterest, error) {
			return nil, errors.New("connection refused")
		},
	}

	p := NewPoiProvider(repo)
	route := domain.RouteGeometry{Coordinates: []domain.Coordinate{{Lat: 27.95, Lon: -15.59}}}

	if _, err := p.PoisNearRoute(context.Background(), route, 500); err == nil {
		t.Error("expected repo error to surface")
	}
}

func TestPoisNearRouteEmptyRoute(t *testing.T) {
	p := NewPoiProvider(&mockPoiRepo{})

	if _, err := p.PoisNearRoute(context.Background(), domain.RouteGeometry{}, 500); err == nil {
		t.Error("expected error for empty route")
	}
}
