package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/core/ports"
	"github.com/imartinde/senderos/internal/core/usecases"
)

// --- Mock RouteProvider ---

type mockRouteProvider struct {
	getAlternativesFn func(ctx context.Context, coords []domain.Coordinate, profile string, opts ports.RouteOptions) ([]domain.RouteAlternative, error)
}

func (m *mockRouteProvider) GetAlternatives(ctx context.Context, coords []domain.Coordinate, profile string, opts ports.RouteOptions) ([]domain.RouteAlternative, error) {
	return m.getAlternativesFn(ctx, coords, profile, opts)
}

// --- Mock ElevationProvider ---

type mockElevationProvider struct {
	addElevationFn func(ctx context.Context, coords []domain.Coordinate) []domain.Point3D
}

func (m *mockElevationProvider) AddElevation(ctx context.Context, coords []domain.Coordinate) []domain.Point3D {
	if m.addElevationFn != nil {
		return m.addElevationFn(ctx, coords)
	}
	out := make([]domain.Point3D, len(coords))
	for i, c := range coords {
		out[i] = domain.Point3D{Lat: c.Lat, Lon: c.Lon}
	}
	return out
}

// --- Tests ---

func TestHikingService_ComputeHikingRoute(t *testing.T) {
	geometry := []domain.Coordinate{
		{Lat: 27.9706, Lon: -15.6128},
		{Lat: 28.05, Lon: -15.52},
		{Lat: 28.1235, Lon: -15.4363},
	}

	routes := &mockRouteProvider{
		getAlternativesFn: func(ctx context.Context, coords []domain.Coordinate, profile string, opts ports.RouteOptions) ([]domain.RouteAlternative, error) {
			if profile != "foot" {
				t.Errorf("profile = %q, want foot", profile)
			}
			if len(coords) != 2 {
				t.Errorf("got %d waypoints, want start and end", len(coords))
			}
			if opts.Alternatives != 3 || !opts.Steps {
				t.Errorf("opts = %+v, want 3 alternatives with steps", opts)
			}
			return []domain.RouteAlternative{
				{Geometry: geometry, DurationSeconds: 5430, Index: 0},
				{Geometry: geometry, DurationSeconds: 7200, Index: 1},
			}, nil
		},
	}

	elevation := &mockElevationProvider{
		addElevationFn: func(ctx context.Context, coords []domain.Coordinate) []domain.Point3D {
			out := make([]domain.Point3D, len(coords))
			for i, c := range coords {
				out[i] = domain.Point3D{Lat: c.Lat, Lon: c.Lon, Elevation: 600 + float64(i)*100}
			}
			return out
		},
	}

	svc := usecases.NewHikingService(routes, elevation, "foot")

	fc, err := svc.ComputeHikingRoute(context.Background(),
		domain.Coordinate{Lat: 27.9706, Lon: -15.6128},
		domain.Coordinate{Lat: 28.1235, Lon: -15.4363},
		nil,
	)
	if err != nil {
		t.Fatalf("ComputeHikingRoute: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		t.Errorf("Type = %q", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("got %d features, want 2", len(fc.Features))
	}

	first := fc.Features[0]
	if first.ID != 0 || first.Properties.RouteIndex != 0 {
		t.Errorf("primary feature index = %d/%d, want 0/0", first.ID, first.Properties.RouteIndex)
	}
	if first.Properties.DistanceKm <= 0 {
		t.Errorf("DistanceKm = %v, want > 0", first.Properties.DistanceKm)
	}
	if first.Properties.OsrmTimeMin != 91 {
		t.Errorf("OsrmTimeMin = %v, want 91 (5430s rounded to minutes)", first.Properties.OsrmTimeMin)
	}
	if first.Properties.ElevationGainM != 200 {
		t.Errorf("ElevationGainM = %v, want 200", first.Properties.ElevationGainM)
	}

	if first.Geometry.Type != "LineString" {
		t.Errorf("geometry type = %q", first.Geometry.Type)
	}
	if len(first.Geometry.Coordinates) != 3 {
		t.Fatalf("got %d coordinate triples, want 3", len(first.Geometry.Coordinates))
	}
	// GeoJSON order is [lon, lat, ele].
	c0 := first.Geometry.Coordinates[0]
	if len(c0) != 3 || c0[0] != -15.6128 || c0[1] != 27.9706 || c0[2] != 600 {
		t.Errorf("Coordinates[0] = %v, want [-15.6128 27.9706 600]", c0)
	}

	if fc.Features[1].Properties.OsrmTimeMin != 120 {
		t.Errorf("second OsrmTimeMin = %v, want 120", fc.Features[1].Properties.OsrmTimeMin)
	}
}

func TestHikingService_WaypointsBetweenStartAndEnd(t *testing.T) {
	var got []domain.Coordinate
	routes := &mockRouteProvider{
		getAlternativesFn: func(ctx context.Context, coords []domain.Coordinate, profile string, opts ports.RouteOptions) ([]domain.RouteAlternative, error) {
			got = coords
			return nil, nil
		},
	}

	svc := usecases.NewHikingService(routes, &mockElevationProvider{}, "foot")

	start := domain.Coordinate{Lat: 27.9, Lon: -15.6}
	mid := domain.Coordinate{Lat: 28.0, Lon: -15.5}
	end := domain.Coordinate{Lat: 28.1, Lon: -15.4}

	if _, err := svc.ComputeHikingRoute(context.Background(), start, end, []domain.Coordinate{mid}); err != nil {
		t.Fatalf("ComputeHikingRoute: %v", err)
	}

	if len(got) != 3 || got[0] != start || got[1] != mid || got[2] != end {
		t.Errorf("waypoint order = %v", got)
	}
}

func TestHikingService_ProviderErrorSurfaced(t *testing.T) {
	routes := &mockRouteProvider{
		getAlternativesFn: func(ctx context.Context, coords []domain.Coordinate, profile string, opts ports.RouteOptions) ([]domain.RouteAlternative, error) {
			return nil, errors.New("no servers configured")
		},
	}

	svc := usecases.NewHikingService(routes, &mockElevationProvider{}, "foot")

	_, err := svc.ComputeHikingRoute(context.Background(),
		domain.Coordinate{Lat: 27.9, Lon: -15.6},
		domain.Coordinate{Lat: 28.1, Lon: -15.4},
		nil,
	)
	if err == nil {
		t.Error("expected provider error to surface")
	}
}
