package osrm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/imartinde/senderos/internal/adapters/memory"
	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/core/ports"
)

var testCoords = []domain.Coordinate{
	{Lat: 27.95, Lon: -15.59},
	{Lat: 27.96, Lon: -15.57},
}

const okBody = `{
	"code": "Ok",
	"routes": [{
		"geometry": {"coordinates": [[-15.59, 27.95], [-15.58, 27.955], [-15.57, 27.96]]},
		"duration": 5400.0,
		"legs": [{"distance": 8000}]
	}]
}`

func newTestClient(t *testing.T, servers ...string) *Client {
	t.Helper()
	return New(servers, 25, 5*time.Second, memory.New())
}

func TestGetAlternativesSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/foot/") {
			t.Errorf("expected profile in path, got %s", r.URL.Path)
		}
		fmt.Fprint(w, okBody)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL+"/route/v1")

	alts, err := c.GetAlternatives(context.Background(), testCoords, "foot", ports.RouteOptions{})
	if err != nil {
		t.Fatalf("GetAlternatives: %v", err)
	}
	if len(alts) != 1 {
		t.Fatalf("expected 1 alternative, got %d", len(alts))
	}

	alt := alts[0]
	if alt.Degraded {
		t.Error("expected non-degraded result")
	}
	if alt.DurationSeconds != 5400 {
		t.Errorf("duration = %v, want 5400", alt.DurationSeconds)
	}
	if len(alt.Geometry) != 3 {
		t.Fatalf("expected 3 geometry points, got %d", len(alt.Geometry))
	}
	// Response pairs are (lon, lat); check they were swapped.
	if alt.Geometry[0].Lat != 27.95 || alt.Geometry[0].Lon != -15.59 {
		t.Errorf("geometry[0] = %+v, want lat 27.95 lon -15.59", alt.Geometry[0])
	}
}

func TestGetAlternativesFallsBackToNextServer(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okBody)
	}))
	defer good.Close()

	c := newTestClient(t, bad.URL+"/route/v1", good.URL+"/route/v1")

	alts, err := c.GetAlternatives(context.Background(), testCoords, "foot", ports.RouteOptions{})
	if err != nil {
		t.Fatalf("GetAlternatives: %v", err)
	}
	if alts[0].Degraded {
		t.Error("expected result from backup server, not a degraded geometry")
	}
}

func TestGetAlternativesNonOkCodeIsFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "NoRoute", "routes": []}`)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL+"/route/v1")

	alts, err := c.GetAlternatives(context.Background(), testCoords, "foot", ports.RouteOptions{})
	if err != nil {
		t.Fatalf("GetAlternatives: %v", err)
	}
	if !alts[0].Degraded {
		t.Error("expected degraded fallback when server reports NoRoute")
	}
}

func TestGetAlternativesDegradedNotCached(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL+"/route/v1")
	ctx := context.Background()

	alts, err := c.GetAlternatives(ctx, testCoords, "foot", ports.RouteOptions{})
	if err != nil {
		t.Fatalf("GetAlternatives: %v", err)
	}
	if !alts[0].Degraded {
		t.Fatal("expected degraded result")
	}
	if len(alts[0].Geometry) != len(testCoords) {
		t.Errorf("degraded geometry has %d points, want %d", len(alts[0].Geometry), len(testCoords))
	}

	before := calls.Load()
	if _, err := c.GetAlternatives(ctx, testCoords, "foot", ports.RouteOptions{}); err != nil {
		t.Fatalf("second GetAlternatives: %v", err)
	}
	if calls.Load() == before {
		t.Error("degraded result was served from cache; it must not be cached")
	}
}

func TestGetAlternativesCacheHitSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, okBody)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL+"/route/v1")
	ctx := context.Background()

	if _, err := c.GetAlternatives(ctx, testCoords, "foot", ports.RouteOptions{}); err != nil {
		t.Fatalf("first GetAlternatives: %v", err)
	}
	if _, err := c.GetAlternatives(ctx, testCoords, "foot", ports.RouteOptions{}); err != nil {
		t.Fatalf("second GetAlternatives: %v", err)
	}

	if n := calls.Load(); n != 1 {
		t.Errorf("upstream called %d times, want 1", n)
	}
}

func TestGetAlternativesReducesWaypoints(t *testing.T) {
	var gotPairs atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		coordPart := parts[len(parts)-1]
		gotPairs.Store(int32(len(strings.Split(coordPart, ";"))))
		fmt.Fprint(w, okBody)
	}))
	defer ts.Close()

	coords := make([]domain.Coordinate, 60)
	for i := range coords {
		coords[i] = domain.Coordinate{Lat: 27.9 + float64(i)*0.001, Lon: -15.6}
	}

	c := New([]string{ts.URL + "/route/v1"}, 25, 5*time.Second, memory.New())
	if _, err := c.GetAlternatives(context.Background(), coords, "foot", ports.RouteOptions{}); err != nil {
		t.Fatalf("GetAlternatives: %v", err)
	}
	if n := gotPairs.Load(); n != 25 {
		t.Errorf("server received %d waypoints, want 25", n)
	}
}

func TestGetAlternativesRejectsTooFewWaypoints(t *testing.T) {
	c := newTestClient(t, "http://unused/route/v1")

	if _, err := c.GetAlternatives(context.Background(), testCoords[:1], "foot", ports.RouteOptions{}); err == nil {
		t.Error("expected error for a single waypoint")
	}
}

func TestReduceWaypoints(t *testing.T) {
	coords := make([]domain.Coordinate, 100)
	for i := range coords {
		coords[i] = domain.Coordinate{Lat: float64(i), Lon: 0}
	}

	got := reduceWaypoints(coords, 10)
	if len(got) != 10 {
		t.Fatalf("got %d points, want 10", len(got))
	}
	if got[0] != coords[0] {
		t.Errorf("first point not preserved: %+v", got[0])
	}
	if got[9] != coords[99] {
		t.Errorf("last point not preserved: %+v", got[9])
	}

	// Short inputs pass through untouched.
	short := coords[:5]
	if out := reduceWaypoints(short, 10); len(out) != 5 {
		t.Errorf("short input was reduced to %d points", len(out))
	}
}
