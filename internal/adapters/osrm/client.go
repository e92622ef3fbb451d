package osrm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/core/ports"
	"github.com/imartinde/senderos/internal/pkg/metrics"
)

const (
	// Cache TTLs. Single routes are stable; alternative sets churn more
	// as OSRM re-ranks them, so they expire sooner.
	singleRouteTTL  = 24 * 60 * 60
	alternativesTTL = 60 * 60
)

// Client implements ports.RouteProvider against one or more OSRM servers.
// Servers are tried in order; when all fail the client degrades to a
// straight-line geometry instead of returning an error.
type Client struct {
	servers      []string
	maxWaypoints int
	httpClient   *http.Client
	cache        ports.CacheService
	group        singleflight.Group
}

// New creates an OSRM client. Each server is a base URL up to and
// including the route service prefix, e.g.
// "https://router.project-osrm.org/route/v1".
func New(servers []string, maxWaypoints int, timeout time.Duration, cache ports.CacheService) *Client {
	return &Client{
		servers:      servers,
		maxWaypoints: maxWaypoints,
		httpClient:   &http.Client{Timeout: timeout},
		cache:        cache,
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Duration float64         `json:"duration"`
		Legs     json.RawMessage `json:"legs"`
	} `json:"routes"`
}

// GetAlternatives fetches routes through the given waypoints. Results are
// cached by profile, waypoints and options; concurrent identical requests
// are coalesced so only one hits the upstream.
func (c *Client) GetAlternatives(ctx context.Context, coords []domain.Coordinate, profile string, opts ports.RouteOptions) ([]domain.RouteAlternative, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("route needs at least 2 waypoints, got %d", len(coords))
	}

	waypoints := reduceWaypoints(coords, c.maxWaypoints)
	key := cacheKey(profile, waypoints, opts)

	if cached, err := c.cache.Get(ctx, key); err == nil && cached != nil {
		var alts []domain.RouteAlternative
		if err := json.Unmarshal(cached, &alts); err == nil {
			return alts, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.fetch(ctx, waypoints, profile, opts, key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.RouteAlternative), nil
}

func (c *Client) fetch(ctx context.Context, waypoints []domain.Coordinate, profile string, opts ports.RouteOptions, key string) ([]domain.RouteAlternative, error) {
	path := coordPath(waypoints)
	query := buildQuery(opts)

	for _, server := range c.servers {
		url := fmt.Sprintf("%s/%s/%s?%s", strings.TrimRight(server, "/"), profile, path, query)

		start := time.Now()
		alts, err := c.requestRoutes(ctx, url)
		metrics.RoutingRequestDuration.WithLabelValues(server).Observe(time.Since(start).Seconds())

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("routing server failed, trying next", "server", server, "error", err)
			metrics.RoutingFallbacks.WithLabelValues(server).Inc()
			continue
		}

		if body, err := json.Marshal(alts); err == nil {
			ttl := singleRouteTTL
			if opts.Alternatives > 1 {
				ttl = alternativesTTL
			}
			if err := c.cache.Set(ctx, key, body, ttl); err != nil {
				slog.Warn("route cache write failed", "error", err)
			}
		}
		return alts, nil
	}

	// Every server failed. Return the waypoints joined by straight
	// segments so the caller still gets a drawable geometry. Degraded
	// results are never cached.
	slog.Error("all routing servers failed, returning straight-line geometry",
		"servers", len(c.servers), "waypoints", len(waypoints))
	metrics.RoutingDegraded.Inc()

	geometry := make([]domain.Coordinate, len(waypoints))
	copy(geometry, waypoints)
	return []domain.RouteAlternative{{Geometry: geometry, Degraded: true}}, nil
}

func (c *Client) requestRoutes(ctx context.Context, url string) ([]domain.RouteAlternative, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Code != "Ok" {
		return nil, fmt.Errorf("osrm code %q", out.Code)
	}
	if len(out.Routes) == 0 {
		return nil, fmt.Errorf("osrm returned no routes")
	}

	alts := make([]domain.RouteAlternative, 0, len(out.Routes))
	for i, r := range out.Routes {
		geometry := make([]domain.Coordinate, len(r.Geometry.Coordinates))
		for j, pair := range r.Geometry.Coordinates {
			// OSRM speaks (lon, lat).
			geometry[j] = domain.Coordinate{Lat: pair[1], Lon: pair[0]}
		}
		alts = append(alts, domain.RouteAlternative{
			Geometry:        geometry,
			DurationSeconds: r.Duration,
			Legs:            r.Legs,
			Index:           i,
		})
	}
	return alts, nil
}

// reduceWaypoints thins the input to at most max coordinates, evenly
// spaced by index and always keeping the first and last points.
func reduceWaypoints(coords []domain.Coordinate, max int) []domain.Coordinate {
	if max < 2 || len(coords) <= max {
		return coords
	}

	step := float64(len(coords)-1) / float64(max-1)
	out := make([]domain.Coordinate, max)
	for i := 0; i < max; i++ {
		idx := int(math.Round(float64(i) * step))
		if idx > len(coords)-1 {
			idx = len(coords) - 1
		}
		out[i] = coords[idx]
	}
	out[max-1] = coords[len(coords)-1]
	return out
}

func coordPath(coords []domain.Coordinate) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		// OSRM paths are lon,lat.
		parts[i] = fmt.Sprintf("%f,%f", c.Lon, c.Lat)
	}
	return strings.Join(parts, ";")
}

func buildQuery(opts ports.RouteOptions) string {
	q := "overview=full&geometries=geojson"
	if opts.Alternatives > 1 {
		q += fmt.Sprintf("&alternatives=%d", opts.Alternatives)
	}
	if opts.Steps {
		q += "&steps=true"
	}
	return q
}

func cacheKey(profile string, coords []domain.Coordinate, opts ports.RouteOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|a=%d|s=%t", profile, coordPath(coords), opts.Alternatives, opts.Steps)
	return "osrm:route:" + hex.EncodeToString(h.Sum(nil))
}
