package overpass

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/core/ports"
	"github.com/imartinde/senderos/internal/pkg/metrics"
	"github.com/imartinde/senderos/internal/pkg/osm"
)

const cacheTTL = 60 * 60

// Provider implements ports.PoiProvider by querying an Overpass API
// endpoint with an around: corridor along the route.
type Provider struct {
	endpoint   string
	httpClient *http.Client
	cache      ports.CacheService
}

// New creates an Overpass-backed POI provider.
func New(endpoint string, timeout time.Duration, cache ports.CacheService) *Provider {
	return &Provider{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}
}

type overpassElement struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// PoisNearRoute fetches tagged OSM elements within radiusMeters of the
// route corridor. Unlike routing, an upstream failure is surfaced to the
// caller rather than degraded.
func (p *Provider) PoisNearRoute(ctx context.Context, route domain.RouteGeometry, radiusMeters int) ([]domain.PointOfInterest, error) {
	if len(route.Coordinates) == 0 {
		return nil, fmt.Errorf("route has no coordinates")
	}

	key := cacheKey(route, radiusMeters)
	if cached, err := p.cache.Get(ctx, key); err == nil && cached != nil {
		var pois []domain.PointOfInterest
		if err := json.Unmarshal(cached, &pois); err == nil {
			metrics.PoiQueries.WithLabelValues("overpass", "cached").Inc()
			return pois, nil
		}
	}

	query := buildQuery(route, radiusMeters)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.PoiQueries.WithLabelValues("overpass", "error").Inc()
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.PoiQueries.WithLabelValues("overpass", "error").Inc()
		return nil, fmt.Errorf("overpass status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.PoiQueries.WithLabelValues("overpass", "error").Inc()
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	pois := transform(out.Elements)
	metrics.PoiQueries.WithLabelValues("overpass", "ok").Inc()

	if body, err := json.Marshal(pois); err == nil {
		if err := p.cache.Set(ctx, key, body, cacheTTL); err != nil {
			slog.Warn("poi cache write failed", "error", err)
		}
	}
	return pois, nil
}

// buildQuery emits Overpass QL selecting the tag values the classifier
// knows about, within radius meters of the route polyline.
func buildQuery(route domain.RouteGeometry, radius int) string {
	around := fmt.Sprintf("(around:%d,%s)", radius, route.String())

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, sel := range []string{
		`node["amenity"~"restaurant|cafe|bar|pub|fast_food"]`,
		`way["amenity"~"restaurant|cafe|bar|pub|fast_food"]`,
		`node["amenity"="drinking_water"]`,
		`node["amenity"~"pharmacy|hospital|clinic|doctors"]`,
		`way["amenity"~"pharmacy|hospital|clinic|doctors"]`,
		`node["amenity"="parking"]`,
		`way["amenity"="parking"]`,
		`node["tourism"~"viewpoint|picnic_site|museum|camp_site|caravan_site|alpine_hut|wilderness_hut|hotel|hostel|guest_house|chalet|apartment|motel"]`,
		`way["tourism"~"viewpoint|picnic_site|museum|camp_site|caravan_site|alpine_hut|wilderness_hut|hotel|hostel|guest_house|chalet|apartment|motel"]`,
		`node["natural"="peak"]`,
	} {
		b.WriteString("  ")
		b.WriteString(sel)
		b.WriteString(around)
		b.WriteString(";\n")
	}
	b.WriteString(");\nout center;")
	return b.String()
}

func transform(elements []overpassElement) []domain.PointOfInterest {
	pois := make([]domain.PointOfInterest, 0, len(elements))
	for _, el := range elements {
		lat, lon := el.Lat, el.Lon
		if lat == 0 && lon == 0 && el.Center != nil {
			// Ways and relations carry their centroid under center.
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		if lat == 0 && lon == 0 {
			continue
		}

		category := osm.Category(el.Tags)
		pois = append(pois, domain.PointOfInterest{
			ID:        el.ID,
			OSMType:   el.Type,
			Lat:       lat,
			Lon:       lon,
			Name:      osm.Name(el.Tags, category),
			Category:  category,
			Tags:      el.Tags,
			Relevance: osm.Relevance(el.Tags),
		})
	}
	return pois
}

func cacheKey(route domain.RouteGeometry, radius int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d", route.String(), radius)
	return "pois:route:" + hex.EncodeToString(h.Sum(nil))
}
