// Command poimport downloads points of interest for the configured
// region from the Overpass API and replaces the contents of the pois
// table with them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imartinde/senderos/internal/adapters/postgres"
	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/pkg/config"
	"github.com/imartinde/senderos/internal/pkg/logging"
	"github.com/imartinde/senderos/internal/pkg/metrics"
	"github.com/imartinde/senderos/internal/pkg/osm"
)

const (
	importTimeout = 120 * time.Second
	maxAttempts   = 3
)

type element struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

func main() {
	cfg, err := config.Load("senderos-poimport")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("senderos-poimport", "info", "text")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	log.Printf("fetching POIs for bbox %s from %s", cfg.Import.BBox, cfg.Overpass.URL)

	elements, err := fetchElements(ctx, cfg.Overpass.URL, cfg.Import.BBox)
	if err != nil {
		log.Fatalf("overpass: %v", err)
	}
	log.Printf("fetched %d elements", len(elements))

	pois := classify(elements)

	repo := postgres.NewPoiRepo(db)
	if err := repo.ReplaceAll(ctx, pois); err != nil {
		log.Fatalf("replace pois: %v", err)
	}

	byCategory := make(map[string]int)
	for _, p := range pois {
		byCategory[p.Category]++
		metrics.PoisImported.WithLabelValues(p.Category).Inc()
	}
	for _, c := range osm.Categories {
		if n := byCategory[c]; n > 0 {
			log.Printf("  %-14s %d", c, n)
		}
	}
	log.Printf("imported %d POIs", len(pois))
}

// fetchElements queries Overpass for every tag value the classifier
// recognizes, inside the configured bounding box, retrying transient
// failures.
func fetchElements(ctx context.Context, endpoint, bbox string) ([]element, error) {
	query := fmt.Sprintf(`[out:json][timeout:90];
(
  nwr["amenity"~"restaurant|cafe|bar|pub|fast_food|pharmacy|hospital|clinic|doctors|parking|drinking_water"](%s);
  nwr["tourism"~"museum|viewpoint|picnic_site|camp_site|caravan_site|alpine_hut|wilderness_hut|hotel|hostel|guest_house|chalet|apartment|motel"](%s);
  nwr["natural"="peak"](%s);
);
out center;`, bbox, bbox, bbox)

	client := &http.Client{Timeout: importTimeout}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		form := url.Values{"data": {query}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("attempt %d/%d failed: %v", attempt, maxAttempts, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
			log.Printf("attempt %d/%d failed: %v", attempt, maxAttempts, lastErr)
			continue
		}

		var out struct {
			Elements []element `json:"elements"`
		}
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode: %w", err)
			continue
		}
		return out.Elements, nil
	}
	return nil, lastErr
}

func classify(elements []element) []domain.PointOfInterest {
	pois := make([]domain.PointOfInterest, 0, len(elements))
	for _, el := range elements {
		lat, lon := el.Lat, el.Lon
		if lat == 0 && lon == 0 && el.Center != nil {
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
