package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/pkg/geospatial"
)

// PoiRepo implements ports.PoiRepository with pgx.
type PoiRepo struct {
	db *DB
}

// NewPoiRepo creates a new PoiRepo.
func NewPoiRepo(db *DB) *PoiRepo {
	return &PoiRepo{db: db}
}

const poiColumns = `osm_id, osm_type, lat, lon, name, category, COALESCE(tags, '{}'), relevance, created_at`

// FindInBounds returns every POI inside the bounding box. The box is a
// coarse prefilter; callers still run the exact distance test.
func (r *PoiRepo) FindInBounds(ctx context.Context, b geospatial.Bounds) ([]domain.PointOfInterest, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+poiColumns+`
		FROM pois
		WHERE lat BETWEEN $1 AND $2
		  AND lon BETWEEN $3 AND $4
	`, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPois(rows)
}

// List pages through stored POIs ordered by relevance, optionally
// filtered by category. The second return value is the total row count
// for the filter.
func (r *PoiRepo) List(ctx context.Context, category string, offset, limit int) ([]domain.PointOfInterest, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM pois
		WHERE ($1 = '' OR category = $1)
	`, category).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+poiColumns+`
		FROM pois
		WHERE ($1 = '' OR category = $1)
		ORDER BY relevance DESC, osm_id
		OFFSET $2 LIMIT $3
	`, category, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	pois, err := scanPois(rows)
	if err != nil {
		return nil, 0, err
	}
	return pois, total, nil
}

// ReplaceAll swaps the stored POI set for a fresh import in a single
// transaction, so readers never observe a half-imported table.
func (r *PoiRepo) ReplaceAll(ctx context.Context, pois []domain.PointOfInterest) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE pois`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	batch := &pgx.Batch{}
	for _, p := range pois {
		batch.Queue(`
			INSERT INTO pois (osm_id, osm_type, lat, lon, name, category, tags, relevance)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (osm_type, osm_id) DO NOTHING
		`, p.ID, p.OSMType, p.Lat, p.Lon, p.Name, p.Category, p.Tags, p.Relevance)
	}
	br := tx.SendBatch(ctx, batch)
	for range pois {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	return tx.Commit(ctx)
}

func scanPois(rows pgx.Rows) ([]domain.PointOfInterest, error) {
	var pois []domain.PointOfInterest
	for rows.Next() {
		var p domain.PointOfInterest
		if err := rows.Scan(
			&p.ID, &p.OSMType, &p.Lat, &p.Lon, &p.Name,
			&p.Category, &p.Tags, &p.Relevance, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}
	return pois, rows.Err()
}
