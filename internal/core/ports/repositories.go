package ports

import (
	"context"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/pkg/geospatial"
)

// PoiRepository persists points of interest.
type PoiRepository interface {
	// FindInBounds returns all POIs inside the bounding box. The box is a
	// prefilter; callers still run the exact distance test.
	FindInBounds(ctx context.Context, b geospatial.Bounds) ([]domain.PointOfInterest, error)
	// List pages through stored POIs, optionally filtered by category.
	List(ctx context.Context, category string, offset, limit int) ([]domain.PointOfInterest, int, error)
	// ReplaceAll atomically swaps the stored POI set for a fresh import.
	ReplaceAll(ctx context.Context, pois []domain.PointOfInterest) error
}
