package http

import (
	"github.com/imartinde/senderos/internal/adapters/postgres"
	"github.com/imartinde/senderos/internal/core/ports"
	"github.com/imartinde/senderos/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Hiking *usecases.HikingService
	Pois   *usecases.PoiService

	// PoiRepo backs the listing endpoint; nil when running purely
	// against the live Overpass source.
	PoiRepo ports.PoiRepository

	DB    *postgres.DB
	Cache ports.CacheService

	// DefaultPoiRadius is used when a POI request omits the radius.
	DefaultPoiRadius int
}
