package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/pkg/osm"
)

const maxPoiRadiusMeters = 10000

// HikingRouteHandler computes hiking route alternatives between two
// points, enriched with elevation, statistics and difficulty.
//
// GET /v1/hiking/route?start=lat,lon&end=lat,lon&waypoints=lat,lon;lat,lon
func HikingRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, err := domain.ParseCoordinate(c.Query("start"))
		if err != nil {
			return errBadRequest(c, "start: "+err.Error())
		}
		end, err := domain.ParseCoordinate(c.Query("end"))
		if err != nil {
			return errBadRequest(c, "end: "+err.Error())
		}

		var waypoints []domain.Coordinate
		if raw := c.Query("waypoints"); raw != "" {
			for _, part := range strings.Split(raw, ";") {
				wp, err := domain.ParseCoordinate(part)
				if err != nil {
					return errBadRequest(c, "waypoints: "+err.Error())
				}
				waypoints = append(waypoints, wp)
			}
		}

		fc, err := deps.Hiking.ComputeHikingRoute(c.UserContext(), start, end, waypoints)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("hiking route computation failed",
				"start", start.String(), "end", end.String(), "error", err)
			return errInternal(c, "failed to calculate route")
		}

		return c.JSON(fc)
	}
}

// routePoisRequest is the body of POST /v1/hiking/pois. Route pairs are
// [lat, lon]; the order is part of the contract, never inferred.
type routePoisRequest struct {
	Route  [][2]float64 `json:"route"`
	Radius int          `json:"radius"`
}

// RoutePoisHandler returns points of interest around a route geometry.
//
// POST /v1/hiking/pois  {"route": [[lat,lon],...], "radius": 1000}
func RoutePoisHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req routePoisRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if len(req.Route) == 0 {
			return errBadRequest(c, "route must contain at least one [lat,lon] pair")
		}

		route := make([]domain.Coordinate, len(req.Route))
		for i, pair := range req.Route {
			coord, err := domain.NewCoordinate(pair[0], pair[1])
			if err != nil {
				return errBadRequest(c, "route: "+err.Error())
			}
			route[i] = coord
		}

		radius := req.Radius
		if radius <= 0 {
			radius = deps.DefaultPoiRadius
		}
		if radius > maxPoiRadiusMeters {
			return errBadRequest(c, "radius exceeds maximum of 10000 meters")
		}

		pois, err := deps.Pois.GetRoutePois(c.UserContext(), route, radius)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("poi lookup failed",
				"points", len(route), "radius", radius, "error", err)
			return errInternal(c, "failed to find points of interest")
		}

		return c.JSON(pois)
	}
}

// ListPoisHandler pages through the imported POI store.
//
// GET /v1/pois?category=food&offset=0&limit=50
func ListPoisHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.PoiRepo == nil {
			return newError(c, 503, "unavailable", "poi database not configured")
		}

		category := c.Query("category")
		if category != "" && !validCategory(category) {
			return errBadRequest(c, "unknown category "+category)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		pois, total, err := deps.PoiRepo.List(c.UserContext(), category, offset, limit)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("poi listing failed", "category", category, "error", err)
			return errInternal(c, "failed to list points of interest")
		}
		if pois == nil {
			pois = []domain.PointOfInterest{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: pois, Pagination: pg})
	}
}

func validCategory(category string) bool {
	for _, known := range osm.Categories {
		if category == known {
			return true
		}
	}
	return false
}
