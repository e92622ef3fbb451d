package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "senderos",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "senderos",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Routing metrics
	RoutesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "routing",
		Name:      "routes_computed_total",
		Help:      "Total hiking routes computed",
	}, []string{"profile"})

	RoutingFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "routing",
		Name:      "server_fallbacks_total",
		Help:      "Total failovers to a backup routing server",
	}, []string{"server"})

	RoutingDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "routing",
		Name:      "degraded_responses_total",
		Help:      "Total straight-line geometries returned after all routing servers failed",
	})

	RoutingRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "senderos",
		Subsystem: "routing",
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to routing servers",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"server"})

	// Elevation metrics
	ElevationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "elevation",
		Name:      "failures_total",
		Help:      "Total elevation enrichment failures",
	}, []string{"reason"})

	// POI metrics
	PoiQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "poi",
		Name:      "queries_total",
		Help:      "Total POI lookups near a route",
	}, []string{"provider", "status"})

	PoisImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "poi",
		Name:      "imported_total",
		Help:      "Total POIs imported into the database",
	}, []string{"category"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "senderos",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "senderos",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "senderos",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "senderos",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
// The pool stat is accepted through a local interface so this package does
// not import pgxpool directly.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
