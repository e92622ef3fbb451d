package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Upstream health
	MetricRoutingFallbackRate = "routing.fallback_rate"
	MetricElevationErrorRate  = "elevation.error_rate"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricRoutesComputed = "business.routes_computed"
	MetricPoisMatched    = "business.pois_matched"
)
