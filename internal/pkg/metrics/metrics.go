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
		Namespace: "geoengine",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geoengine",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geoengine",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Geometry metrics
	GeometriesNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoengine",
		Subsystem: "geometry",
		Name:      "normalized_total",
		Help:      "Geometry values normalized, by source encoding",
	}, []string{"encoding"})

	NormalizeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoengine",
		Subsystem: "geometry",
		Name:      "normalize_errors_total",
		Help:      "Geometry values rejected by the normalizer",
	}, []string{"reason"})

	// Geocoding metrics
	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoengine",
		Subsystem: "geocoder",
		Name:      "requests_total",
		Help:      "Address lookups sent to the geocoding service, by outcome",
	}, []string{"outcome"})

	GeocodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geoengine",
		Subsystem: "geocoder",
		Name:      "request_duration_seconds",
		Help:      "Latency of address lookups",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// Import metrics
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoengine",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Partner import rows processed, by outcome",
	}, []string{"outcome"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geoengine",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoengine",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoengine",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geoengine",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geoengine",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geoengine",
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

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics refreshes the pool gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
