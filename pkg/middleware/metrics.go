package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mote-dev/mote/pkg/bridge"
	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/protocol"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "mote").
	Namespace string

	// Subsystem is the metrics subsystem (default: "http" for the
	// request middleware, "bridge" for BridgeMetrics).
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig(subsystem string) MetricsConfig {
	return MetricsConfig{
		Namespace:   "mote",
		Subsystem:   subsystem,
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// === HTTP request metrics ===

// httpMetrics holds the Prometheus metrics for the request middleware.
type httpMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

// The request metric set is a singleton: the middleware may be mounted
// on several routers, and registering the same collectors twice panics.
var (
	globalHTTP   *httpMetrics
	globalHTTPMu sync.Mutex
)

// initHTTPMetrics initializes the request metrics.
func initHTTPMetrics(config MetricsConfig) *httpMetrics {
	factory := promauto.With(config.Registry)

	return &httpMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of HTTP requests by route, method, and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "method", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"}),

		requestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of HTTP requests currently being served",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Metrics creates middleware that collects Prometheus metrics for every
// HTTP request, including the bridge's WebSocket upgrade (the wrapped
// writer passes hijacking through).
//
// Metrics collected:
//   - mote_http_requests_total: Counter of requests by route, method, and code
//   - mote_http_request_duration_seconds: Histogram of request duration
//   - mote_http_requests_in_flight: Gauge of in-flight requests
//
// The route label uses the chi route pattern when the request was routed
// by chi, so path parameters don't explode the label cardinality.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Metrics())
//	r.Handle("/*", bridgeServer.Handler())
//	http.Handle("/metrics", promhttp.Handler())
func Metrics(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := defaultMetricsConfig("http")
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalHTTPMu.Lock()
	if globalHTTP == nil {
		globalHTTP = initHTTPMetrics(config)
	}
	m := globalHTTP
	globalHTTPMu.Unlock()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.requestsInFlight.Inc()
			defer m.requestsInFlight.Dec()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			path := routePattern(r)
			m.requestDuration.WithLabelValues(path).Observe(duration)
			m.requestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
		})
	}
}

// routePattern returns the chi route pattern for the request, falling
// back to the raw path for requests served outside a chi router.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	if r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}

// === Bridge metrics ===

// BridgeMetrics collects Prometheus metrics for a bridge server. It
// implements bridge.Observer; wire it in with
// bridge.DefaultConfig().WithObserver(...).
//
// Metrics collected:
//   - mote_bridge_sessions_total: Counter of sessions started
//   - mote_bridge_sessions_active: Gauge of live sessions (attached or detached)
//   - mote_bridge_ops_total: Counter of ops by op name and outcome
//   - mote_bridge_op_duration_seconds: Histogram of op round-trip time by op name
//   - mote_bridge_events_relayed_total: Counter of browser events by kind
type BridgeMetrics struct {
	sessionsTotal  prometheus.Counter
	sessionsActive prometheus.Gauge
	opsTotal       *prometheus.CounterVec
	opDuration     *prometheus.HistogramVec
	eventsRelayed  *prometheus.CounterVec
}

var _ bridge.Observer = (*BridgeMetrics)(nil)

// NewBridgeMetrics creates and registers the bridge metric set.
func NewBridgeMetrics(opts ...MetricsOption) *BridgeMetrics {
	config := defaultMetricsConfig("bridge")
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &BridgeMetrics{
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sessions_total",
			Help:        "Total number of bridge sessions started",
			ConstLabels: config.ConstLabels,
		}),

		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sessions_active",
			Help:        "Number of live bridge sessions, attached or detached",
			ConstLabels: config.ConstLabels,
		}),

		opsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ops_total",
			Help:        "Total number of DOM ops by op name and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "status"}),

		opDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "op_duration_seconds",
			Help:        "DOM op round-trip time in seconds by op name",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),

		eventsRelayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_relayed_total",
			Help:        "Total number of browser events relayed by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

// SessionStarted records a new session.
func (m *BridgeMetrics) SessionStarted(id string) {
	m.sessionsTotal.Inc()
	m.sessionsActive.Inc()
}

// SessionClosed records a session ending.
func (m *BridgeMetrics) SessionClosed(id string) {
	m.sessionsActive.Dec()
}

// OpCompleted records one op round trip.
func (m *BridgeMetrics) OpCompleted(op protocol.OpCode, d time.Duration, err error) {
	m.opsTotal.WithLabelValues(op.String(), opStatus(err)).Inc()
	m.opDuration.WithLabelValues(op.String()).Observe(d.Seconds())
}

// EventRelayed records a browser event reaching the server.
func (m *BridgeMetrics) EventRelayed(kind protocol.EventKind) {
	m.eventsRelayed.WithLabelValues(kind.String()).Inc()
}

// opStatus buckets op outcomes into a bounded label set. Raw error
// messages would make high-cardinality labels.
func opStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, bridge.ErrOpTimeout):
		return "timeout"
	case errors.Is(err, host.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, bridge.ErrUnknownRef):
		return "not_found"
	case errors.Is(err, bridge.ErrSessionClosed), errors.Is(err, bridge.ErrNoConnection):
		return "disconnected"
	default:
		return "failed"
	}
}
