// Package middleware provides production-grade HTTP middleware for mote
// bridge servers.
//
// This package includes:
//   - OpenTelemetry distributed tracing middleware
//   - Prometheus metrics middleware
//   - A bridge.Observer implementation backed by Prometheus
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware traces every HTTP request, including the
// WebSocket upgrade that starts a bridge session. Traces include method,
// path, route pattern, and status code.
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry())
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("playground"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/mote/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Metrics middleware collects request metrics:
//   - mote_http_requests_total: Requests by route, method, and status code
//   - mote_http_request_duration_seconds: Request duration histogram
//   - mote_http_requests_in_flight: In-flight request gauge
//
// BridgeMetrics observes session and op activity:
//   - mote_bridge_sessions_total / mote_bridge_sessions_active
//   - mote_bridge_ops_total / mote_bridge_op_duration_seconds
//   - mote_bridge_events_relayed_total
//
//	bm := middleware.NewBridgeMetrics()
//	srv := bridge.New(bridge.DefaultConfig().WithObserver(bm))
//
//	r := chi.NewRouter()
//	r.Use(middleware.Metrics())
//	r.Handle("/*", srv.Handler())
//
// Then expose metrics:
//
//	r.Handle("/metrics", promhttp.Handler())
//
// # Context Propagation
//
// The tracing middleware injects the span context into the request,
// allowing database drivers and HTTP clients to inherit the trace:
//
//	func MyHandler(w http.ResponseWriter, r *http.Request) {
//	    row := db.QueryRowContext(r.Context(), "SELECT ...")
//	    req, _ := http.NewRequestWithContext(r.Context(), "GET", url, nil)
//	}
package middleware
