// Package middleware provides HTTP middleware for the scenario server.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus request metrics middleware
//
// Both return func(http.Handler) http.Handler and work with any router.
// Under chi they label requests with the matched route pattern.
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware starts a server span for every request and
// stores it in the request context, so spans started by handlers (for
// example by the patch engine) become its children.
//
//	srv := server.New(f, cfg, server.WithMiddleware(
//	    middleware.OpenTelemetry(
//	        middleware.WithTracerProvider(tp),
//	        middleware.WithFilter(func(r *http.Request) bool {
//	            return r.URL.Path != "/healthz"
//	        }),
//	    ),
//	))
//
// Without WithTracerProvider the global provider is used. Configure it
// in main() before starting the server.
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - reconcile_http_requests_total: Counter of requests by route, method and status
//   - reconcile_http_request_duration_seconds: Histogram of request duration
//   - reconcile_http_requests_in_flight: Gauge of requests being served
//
// Every call registers new collectors, so give each call its own registry:
//
//	reg := prometheus.NewRegistry()
//	mw := middleware.Prometheus(middleware.WithRegistry(reg))
package middleware
