package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	Namespace   string            // default "reconcile"
	Subsystem   string            // default "http"
	ConstLabels prometheus.Labels // added to every series
	Buckets     []float64         // request duration buckets, default prometheus.DefBuckets
	Registry    prometheus.Registerer

	// Skip lists route patterns that are not measured, such as the
	// metrics endpoint itself.
	Skip []string
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the request duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the registerer the collectors are created in.
// The default is prometheus.DefaultRegisterer.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// WithSkip excludes the given route patterns from measurement.
func WithSkip(routes ...string) MetricsOption {
	return func(c *MetricsConfig) { c.Skip = append(c.Skip, routes...) }
}

// httpMetrics holds the request collectors of one middleware.
type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.HistogramVec
	inFlight prometheus.Gauge
	skip     map[string]bool
}

func newHTTPMetrics(c MetricsConfig) *httpMetrics {
	f := promauto.With(c.Registry)
	m := &httpMetrics{skip: make(map[string]bool, len(c.Skip))}
	for _, r := range c.Skip {
		m.skip[r] = true
	}

	m.requests = f.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        "requests_total",
		Help:        "Total number of HTTP requests served",
		ConstLabels: c.ConstLabels,
	}, []string{"route", "method", "status"})

	m.duration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        "request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		ConstLabels: c.ConstLabels,
		Buckets:     c.Buckets,
	}, []string{"route", "method"})

	// 256B to 1MiB: a page render is the large end.
	m.size = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        "response_size_bytes",
		Help:        "HTTP response body size in bytes",
		ConstLabels: c.ConstLabels,
		Buckets:     prometheus.ExponentialBuckets(256, 4, 7),
	}, []string{"route"})

	m.inFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace:   c.Namespace,
		Subsystem:   c.Subsystem,
		Name:        "requests_in_flight",
		Help:        "Number of HTTP requests being served",
		ConstLabels: c.ConstLabels,
	})
	return m
}

// Prometheus creates middleware that collects request metrics. A
// WebSocket request is counted with status 101 when it finishes, and its
// duration is the lifetime of the connection.
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := MetricsConfig{
		Namespace: "reconcile",
		Subsystem: "http",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	m := newHTTPMetrics(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.inFlight.Inc()
			defer m.inFlight.Dec()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routePattern(r)
			if m.skip[route] {
				return
			}
			m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
			m.size.WithLabelValues(route).Observe(float64(ww.BytesWritten()))
			m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status(ww, r))).Inc()
		})
	}
}
// routePattern returns the chi route that served r, or "unmatched".
// It is only complete after the router has run.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// status returns the response status. A handler that never wrote a
// header answered 200, unless it took over the connection for a WebSocket.
func status(ww chimw.WrapResponseWriter, r *http.Request) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return http.StatusSwitchingProtocols
	}
	return http.StatusOK
}
