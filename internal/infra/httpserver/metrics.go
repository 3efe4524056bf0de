package httpserver

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricPrefix = "loanportal_server"
	// unmatchedRoute labels requests no pattern served, so probing for
	// random paths cannot grow the label set.
	unmatchedRoute = "unmatched"
)

type httpMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func newHTTPMetrics(provider metric.MeterProvider) (*httpMetrics, error) {
	meter := provider.Meter("loanportal-server/httpserver")

	duration, err := meter.Float64Histogram(
		metricPrefix+".http.request.duration.seconds",
		metric.WithDescription("Duration of HTTP requests per route pattern"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	total, err := meter.Int64Counter(
		metricPrefix+".http.requests.total",
		metric.WithDescription("HTTP requests per route pattern and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	active, err := meter.Int64UpDownCounter(
		metricPrefix+".http.requests.active",
		metric.WithDescription("HTTP requests in flight per method"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating in-flight counter: %w", err)
	}

	return &httpMetrics{duration: duration, total: total, active: active}, nil
}

type routeKey struct{}

// matchedRoute is filled by RecordRoutePattern once the mux has picked a
// handler. It travels by pointer because inner middlewares replace the
// request with r.WithContext and the outer one never sees their copy.
type matchedRoute struct {
	pattern string
}

// MetricsMiddleware labels every request with the ServeMux pattern that
// served it ("/v1/field-catalog/{context}/fields"), never the raw path.
// The router must be wrapped in RecordRoutePattern for the label to be set.
func MetricsMiddleware(provider metric.MeterProvider) func(http.Handler) http.Handler {
	metrics, err := newHTTPMetrics(provider)
	if err != nil {
		panic(err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := &matchedRoute{}
			ctx := context.WithValue(r.Context(), routeKey{}, route)

			method := attribute.String("http.method", r.Method)
			metrics.active.Add(ctx, 1, metric.WithAttributes(method))
			defer metrics.active.Add(ctx, -1, metric.WithAttributes(method))

			wrappedWriter := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrappedWriter, r.WithContext(ctx))

			attrs := metric.WithAttributes(
				method,
				attribute.String("http.route", routeLabel(route.pattern)),
				attribute.Int("http.status_code", wrappedWriter.statusCode),
			)
			metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			metrics.total.Add(ctx, 1, attrs)
		})
	}
}

// RecordRoutePattern copies the pattern ServeMux matched into the label
// slot MetricsMiddleware placed on the context.
func RecordRoutePattern(router http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
		if route, ok := r.Context().Value(routeKey{}).(*matchedRoute); ok {
			route.pattern = r.Pattern
		}
	})
}

// routeLabel drops the method from "GET /path" patterns; the method is a
// label of its own.
func routeLabel(pattern string) string {
	if pattern == "" {
		return unmatchedRoute
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	return rw.ResponseWriter.Write(b)
}

// Hijack lets the change feed upgrade through the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
}
