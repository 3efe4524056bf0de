package httpserver

import (
	"context"
	"errors"
	"loanportal-server/internal/infra/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	_ "net/http/pprof"
)

const (
	defaultAddr     = ":3000"
	readinessBudget = 2 * time.Second
	shutdownBudget  = 10 * time.Second
)

type Server interface {
	Run()
	Shutdown()
}

type Options struct {
	Addr           string
	AllowedOrigins []string
	// Readiness is probed by GET /readyz; every entry must answer.
	Readiness map[string]sql.Pinger
}

var _ Server = &StandardServer{}

type StandardServer struct {
	server *http.Server
}

func (s *StandardServer) Run() {
	slog.Info("http server listening", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func (s *StandardServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownBudget)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("shutting down http server", slog.String("error", err.Error()))
	}
}

// Handler exposes the full middleware chain, used by tests that run the
// server on httptest.
func (s *StandardServer) Handler() http.Handler {
	return s.server.Handler
}

func NewServer(options Options, controllers ...Controller) *StandardServer {
	router := http.NewServeMux()

	addr := options.Addr
	if addr == "" {
		addr = defaultAddr
	}

	c := cors.New(cors.Options{
		AllowedOrigins: options.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
			"X-User-ID",
			"X-User-Role",
		},
		ExposedHeaders: []string{
			"Link",
		},
		AllowCredentials: false,
		MaxAge:           300,
	})

	tracingMiddleware := createTracingMiddleware()
	userHeaderMiddleware := createUserHeaderMiddleware()
	metricsMiddleware := MetricsMiddleware(otel.GetMeterProvider())

	server := &StandardServer{
		&http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			Handler: c.Handler(
				metricsMiddleware(
					tracingMiddleware(
						userHeaderMiddleware(RecordRoutePattern(router)),
					),
				),
			),
		},
	}

	router.Handle("GET /healthz", getHealthz())
	router.Handle("GET /readyz", getReadyz(options.Readiness))
	router.Handle("GET /metrics", promhttp.Handler())

	for _, controller := range controllers {
		controller.AddRoutes(router)
	}

	return server
}

func GetSpanFromContext(r *http.Request) trace.Span {
	return trace.SpanFromContext(r.Context())
}

func createUserHeaderMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			span := GetSpanFromContext(r)

			if userID := r.Header.Get("X-User-ID"); userID != "" {
				span.SetAttributes(attribute.String("user.id", userID))
			}
			if role := r.Header.Get("X-User-Role"); role != "" {
				span.SetAttributes(attribute.String("user.role", role))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func createTracingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := b3.New()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			tracer := otel.Tracer("loanportal-server")
			ctx, span := tracer.Start(ctx, "http.request",
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.String()),
					attribute.String("http.user_agent", r.UserAgent()),
					attribute.String("http.remote_addr", r.RemoteAddr),
					attribute.String("component", "http-server"),
				),
			)
			defer span.End()

			r = r.WithContext(ctx)
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			span.SetAttributes(attribute.Int("http.status_code", wrapped.statusCode))
		})
	}
}

func getHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		span := GetSpanFromContext(r)
		span.SetAttributes(attribute.String("endpoint", "healthz"))

		ReplyJSONResponse(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func getReadyz(probes map[string]sql.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessBudget)
		defer cancel()

		checks := make(map[string]string, len(probes))
		ready := true
		for name, probe := range probes {
			if err := probe.Ping(ctx); err != nil {
				slog.Warn("readiness probe failed", slog.String("probe", name), slog.String("error", err.Error()))
				checks[name] = err.Error()
				ready = false
				continue
			}
			checks[name] = "ok"
		}

		if !ready {
			ReplyJSONResponse(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": checks})
			return
		}
		ReplyJSONResponse(w, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
	}
}
