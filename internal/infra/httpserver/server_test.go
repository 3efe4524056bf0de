package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"loanportal-server/internal/infra/sql"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type staticController struct{}

func (staticController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /v1/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ReplyJSONResponse(w, http.StatusOK, map[string]string{"pong": "true"})
	}))
}

var _ = ginkgo.Describe("HTTPServer", func() {
	var (
		tp       *trace.TracerProvider
		recorder *tracetest.SpanRecorder
	)

	ginkgo.BeforeEach(func() {
		recorder = tracetest.NewSpanRecorder()
		tp = trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
		otel.SetTracerProvider(tp)
	})

	ginkgo.AfterEach(func() {
		tp.Shutdown(context.Background())
	})

	ginkgo.Context("TracingMiddleware", func() {
		ginkgo.It("should add a span to the request context", func() {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				span := GetSpanFromContext(r)
				gomega.Expect(span.SpanContext().HasSpanID()).To(gomega.BeTrue())
				w.WriteHeader(http.StatusTeapot)
			})

			rec := httptest.NewRecorder()
			createTracingMiddleware()(testHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusTeapot))
			gomega.Expect(recorder.Ended()).To(gomega.HaveLen(1))
		})

		ginkgo.It("should continue a b3 trace from the caller", func() {
			traceID := "463ac35c9f6413ad48485a3953bb6124"
			var seen string
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetSpanFromContext(r).SpanContext().TraceID().String()
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-B3-TraceId", traceID)
			req.Header.Set("X-B3-SpanId", "a2fb4a1d1a96d312")
			req.Header.Set("X-B3-Sampled", "1")
			createTracingMiddleware()(testHandler).ServeHTTP(httptest.NewRecorder(), req)

			gomega.Expect(seen).To(gomega.Equal(traceID))
		})
	})

	ginkgo.Context("GetSpanFromContext", func() {
		ginkgo.It("should return a no-op span when none is in context", func() {
			span := GetSpanFromContext(httptest.NewRequest(http.MethodGet, "/test", nil))
			gomega.Expect(span).NotTo(gomega.BeNil())
			gomega.Expect(span.SpanContext().IsValid()).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("UserHeaderMiddleware", func() {
		ginkgo.It("should tag the span with the user role", func() {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			wrapped := createTracingMiddleware()(createUserHeaderMiddleware()(testHandler))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-User-ID", "user-1")
			req.Header.Set("X-User-Role", "Underwriter")
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			spans := recorder.Ended()
			gomega.Expect(spans).To(gomega.HaveLen(1))

			attrs := map[string]string{}
			for _, kv := range spans[0].Attributes() {
				attrs[string(kv.Key)] = kv.Value.Emit()
			}
			gomega.Expect(attrs).To(gomega.HaveKeyWithValue("user.id", "user-1"))
			gomega.Expect(attrs).To(gomega.HaveKeyWithValue("user.role", "Underwriter"))
		})
	})

	ginkgo.Context("NewServer", func() {
		ginkgo.It("should serve health and controller routes", func() {
			server := NewServer(Options{}, staticController{})

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			rec = httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("pong"))
		})

		ginkgo.It("should report ready when every probe answers", func() {
			server := NewServer(Options{Readiness: map[string]sql.Pinger{
				"database": pingerFunc(func(context.Context) error { return nil }),
			}})

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should report unavailable when a probe fails", func() {
			server := NewServer(Options{Readiness: map[string]sql.Pinger{
				"database": pingerFunc(func(context.Context) error { return nil }),
				"cache":    pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			}})

			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusServiceUnavailable))

			var body struct {
				Checks map[string]string `json:"checks"`
			}
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body.Checks).To(gomega.HaveKeyWithValue("database", "ok"))
			gomega.Expect(body.Checks).To(gomega.HaveKeyWithValue("cache", "connection refused"))
		})

		ginkgo.It("should answer CORS preflights for allowed origins", func() {
			server := NewServer(Options{AllowedOrigins: []string{"https://portal.example.com"}})

			req := httptest.NewRequest(http.MethodOptions, "/v1/ping", nil)
			req.Header.Set("Origin", "https://portal.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, req)

			gomega.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(gomega.Equal("https://portal.example.com"))
		})
	})
})
