package http

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/artpar/paygate/adapters/metrics"
	_ "github.com/artpar/paygate/docs/swagger" // swagger docs
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig configures optional router features.
type RouterConfig struct {
	Metrics        *metrics.Collector
	MetricsPath    string       // default: /metrics
	MetricsHandler http.Handler // default: promhttp.Handler()
	EnableOpenAPI  bool
}

// NewRouter creates the gateway router. Every priced path is served
// behind the same Admission middleware.
func NewRouter(h *Handler, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger, cfg.MetricsPath))
	r.Use(middleware.Recoverer)

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics, cfg.MetricsPath))

		handler := cfg.MetricsHandler
		if handler == nil {
			handler = promhttp.Handler()
		}
		r.Handle(cfg.MetricsPath, handler)
	}

	if cfg.EnableOpenAPI {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Free routes
	r.Get("/health", h.Health)
	r.Get("/example/client", h.ExampleClient)
	r.Get("/api/v1/endpoints", h.Endpoints)
	r.Get("/api/v1/stats", h.Stats)
	r.Get("/api/v1/clients", h.Clients)
	r.Get("/api/v1/requests/{id}", h.Request)
	r.Post("/api/v1/rate-limit", h.SetRateLimit)
	r.Post("/api/v1/webhooks/settlement", h.Settlement)

	// Priced routes
	r.Group(func(r chi.Router) {
		r.Use(h.Admission)
		for _, path := range h.pricedPaths() {
			r.Post(path, h.Paid(PayloadFor(path)))
		}
	})

	return r
}

// pricedPaths returns the configured endpoints plus the built-in paid
// routes. Built-ins missing from the price table charge the default price.
func (h *Handler) pricedPaths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, e := range h.gateway.Prices().Endpoints() {
		if !seen[e.Path] {
			seen[e.Path] = true
			paths = append(paths, e.Path)
		}
	}

	var builtins []string
	for p := range payloads {
		if !seen[p] {
			builtins = append(builtins, p)
		}
	}
	sort.Strings(builtins)
	return append(paths, builtins...)
}

// NewMetricsMiddleware creates middleware that records request metrics.
func NewMetricsMiddleware(m *metrics.Collector, metricsPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipInternal(r.URL.Path, metricsPath) {
				next.ServeHTTP(w, r)
				return
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := metrics.StatusLabel(ww.Status())
			path := routePattern(r)

			m.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			m.RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// routePattern returns the matched chi pattern, bounding label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger, metricsPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if skipInternal(r.URL.Path, metricsPath) {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

func skipInternal(path, metricsPath string) bool {
	return path == "/health" || path == metricsPath || strings.HasPrefix(path, "/swagger")
}
