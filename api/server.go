/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. Logging:    One zerolog line per request, with the request ID
  4. Metrics:    requests_total / request_duration_seconds, labelled by
                 route pattern so IDs don't explode label cardinality
  5. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/countries/*      Country registry (currency, grading, calendar)
  /api/curricula/*      Curriculum registry
  /api/templates/*      Statutory deduction catalog
  /api/payroll/*        Single payslip computation and monthly runs
  /api/staff/*          Payroll staff records
  /api/scenarios/*      Demo data (development only, see Handler.Reset)
  /metrics              Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware. The server is meant to sit behind the
  EduSuite gateway, which authenticates administrators.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
// An empty allowedOrigins list allows any origin.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.Logger))
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Country registry
		r.Route("/countries", func(r chi.Router) {
			r.Get("/", h.ListCountries)
			r.Get("/{code}", h.GetCountry)
			r.Get("/{code}/format", h.FormatCurrency)
			r.Get("/{code}/grade", h.GradeFromScore)
			r.Get("/{code}/term", h.CurrentTerm)
			r.Get("/{code}/academic-year", h.CurrentAcademicYear)
		})

		// Curriculum registry
		r.Route("/curricula", func(r chi.Router) {
			r.Get("/", h.ListCurricula)
			r.Get("/{id}", h.GetCurriculum)
			r.Get("/{id}/subjects", h.SubjectsForLevel)
			r.Get("/{id}/default-level", h.DefaultLevel)
		})

		// Statutory deduction catalog
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.PublishTemplate)
			r.Get("/history", h.TemplateHistory)
			r.Get("/{id}", h.GetTemplate)
			r.Post("/{id}/retire", h.RetireTemplate)
		})

		// Staff
		r.Route("/staff", func(r chi.Router) {
			r.Get("/", h.ListStaff)
			r.Post("/", h.SaveStaff)
			r.Get("/{id}", h.GetStaff)
		})

		// Payroll
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/compute", h.ComputePayslip)
			r.Get("/runs", h.ListRuns)
			r.Post("/runs", h.CreateRun)
			r.Get("/runs/{id}", h.GetRun)
			r.Get("/runs/{id}/export", h.ExportRun)
		})

		// Demo scenarios
		if h.Reset != nil {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
			})
		}
	})

	return r
}

// =============================================================================
// LOGGING
// =============================================================================

// RequestLogger logs one line per request. 5xx responses log at error
// level, everything else at info.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			event := logger.Info()
			if ww.Status() >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("request-id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("request")
		})
	}
}

// =============================================================================
// METRICS
// =============================================================================

var requestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "requests_total",
		Help: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	},
	[]string{"code", "method", "url"},
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "request_duration_seconds",
		Help: "The HTTP request latencies in seconds.",
	},
	[]string{"code", "method", "url"},
)

// RegisterMetrics registers the HTTP metrics plus any extra collectors
// (payroll counters) with reg.
func RegisterMetrics(reg prometheus.Registerer, extra ...prometheus.Collector) error {
	collectors := append([]prometheus.Collector{requestCount, requestDuration}, extra...)
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("could not register %s with Prometheus: %w", c, err)
		}
	}
	return nil
}

// MetricsMiddleware updates Prometheus metrics.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		elapsed := time.Since(start).Seconds()

		// The route pattern ("/api/staff/{id}") rather than the path keeps
		// label cardinality bounded.
		url := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				url = pattern
			}
		}

		requestDuration.WithLabelValues(code, r.Method, url).Observe(elapsed)
		requestCount.WithLabelValues(code, r.Method, url).Inc()
	})
}
