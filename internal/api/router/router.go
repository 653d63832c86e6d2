package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/ems-vitals-platform/internal/contacts"
	httpmiddleware "github.com/wolfman30/ems-vitals-platform/internal/http/middleware"
	"github.com/wolfman30/ems-vitals-platform/internal/vitals"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	VitalsHandler   *vitals.Handler
	ContactsHandler *contacts.Handler
	HealthHandler   http.Handler
	MetricsHandler  http.Handler

	// UserAuthSecret verifies bearer tokens on /v1 routes.
	UserAuthSecret     string
	CORSAllowedOrigins []string
	// RateLimiter is optional; the caller owns Stop.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.VitalsHandler == nil {
		panic("router: vitals handler is required")
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		if cfg.HealthHandler != nil {
			public.Method(http.MethodGet, "/health", cfg.HealthHandler)
		} else {
			public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			})
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		analysis := public.With()
		if cfg.RateLimiter != nil {
			analysis = public.With(cfg.RateLimiter.Middleware)
		}
		analysis.Post("/health-metrics-analysis", cfg.VitalsHandler.AnalyzeHealthMetrics)
	})

	// Authenticated user routes
	r.Route("/v1", func(v1 chi.Router) {
		if cfg.RateLimiter != nil {
			v1.Use(cfg.RateLimiter.Middleware)
		}
		v1.Use(httpmiddleware.UserJWT(cfg.UserAuthSecret))

		v1.Route("/vitals", func(r chi.Router) {
			r.Post("/", cfg.VitalsHandler.RecordReading)
			r.Get("/", cfg.VitalsHandler.ListReadings)
			r.Get("/summary", cfg.VitalsHandler.GetSummary)
			r.Get("/audit", cfg.VitalsHandler.GetAuditTrail)
			r.Post("/risk", cfg.VitalsHandler.ScoreRisk)
			r.Post("/export", cfg.VitalsHandler.ExportHistory)
			r.Get("/{readingID}", cfg.VitalsHandler.GetReading)
		})
		if cfg.ContactsHandler != nil {
			v1.Route("/contacts", func(r chi.Router) {
				r.Post("/", cfg.ContactsHandler.CreateContact)
				r.Get("/", cfg.ContactsHandler.ListContacts)
			})
		}
	})

	return r
}
