package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/leadcapture/internal/health"
	httpmiddleware "github.com/wolfman30/leadcapture/internal/http/middleware"
	"github.com/wolfman30/leadcapture/internal/landing"
	"github.com/wolfman30/leadcapture/internal/leads"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes
// unregistered.
type Config struct {
	Logger             *logging.Logger
	Health             *health.Handler
	LeadsHandler       *leads.Handler
	LandingHandler     *landing.Handler
	VisitorCookie      string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates the chi router with every route configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
		r.Get("/api/health", cfg.Health.Health)
		r.Get("/ready", cfg.Health.Ready)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.LeadsHandler != nil {
		r.Route("/api/leads", func(r chi.Router) {
			r.Use(middleware.Compress(5))
			r.Get("/", cfg.LeadsHandler.Status)
			r.Post("/", cfg.LeadsHandler.CreateLead)
			r.Get("/{leadID}", cfg.LeadsHandler.GetLead)
		})
	}

	if cfg.LandingHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(landing.VisitorMiddleware(cfg.VisitorCookie))
			r.Post("/api/page-view", cfg.LandingHandler.PageView)
			r.Post("/api/contact", cfg.LandingHandler.Contact)
			r.Get("/ws/form", cfg.LandingHandler.HandleFormSocket)
		})
	}

	return r
}
