package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/mastry-api/internal/diagnostics"
	httpmiddleware "github.com/wolfman30/mastry-api/internal/http/middleware"
	"github.com/wolfman30/mastry-api/internal/leads"
	"github.com/wolfman30/mastry-api/internal/site"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	SiteHandler        *site.Handler
	LeadsHandler       *leads.Handler
	DiagnosticsHandler *diagnostics.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// LeadLimiter throttles POST /api/leads; nil disables limiting.
	LeadLimiter httpmiddleware.Limiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	siteHandler := cfg.SiteHandler
	if siteHandler == nil {
		siteHandler = site.NewHandler()
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/", siteHandler.Root)
	r.Route("/api", func(api chi.Router) {
		api.Get("/company", siteHandler.Company)
		api.Get("/services", siteHandler.Services)
		if cfg.LeadsHandler != nil {
			api.With(httpmiddleware.RateLimit(cfg.LeadLimiter, cfg.Logger)).Post("/leads", cfg.LeadsHandler.CreateLead)
		}
	})
	if cfg.DiagnosticsHandler != nil {
		r.Get("/test", cfg.DiagnosticsHandler.ServeTest)
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
