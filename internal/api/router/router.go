package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/nomad-detailing/internal/http/middleware"
	"github.com/wolfman30/nomad-detailing/internal/leads"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

const (
	BookingsPath = "/api/bookings"
	FleetPath    = "/api/fleet"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP limit on the intake endpoints; zero disables it.
	RateLimitRPS   float64
	RateLimitBurst int

	// SinkName is reported by /health.
	SinkName string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(cfg.SinkName))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Intake endpoints answer every method themselves so a wrong method
	// still gets the JSON 405 body.
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
		if cfg.RateLimitRPS > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		api.HandleFunc(BookingsPath, cfg.LeadsHandler.Bookings)
		api.HandleFunc(FleetPath, cfg.LeadsHandler.FleetEnquiries)
	})

	return r
}

func healthHandler(sinkName string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]string{"status": "ok"}
		if sinkName != "" {
			resp["sink"] = sinkName
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
