package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytics_api "ms-rsvp/internal/analytics/api"
	"ms-rsvp/internal/config"
	"ms-rsvp/internal/logger"
	"ms-rsvp/internal/metrics"
	"ms-rsvp/internal/middleware"
	"ms-rsvp/internal/tickets/ticket_api"
	"ms-rsvp/internal/utils"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger           *logger.Logger
	Metrics          *metrics.Metrics
	MetricsPath      string
	Store            Pinger
	TicketHandler    *ticket_api.Handler
	AnalyticsHandler *analytics_api.Handler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(d.Logger, d.Metrics))

	r.Get("/healthz", health(d.Store, d.Logger))
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.Metrics.Handler())
		d.Logger.Info("ROUTER", "Metrics endpoint registered at "+path)
	}

	if d.TicketHandler != nil {
		d.TicketHandler.RegisterRoutes(r)
		d.Logger.Info("ROUTER", "Ticket routes registered under /tickets and /request-ticket")
	}
	if d.AnalyticsHandler != nil {
		d.AnalyticsHandler.RegisterRoutes(r)
		d.Logger.Info("ROUTER", "Analytics routes registered at /attendees")
	}

	return r
}

func health(store Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				log.Error("HEALTH", "Database ping failed: "+err.Error())
				utils.WriteError(w, http.StatusServiceUnavailable, "Database unavailable", "ping failed")
				return
			}
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok"))
	}
}

// NewHTTPServer applies the configured timeouts to handler.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
