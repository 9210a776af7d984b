package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/fleet-dashboard-backend/internal/auth"
	"github.com/lorrc/fleet-dashboard-backend/internal/config"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

// RouterDeps holds everything the HTTP surface is built from.
type RouterDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Records  ports.RecordService
	Stats    ports.StatsService
	Vehicles ports.VehicleService
	Health   HealthChecker
	Hub      *wsAdapter.Hub

	// TokenManager guards the API when set; nil leaves it open.
	TokenManager *auth.TokenManager

	// RateLimiter is applied globally when set.
	RateLimiter *mw.RateLimiter
}

// NewRouter wires handlers and middleware into the service's route tree.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	errorHandler := NewErrorHandler(logger)

	recordHandler := NewRecordHandler(deps.Records, errorHandler, logger)
	vehicleHandler := NewVehicleHandler(deps.Vehicles, errorHandler, logger)
	statsHandler := NewStatsHandler(deps.Stats, errorHandler, logger)
	// Only a non-nil hub may be stored in the interface.
	var clients ClientCounter
	if deps.Hub != nil {
		clients = deps.Hub
	}
	healthHandler := NewHealthHandler(deps.Health, deps.Vehicles, clients, deps.Config.App.Version)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           deps.Config.CORS.MaxAge,
	}))

	// Probe and scrape endpoints are not rate limited.
	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}

		// WebSocket route (authentication is handled inside the handler)
		if deps.Hub != nil {
			r.Get("/ws", NewWebSocketHandler(deps.Hub, deps.TokenManager, deps.Config, logger).ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			if deps.TokenManager != nil {
				r.Use(mw.JWTMiddleware(deps.TokenManager))
			}
			r.Mount("/records", recordHandler.Router())
			r.Mount("/vehicles", vehicleHandler.Router())
			r.Mount("/stats", statsHandler.Router())
			r.Mount("/buckets", statsHandler.BucketsRouter())
		})
	})

	return r
}
