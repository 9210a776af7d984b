package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	healthCheckTimeout = 5 * time.Second
)

// HealthChecker is a dependency that can be pinged.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ClientCounter reports realtime connection counts.
type ClientCounter interface {
	GetClientCount() int
	GetClientsInRoom(topic string) int
}

// HealthHandler serves the probe and diagnostics endpoints.
type HealthHandler struct {
	db        HealthChecker
	vehicles  ports.VehicleService
	clients   ClientCounter
	startTime time.Time
	version   string
}

// NewHealthHandler creates a health handler. vehicles and clients may be nil.
func NewHealthHandler(db HealthChecker, vehicles ports.VehicleService, clients ClientCounter, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		vehicles:  vehicles,
		clients:   clients,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// HandleLiveness reports that the process is serving requests.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness reports whether the service can accept traffic, which
// only depends on the database.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, false)
}

// HandleHealth adds the informational vehicle feed and realtime checks to
// the readiness report. Neither affects the status code.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, true)
}

func (h *HealthHandler) report(w http.ResponseWriter, r *http.Request, detailed bool) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	db := h.checkDatabase(ctx)
	checks := map[string]Check{"database": db}

	if detailed {
		if h.vehicles != nil {
			checks["vehicle_feed"] = h.checkVehicleFeed(ctx)
		}
		if h.clients != nil {
			checks["realtime"] = h.checkRealtime()
		}
	}

	status, code := statusHealthy, http.StatusOK
	if db.Status != statusHealthy {
		status, code = statusUnhealthy, http.StatusServiceUnavailable
	}

	WriteJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: statusUnhealthy, Message: "Database not configured"}
	}

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start).String()

	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Latency: latency}
}

// checkVehicleFeed reports the state of the latest vehicle poll
func (h *HealthHandler) checkVehicleFeed(ctx context.Context) Check {
	snapshot := h.vehicles.Snapshot(ctx)

	switch {
	case snapshot.Stale:
		return Check{Status: "stale", Message: snapshot.LastError}
	case snapshot.UpdatedAt.IsZero():
		return Check{Status: "pending", Message: "No successful poll yet"}
	}
	return Check{
		Status:  statusHealthy,
		Message: fmt.Sprintf("%d vehicles, updated %s ago", len(snapshot.Vehicles), time.Since(snapshot.UpdatedAt).Round(time.Second)),
	}
}

func (h *HealthHandler) checkRealtime() Check {
	return Check{
		Status: statusHealthy,
		Message: fmt.Sprintf("%d clients connected, %d subscribed to %s",
			h.clients.GetClientCount(),
			h.clients.GetClientsInRoom(domain.TopicVehicles),
			domain.TopicVehicles,
		),
	}
}
