package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/validation"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

// VehicleHandler serves the cached vehicle positions
type VehicleHandler struct {
	vehicleService ports.VehicleService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(
	vehicleService ports.VehicleService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "vehicle"),
	}
}

// Router sets up a new chi Router for the vehicle routes.
func (h *VehicleHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.HandleListVehicles)
	r.Post("/refresh", h.HandleRefresh)
	return r
}

// HandleListVehicles handles GET /vehicles. The response always carries the
// snapshot time and the last feed error so the dashboard can flag stale data.
func (h *VehicleHandler) HandleListVehicles(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.vehicleService.List(r.Context(), validation.ParseCriteria(r))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.NewVehicleSnapshotPayload(snapshot))
}

// HandleRefresh handles POST /vehicles/refresh, polling the feed out of band.
func (h *VehicleHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.vehicleService.Refresh(r.Context()); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "vehicle feed refreshed on request")
	WriteJSON(w, http.StatusOK, domain.NewVehicleSnapshotPayload(h.vehicleService.Snapshot(r.Context())))
}
