package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/validation"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

// maxBucketKeys bounds the keys accepted by the recent-buckets endpoint.
const maxBucketKeys = 10000

// StatsHandler serves the statistics panels and chart windows
type StatsHandler struct {
	statsService ports.StatsService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(
	statsService ports.StatsService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "stats"),
	}
}

// Router sets up a new chi Router for the stats routes.
func (h *StatsHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/{kind}", h.HandleGetSummary)
	r.Get("/{kind}/trend", h.HandleGetTrend)
	return r
}

// BucketsRouter sets up the routes for bucket-key utilities.
func (h *StatsHandler) BucketsRouter() http.Handler {
	r := chi.NewRouter()
	r.Post("/recent", h.HandleRecentBuckets)
	return r
}

// --- Request/Response DTOs ---

// RecentBucketsRequest carries the bucket keys to choose from.
type RecentBucketsRequest struct {
	Keys []string `json:"keys"`
}

// Validate validates the recent buckets request
func (r *RecentBucketsRequest) Validate() error {
	v := validation.NewValidator()
	v.Max("keys", len(r.Keys), maxBucketKeys)
	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// RecentBucketsResponse is the fixed five-slot chart window.
type RecentBucketsResponse struct {
	Chosen []string `json:"chosen"`
}

// --- Handlers ---

// HandleGetSummary handles GET /stats/{kind}
func (h *StatsHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsService.GetSummary(r.Context(), domain.RecordKind(chi.URLParam(r, "kind")))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// HandleGetTrend handles GET /stats/{kind}/trend?mode=day|month|year
func (h *StatsHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	mode := domain.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = domain.ModeDay
	}

	trend, err := h.statsService.GetTrend(r.Context(), domain.RecordKind(chi.URLParam(r, "kind")), mode)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, trend)
}

// HandleRecentBuckets handles POST /buckets/recent
func (h *StatsHandler) HandleRecentBuckets(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeJSON[RecentBucketsRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, RecentBucketsResponse{Chosen: domain.PickRecentBuckets(req.Keys)})
}
