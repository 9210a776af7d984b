package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/validation"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

const maxRecordsPerPage = 1000

// RecordHandler handles HTTP requests for dashboard records
type RecordHandler struct {
	recordService ports.RecordService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(
	recordService ports.RecordService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "record"),
	}
}

// Router sets up a new chi Router for all record routes.
func (h *RecordHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all record endpoints.
func (h *RecordHandler) RegisterRoutes(r chi.Router) {
	r.Route("/{kind}", func(r chi.Router) {
		r.Get("/", h.HandleListRecords)
		r.Put("/", h.HandleUpsertRecords)
		r.Post("/match", h.HandleMatchRecords)
		r.Get("/{id}", h.HandleGetRecord)
	})
}

// --- Request/Response DTOs ---

// MatchRequest is the body of a stateless filter call. Records may be an
// array of objects or an object keyed by id; anything else matches nothing.
type MatchRequest struct {
	Records  any             `json:"records"`
	Criteria domain.Criteria `json:"criteria"`
}

// Dataset returns the caller's records, accepting an array or an id-keyed
// map. The size bound is enforced by the service.
func (r *MatchRequest) Dataset() []domain.Record {
	return domain.Normalize(r.Records, nil)
}

// UpsertRequest is the body of a bulk upsert.
type UpsertRequest struct {
	Records []domain.Record `json:"records"`
}

// Validate validates the upsert request
func (r *UpsertRequest) Validate() error {
	v := validation.NewValidator()
	v.Custom("records", len(r.Records) > 0, "At least one record is required")
	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpsertResponse reports how many records were written.
type UpsertResponse struct {
	Written int `json:"written"`
}

// --- Handlers ---

// HandleListRecords handles GET /records/{kind}
func (h *RecordHandler) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	pagination := validation.ParsePagination(r, maxRecordsPerPage)

	records, err := h.recordService.ListRecords(r.Context(), ports.ListRecordsParams{
		Kind:     recordKind(r),
		Criteria: validation.ParseCriteria(r),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginated(w, records, pagination)
}

// HandleGetRecord handles GET /records/{kind}/{id}
func (h *RecordHandler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.recordService.GetRecord(r.Context(), recordKind(r), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// HandleMatchRecords handles POST /records/{kind}/match
func (h *RecordHandler) HandleMatchRecords(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeJSON[MatchRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	matched, err := h.recordService.MatchRecords(r.Context(), ports.MatchRecordsParams{
		Kind:     recordKind(r),
		Records:  req.Dataset(),
		Criteria: req.Criteria,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, matched)
}

// HandleUpsertRecords handles PUT /records/{kind}
func (h *RecordHandler) HandleUpsertRecords(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeJSON[UpsertRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	kind := recordKind(r)
	written, err := h.recordService.UpsertRecords(r.Context(), kind, req.Records)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "records upserted",
		"kind", kind,
		"written", written,
	)

	WriteJSON(w, http.StatusOK, UpsertResponse{Written: written})
}

// recordKind reads the {kind} URL parameter. Validation is left to the
// service so unknown kinds map to a single error.
func recordKind(r *http.Request) domain.RecordKind {
	return domain.RecordKind(chi.URLParam(r, "kind"))
}
