package http

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/lorrc/fleet-dashboard-backend/internal/core/errors"
)

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// errorMapping classifies one domain sentinel. An empty message echoes the
// error text to the client.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; the first sentinel found in the chain wins.
var errorMappings = []errorMapping{
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action"},
	{apperrors.ErrRecordNotFound, http.StatusNotFound, "RECORD_NOT_FOUND", "Record not found"},
	{apperrors.ErrUnknownRecordKind, http.StatusNotFound, "UNKNOWN_RECORD_KIND", "Unknown record kind"},
	{apperrors.ErrRecordIDRequired, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{apperrors.ErrInvalidMode, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{apperrors.ErrTooManyRecords, http.StatusRequestEntityTooLarge, "TOO_MANY_RECORDS", ""},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST", "Bad request"},
	{apperrors.ErrFeedNotConfigured, http.StatusServiceUnavailable, "FEED_NOT_CONFIGURED", "Vehicle feed is not configured"},
	{apperrors.ErrFeedUnavailable, http.StatusBadGateway, "FEED_UNAVAILABLE", "Vehicle feed is unavailable"},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later."},
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		WriteJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: validationErrs.Errors,
		})
		return
	}

	status, response := classify(err)

	// A wrapped message replaces the generic one.
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			response.Error = appErr.Message
		}
		response.Details = appErr.Details
	}

	h.logError(r, status, err)
	WriteJSON(w, status, response)
}

// classify maps an error to its HTTP status and response body.
func classify(err error) (int, ErrorResponse) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return m.status, ErrorResponse{Error: message, Code: m.code}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: "An unexpected error occurred",
		Code:  "INTERNAL_ERROR",
	}
}

func (h *ErrorHandler) logError(r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	h.logger.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", status,
		"error", err.Error(),
	)
}
