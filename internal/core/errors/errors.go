package errors

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors. Adapters translate these into transport-level responses.
var (
	ErrForbidden    = errors.New("action forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// Records
	ErrRecordNotFound    = errors.New("record not found")
	ErrUnknownRecordKind = errors.New("unknown record kind")
	ErrRecordIDRequired  = errors.New("record id is required")
	ErrTooManyRecords    = errors.New("too many records in one request")

	// Statistics
	ErrInvalidMode = errors.New("invalid aggregation mode")

	// Vehicle feed
	ErrFeedUnavailable   = errors.New("vehicle feed unavailable")
	ErrFeedNotConfigured = errors.New("vehicle feed not configured")

	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError attaches a client-facing message to an error. The wrapped error
// still decides how the failure is classified.
type AppError struct {
	Err     error
	Message string
	Details map[string]any
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithMessage wraps err with a message safe to show to clients.
func WithMessage(err error, message string) *AppError {
	return &AppError{Err: err, Message: message}
}

// NewBadRequestError classifies err as a malformed request.
func NewBadRequestError(err error, message string) *AppError {
	if err == nil || errors.Is(err, ErrBadRequest) {
		return WithMessage(ErrBadRequest, message)
	}
	return WithMessage(errors.Join(ErrBadRequest, err), message)
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Fields returns the names of the invalid fields in sorted order.
func (v *ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (v *ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(v.Fields(), ", ")
}
