package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	apperrors "github.com/lorrc/fleet-dashboard-backend/internal/core/errors"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 16 << 20

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Max validates maximum integer value
func (v *Validator) Max(field string, value, max int) *Validator {
	if value > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max))
	}
	return v
}

// Custom adds a custom validation
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeJSON decodes a request body holding exactly one JSON value of at
// most MaxBodyBytes.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	if r.ContentLength > MaxBodyBytes {
		return nil, apperrors.NewBadRequestError(nil, "Request body too large")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))

	var req T
	if err := dec.Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, apperrors.NewBadRequestError(err, "Request body must hold a single JSON value")
	}

	return &req, nil
}

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// DefaultPagination returns default pagination values
func DefaultPagination() PaginationParams {
	return PaginationParams{
		Limit:  100,
		Offset: 0,
	}
}

// ParsePagination extracts and validates pagination from query parameters
func ParsePagination(r *http.Request, maxLimit int) PaginationParams {
	params := DefaultPagination()

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			params.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	return params
}

// reservedParams are query parameters that never act as filter criteria.
var reservedParams = map[string]bool{
	"limit":  true,
	"offset": true,
	"token":  true,
	"mode":   true,
}

// ParseCriteria builds filter criteria from the query string. Every
// non-reserved parameter is a criterion; repeated parameters keep the
// first value. Criterion values are used verbatim.
func ParseCriteria(r *http.Request) domain.Criteria {
	query := r.URL.Query()
	criteria := make(domain.Criteria, len(query))
	for key, values := range query {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		criteria[key] = values[0]
	}
	return criteria
}

// Paginate returns the window of items described by p.
func Paginate[T any](items []T, p PaginationParams) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
