package http

import (
	"encoding/json"
	"net/http"

	"github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/validation"
)

// PaginatedResponse is one page of a filtered result.
type PaginatedResponse[T any] struct {
	Data       []T                `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
}

// PaginationMetadata describes where the page sits in the filtered result.
type PaginationMetadata struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	TotalCount int  `json:"totalCount"`
	HasMore    bool `json:"hasMore"`
}

// ListResponse is an unpaginated result.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// WriteJSON writes v as the JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WritePaginated writes the page of all selected by p.
func WritePaginated[T any](w http.ResponseWriter, all []T, p validation.PaginationParams) {
	page := validation.Paginate(all, p)

	WriteJSON(w, http.StatusOK, PaginatedResponse[T]{
		Data: page,
		Pagination: PaginationMetadata{
			Limit:      p.Limit,
			Offset:     p.Offset,
			TotalCount: len(all),
			HasMore:    p.Offset+len(page) < len(all),
		},
	})
}

// WriteList writes items as an unpaginated list; nil encodes as [].
func WriteList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, ListResponse[T]{Data: items, Count: len(items)})
}
