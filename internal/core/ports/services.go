package ports

import (
	"context"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
)

// ListRecordsParams defines the input for listing stored records.
type ListRecordsParams struct {
	Kind     domain.RecordKind
	Criteria domain.Criteria
}

// MatchRecordsParams defines the input for filtering caller-supplied records.
type MatchRecordsParams struct {
	Kind     domain.RecordKind
	Records  []domain.Record
	Criteria domain.Criteria
}

// RecordService defines the core operations over dashboard records.
type RecordService interface {
	ListRecords(ctx context.Context, params ListRecordsParams) ([]domain.Record, error)
	GetRecord(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error)
	MatchRecords(ctx context.Context, params MatchRecordsParams) ([]domain.Record, error)
	UpsertRecords(ctx context.Context, kind domain.RecordKind, records []domain.Record) (int, error)
}

// StatsService defines the port for statistics panels.
type StatsService interface {
	GetSummary(ctx context.Context, kind domain.RecordKind) (*domain.StatsSummary, error)
	GetTrend(ctx context.Context, kind domain.RecordKind, mode domain.Mode) (*domain.Trend, error)
}

// VehicleService defines the port for the vehicle-position cache.
type VehicleService interface {
	Refresh(ctx context.Context) error
	Snapshot(ctx context.Context) domain.VehicleSnapshot
	List(ctx context.Context, criteria domain.Criteria) (domain.VehicleSnapshot, error)
}
