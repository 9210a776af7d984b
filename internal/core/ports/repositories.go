package ports

import (
	"context"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
)

// RecordRepository defines the port for dashboard record storage.
type RecordRepository interface {
	ListByKind(ctx context.Context, kind domain.RecordKind) ([]domain.Record, error)
	GetByID(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error)
	Upsert(ctx context.Context, kind domain.RecordKind, records []domain.Record) (int, error)
}

// StatsRepository defines the port for statistics queries.
type StatsRepository interface {
	GetSummary(ctx context.Context, kind domain.RecordKind) (*domain.StatsSummary, error)
}

// VehicleFeed defines the port for the remote vehicle-position endpoint.
type VehicleFeed interface {
	Fetch(ctx context.Context) ([]domain.Record, error)
}

// EventBroadcaster defines the port for pushing real-time events.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}
