package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	apperrors "github.com/lorrc/fleet-dashboard-backend/internal/core/errors"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
	"github.com/lorrc/fleet-dashboard-backend/internal/infrastructure/metrics"
)

// VehicleService keeps the latest vehicle positions in memory.
// A failed refresh keeps the previous snapshot and records the error.
type VehicleService struct {
	feed        ports.VehicleFeed
	recordRepo  ports.RecordRepository
	broadcaster ports.EventBroadcaster
	logger      *slog.Logger
	now         func() time.Time

	// refreshMu serializes fetch-and-replace so an older fetch never
	// overwrites a newer snapshot.
	refreshMu sync.Mutex

	// mu protects snapshot and seeded
	mu       sync.RWMutex
	snapshot domain.VehicleSnapshot
	seeded   bool
}

var _ ports.VehicleService = (*VehicleService)(nil)

// NewVehicleService creates a vehicle cache. feed may be nil when no remote
// endpoint is configured; the cache then serves stored vehicle records.
func NewVehicleService(
	feed ports.VehicleFeed,
	recordRepo ports.RecordRepository,
	broadcaster ports.EventBroadcaster,
	logger *slog.Logger,
) *VehicleService {
	return &VehicleService{
		feed:        feed,
		recordRepo:  recordRepo,
		broadcaster: broadcaster,
		logger:      logger.With("component", "vehicle_service"),
		now:         time.Now,
	}
}

// Refresh fetches the feed once and replaces the snapshot on success.
func (s *VehicleService) Refresh(ctx context.Context) error {
	if s.feed == nil {
		return apperrors.ErrFeedNotConfigured
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	vehicles, err := s.feed.Fetch(ctx)
	metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FeedPolls.WithLabelValues("failure").Inc()

		s.mu.Lock()
		s.snapshot.LastError = err.Error()
		s.snapshot.Stale = true
		snap := s.snapshot.Clone()
		s.mu.Unlock()

		s.logger.Warn("vehicle feed refresh failed, keeping previous snapshot",
			"error", err,
			"cached_vehicles", len(snap.Vehicles),
		)
		s.broadcast(domain.EventFeedFailed, snap)
		return fmt.Errorf("%w: %v", apperrors.ErrFeedUnavailable, err)
	}

	metrics.FeedPolls.WithLabelValues("success").Inc()
	metrics.CachedVehicles.Set(float64(len(vehicles)))

	s.mu.Lock()
	s.snapshot = domain.VehicleSnapshot{
		Vehicles:  vehicles,
		UpdatedAt: s.now().UTC(),
	}
	s.seeded = true
	snap := s.snapshot.Clone()
	s.mu.Unlock()

	s.logger.Debug("vehicle snapshot refreshed", "vehicles", len(vehicles))
	s.broadcast(domain.EventVehiclesUpdated, snap)
	return nil
}

// Snapshot returns a copy of the current snapshot. Without a feed it reads
// the stored vehicle records on every call. With a feed, the store seeds the
// cache until the first successful refresh.
func (s *VehicleService) Snapshot(ctx context.Context) domain.VehicleSnapshot {
	if s.feed == nil {
		return s.storedSnapshot(ctx)
	}

	s.mu.RLock()
	seeded := s.seeded
	snap := s.snapshot.Clone()
	s.mu.RUnlock()

	if seeded || s.recordRepo == nil {
		return snap
	}

	vehicles, err := s.loadStored(ctx)
	if err != nil {
		s.logger.Warn("failed to seed vehicle snapshot from store", "error", err)
		return snap
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seeded {
		s.snapshot.Vehicles = vehicles
		s.seeded = true
		metrics.CachedVehicles.Set(float64(len(vehicles)))
	}
	return s.snapshot.Clone()
}

// storedSnapshot serves the record store directly so upserted vehicles are
// visible on the next read.
func (s *VehicleService) storedSnapshot(ctx context.Context) domain.VehicleSnapshot {
	if s.recordRepo == nil {
		return domain.VehicleSnapshot{Vehicles: []domain.Record{}}
	}

	vehicles, err := s.loadStored(ctx)
	if err != nil {
		s.logger.Warn("failed to read stored vehicles", "error", err)
		return domain.VehicleSnapshot{Vehicles: []domain.Record{}, Stale: true, LastError: err.Error()}
	}

	metrics.CachedVehicles.Set(float64(len(vehicles)))
	return domain.VehicleSnapshot{Vehicles: vehicles, UpdatedAt: s.now().UTC()}
}

func (s *VehicleService) loadStored(ctx context.Context) ([]domain.Record, error) {
	records, err := s.recordRepo.ListByKind(ctx, domain.KindVehicle)
	if err != nil {
		return nil, err
	}
	return domain.Normalize(records, domain.VehicleAliases), nil
}

// List returns the current snapshot restricted to vehicles matching criteria.
func (s *VehicleService) List(ctx context.Context, criteria domain.Criteria) (domain.VehicleSnapshot, error) {
	snap := s.Snapshot(ctx)
	metrics.FilterInvocations.WithLabelValues(string(domain.KindVehicle)).Inc()
	snap.Vehicles = domain.Match(snap.Vehicles, criteria, domain.SchemaFor(domain.KindVehicle))
	return snap, nil
}

func (s *VehicleService) broadcast(eventType domain.EventType, snap domain.VehicleSnapshot) {
	if s.broadcaster == nil {
		return
	}
	event := domain.Event{
		Type:    eventType,
		Payload: domain.NewVehicleSnapshotPayload(snap),
		Topic:   domain.TopicVehicles,
	}
	if err := s.broadcaster.Broadcast(event); err != nil {
		s.logger.Warn("failed to broadcast vehicle event", "event_type", eventType, "error", err)
	}
}
