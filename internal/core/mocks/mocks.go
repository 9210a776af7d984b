package mocks

import (
	"context"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockRecordRepository is a mock implementation of ports.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

var _ ports.RecordRepository = (*MockRecordRepository)(nil)

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{}
}

func (m *MockRecordRepository) ListByKind(ctx context.Context, kind domain.RecordKind) ([]domain.Record, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordRepository) GetByID(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Record), args.Error(1)
}

func (m *MockRecordRepository) Upsert(ctx context.Context, kind domain.RecordKind, records []domain.Record) (int, error) {
	args := m.Called(ctx, kind, records)
	return args.Int(0), args.Error(1)
}

// MockStatsRepository is a mock implementation of ports.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

var _ ports.StatsRepository = (*MockStatsRepository)(nil)

func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{}
}

func (m *MockStatsRepository) GetSummary(ctx context.Context, kind domain.RecordKind) (*domain.StatsSummary, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsSummary), args.Error(1)
}

// MockVehicleFeed is a mock implementation of ports.VehicleFeed
type MockVehicleFeed struct {
	mock.Mock
}

var _ ports.VehicleFeed = (*MockVehicleFeed)(nil)

func NewMockVehicleFeed() *MockVehicleFeed {
	return &MockVehicleFeed{}
}

func (m *MockVehicleFeed) Fetch(ctx context.Context) ([]domain.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

// MockRecordService is a mock implementation of ports.RecordService
type MockRecordService struct {
	mock.Mock
}

var _ ports.RecordService = (*MockRecordService)(nil)

func NewMockRecordService() *MockRecordService {
	return &MockRecordService{}
}

func (m *MockRecordService) ListRecords(ctx context.Context, params ports.ListRecordsParams) ([]domain.Record, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordService) GetRecord(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Record), args.Error(1)
}

func (m *MockRecordService) MatchRecords(ctx context.Context, params ports.MatchRecordsParams) ([]domain.Record, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordService) UpsertRecords(ctx context.Context, kind domain.RecordKind, records []domain.Record) (int, error) {
	args := m.Called(ctx, kind, records)
	return args.Int(0), args.Error(1)
}

// MockStatsService is a mock implementation of ports.StatsService
type MockStatsService struct {
	mock.Mock
}

var _ ports.StatsService = (*MockStatsService)(nil)

func NewMockStatsService() *MockStatsService {
	return &MockStatsService{}
}

func (m *MockStatsService) GetSummary(ctx context.Context, kind domain.RecordKind) (*domain.StatsSummary, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsSummary), args.Error(1)
}

func (m *MockStatsService) GetTrend(ctx context.Context, kind domain.RecordKind, mode domain.Mode) (*domain.Trend, error) {
	args := m.Called(ctx, kind, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trend), args.Error(1)
}

// MockVehicleService is a mock implementation of ports.VehicleService
type MockVehicleService struct {
	mock.Mock
}

var _ ports.VehicleService = (*MockVehicleService)(nil)

func NewMockVehicleService() *MockVehicleService {
	return &MockVehicleService{}
}

func (m *MockVehicleService) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVehicleService) Snapshot(ctx context.Context) domain.VehicleSnapshot {
	args := m.Called(ctx)
	return args.Get(0).(domain.VehicleSnapshot)
}

func (m *MockVehicleService) List(ctx context.Context, criteria domain.Criteria) (domain.VehicleSnapshot, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).(domain.VehicleSnapshot), args.Error(1)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

var _ ports.EventBroadcaster = (*MockEventBroadcaster)(nil)

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
