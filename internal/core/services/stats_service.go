package services

import (
	"context"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	apperrors "github.com/lorrc/fleet-dashboard-backend/internal/core/errors"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

// StatsService implements the statistics panels
type StatsService struct {
	statsRepo ports.StatsRepository
}

var _ ports.StatsService = (*StatsService)(nil)

// NewStatsService creates a new stats service
func NewStatsService(statsRepo ports.StatsRepository) ports.StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// GetSummary returns the raw statistics for a record kind
func (s *StatsService) GetSummary(ctx context.Context, kind domain.RecordKind) (*domain.StatsSummary, error) {
	if !kind.IsValid() {
		return nil, apperrors.ErrUnknownRecordKind
	}
	return s.statsRepo.GetSummary(ctx, kind)
}

// GetTrend returns the chart window for a record kind and granularity
func (s *StatsService) GetTrend(ctx context.Context, kind domain.RecordKind, mode domain.Mode) (*domain.Trend, error) {
	if !mode.IsValid() {
		return nil, apperrors.ErrInvalidMode
	}

	summary, err := s.GetSummary(ctx, kind)
	if err != nil {
		return nil, err
	}

	trend := domain.AggregateForMode(mode, summary)
	return &trend, nil
}
