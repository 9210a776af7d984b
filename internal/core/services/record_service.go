package services

import (
	"context"
	"strings"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	apperrors "github.com/lorrc/fleet-dashboard-backend/internal/core/errors"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
	"github.com/lorrc/fleet-dashboard-backend/internal/infrastructure/metrics"
)

// MaxRecordsPerRequest bounds caller-supplied datasets for match and upsert.
const MaxRecordsPerRequest = 10000

// RecordService implements filtering and storage of dashboard records
type RecordService struct {
	recordRepo ports.RecordRepository
}

var _ ports.RecordService = (*RecordService)(nil)

// NewRecordService creates a new record service
func NewRecordService(recordRepo ports.RecordRepository) ports.RecordService {
	return &RecordService{recordRepo: recordRepo}
}

// ListRecords loads the stored records of a kind, normalizes them and
// applies the criteria.
func (s *RecordService) ListRecords(ctx context.Context, params ports.ListRecordsParams) ([]domain.Record, error) {
	if !params.Kind.IsValid() {
		return nil, apperrors.ErrUnknownRecordKind
	}

	records, err := s.recordRepo.ListByKind(ctx, params.Kind)
	if err != nil {
		return nil, err
	}

	normalized := domain.Normalize(records, domain.AliasesFor(params.Kind))
	metrics.FilterInvocations.WithLabelValues(string(params.Kind)).Inc()
	return domain.Match(normalized, params.Criteria, domain.SchemaFor(params.Kind)), nil
}

// GetRecord retrieves a single stored record
func (s *RecordService) GetRecord(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error) {
	if !kind.IsValid() {
		return nil, apperrors.ErrUnknownRecordKind
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ErrRecordIDRequired
	}

	record, err := s.recordRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	normalized := domain.Normalize([]domain.Record{record}, domain.AliasesFor(kind))
	if len(normalized) == 0 {
		return nil, apperrors.ErrRecordNotFound
	}
	return normalized[0], nil
}

// MatchRecords filters a dataset the caller owns. Nothing is loaded from
// storage.
func (s *RecordService) MatchRecords(ctx context.Context, params ports.MatchRecordsParams) ([]domain.Record, error) {
	if !params.Kind.IsValid() {
		return nil, apperrors.ErrUnknownRecordKind
	}
	if len(params.Records) > MaxRecordsPerRequest {
		return nil, apperrors.ErrTooManyRecords
	}

	normalized := domain.Normalize(params.Records, domain.AliasesFor(params.Kind))
	metrics.FilterInvocations.WithLabelValues(string(params.Kind)).Inc()
	return domain.Match(normalized, params.Criteria, domain.SchemaFor(params.Kind)), nil
}

// UpsertRecords normalizes and stores records, replacing existing ones with
// the same id.
func (s *RecordService) UpsertRecords(ctx context.Context, kind domain.RecordKind, records []domain.Record) (int, error) {
	if !kind.IsValid() {
		return 0, apperrors.ErrUnknownRecordKind
	}
	if len(records) > MaxRecordsPerRequest {
		return 0, apperrors.ErrTooManyRecords
	}

	normalized := domain.Normalize(records, domain.AliasesFor(kind))
	for _, record := range normalized {
		if record.ID() == "" {
			return 0, apperrors.ErrRecordIDRequired
		}
	}

	return s.recordRepo.Upsert(ctx, kind, normalized)
}
