package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	apperrors "github.com/lorrc/fleet-dashboard-backend/internal/core/errors"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

type RecordRepository struct {
	pool *pgxpool.Pool
}

var _ ports.RecordRepository = (*RecordRepository)(nil)

func NewRecordRepository(pool *pgxpool.Pool) ports.RecordRepository {
	return &RecordRepository{pool: pool}
}

// ListByKind returns every record of a kind in insertion order.
func (r *RecordRepository) ListByKind(ctx context.Context, kind domain.RecordKind) ([]domain.Record, error) {
	const query = `
SELECT data
FROM records
WHERE kind = $1
ORDER BY seq
`

	rows, err := r.pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		var data map[string]any
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		records = append(records, domain.Record(data))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// GetByID returns one record or ErrRecordNotFound.
func (r *RecordRepository) GetByID(ctx context.Context, kind domain.RecordKind, id string) (domain.Record, error) {
	const query = `
SELECT data
FROM records
WHERE kind = $1 AND id = $2
`

	var data map[string]any
	err := r.pool.QueryRow(ctx, query, string(kind), id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, err
	}
	return domain.Record(data), nil
}

// Upsert inserts or replaces records by (kind, id) in one transaction.
func (r *RecordRepository) Upsert(ctx context.Context, kind domain.RecordKind, records []domain.Record) (int, error) {
	const query = `
INSERT INTO records (id, kind, status, type, zone, data, created_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
ON CONFLICT (kind, id) DO UPDATE
SET status     = EXCLUDED.status,
    type       = EXCLUDED.type,
    zone       = EXCLUDED.zone,
    data       = EXCLUDED.data,
    created_at = COALESCE($7, records.created_at),
    updated_at = NOW()
`

	written := 0
	err := inTx(ctx, r.pool, func(q querier) error {
		for _, record := range records {
			id := record.ID()
			if id == "" {
				return apperrors.ErrRecordIDRequired
			}

			_, err := q.Exec(ctx, query,
				id,
				string(kind),
				textColumn(record.Status()),
				textColumn(record.Text("type")),
				textColumn(record.Text("zone")),
				map[string]any(record),
				createdAtColumn(record),
			)
			if err != nil {
				return fmt.Errorf("upsert record %q: %w", id, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return written, nil
}
