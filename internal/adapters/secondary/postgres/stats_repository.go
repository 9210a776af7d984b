package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

// bucketFormats maps each mode to the to_char pattern of its bucket keys.
var bucketFormats = map[domain.Mode]string{
	domain.ModeDay:   "YYYY-MM-DD",
	domain.ModeMonth: "YYYY-MM",
	domain.ModeYear:  "YYYY",
}

type StatsRepository struct {
	pool *pgxpool.Pool
}

var _ ports.StatsRepository = (*StatsRepository)(nil)

func NewStatsRepository(pool *pgxpool.Pool) ports.StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetSummary computes the statistics panels for a record kind. The
// independent aggregate queries run concurrently.
func (r *StatsRepository) GetSummary(ctx context.Context, kind domain.RecordKind) (*domain.StatsSummary, error) {
	summary := domain.NewStatsSummary(kind)

	type modeResult struct {
		totals domain.BucketSet
		byType domain.TypedBuckets
	}
	modes := []domain.Mode{domain.ModeDay, domain.ModeMonth, domain.ModeYear}
	results := make([]modeResult, len(modes))

	var (
		total int64
		zones []domain.ZoneRow
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		total, err = r.fetchTotal(gctx, kind)
		return err
	})

	for i, mode := range modes {
		i, mode := i, mode
		g.Go(func() error {
			totals, byType, err := r.fetchBuckets(gctx, kind, mode)
			if err != nil {
				return err
			}
			results[i] = modeResult{totals: totals, byType: byType}
			return nil
		})
	}

	g.Go(func() error {
		var err error
		zones, err = r.fetchZones(gctx, kind)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.TotalCount = total
	for i, mode := range modes {
		summary.SetBuckets(mode, results[i].totals, results[i].byType)
	}
	summary.Zones = zones

	return summary, nil
}

func (r *StatsRepository) fetchTotal(ctx context.Context, kind domain.RecordKind) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM records
WHERE kind = $1
`

	var total int64
	if err := r.pool.QueryRow(ctx, query, string(kind)).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *StatsRepository) fetchBuckets(ctx context.Context, kind domain.RecordKind, mode domain.Mode) (domain.BucketSet, domain.TypedBuckets, error) {
	const query = `
SELECT to_char(created_at AT TIME ZONE 'UTC', $2) AS bucket,
       type,
       COUNT(*)
FROM records
WHERE kind = $1
GROUP BY 1, 2
`

	rows, err := r.pool.Query(ctx, query, string(kind), bucketFormats[mode])
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	totals := domain.BucketSet{}
	byType := domain.TypedBuckets{}
	for rows.Next() {
		var (
			bucket  string
			typeCol pgtype.Text
			count   int64
		)
		if err := rows.Scan(&bucket, &typeCol, &count); err != nil {
			return nil, nil, err
		}
		typeName := textValue(typeCol)

		totals[bucket] += float64(count)
		if typeName == "" {
			continue
		}
		if byType[typeName] == nil {
			byType[typeName] = domain.BucketSet{}
		}
		byType[typeName][bucket] += float64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return totals, byType, nil
}

func (r *StatsRepository) fetchZones(ctx context.Context, kind domain.RecordKind) ([]domain.ZoneRow, error) {
	const query = `
SELECT zone, status, COUNT(*)
FROM records
WHERE kind = $1
  AND zone IS NOT NULL
  AND zone <> ''
GROUP BY zone, status
ORDER BY zone, status
`

	rows, err := r.pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := make([]domain.ZoneRow, 0)
	for rows.Next() {
		var (
			zone   string
			status pgtype.Text
			count  int64
		)
		if err := rows.Scan(&zone, &status, &count); err != nil {
			return nil, err
		}

		if n := len(zones); n == 0 || zones[n-1].Zone != zone {
			zones = append(zones, domain.ZoneRow{Zone: zone, StatusCounts: map[string]int64{}})
		}
		row := &zones[len(zones)-1]
		row.Total += count
		if name := textValue(status); name != "" {
			row.StatusCounts[name] += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return zones, nil
}
