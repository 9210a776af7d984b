package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
)

// createdAtFields are the record fields that may carry the creation time,
// in priority order.
var createdAtFields = []string{"createdAt", "created_at", "createTime", "orderTime", "date", "time"}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// textColumn stores an empty record field as NULL so the indexed columns
// only hold real values.
func textColumn(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// textValue reads a nullable column back as a record field value.
func textValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// createdAtColumn extracts the record's creation time, if it carries one.
// NULL lets the insert fall back to NOW() and an update keep the old value.
func createdAtColumn(record domain.Record) pgtype.Timestamptz {
	for _, field := range createdAtFields {
		value := record.Text(field)
		if value == "" {
			continue
		}
		for _, layout := range createdAtLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
			}
		}
	}
	return pgtype.Timestamptz{}
}
