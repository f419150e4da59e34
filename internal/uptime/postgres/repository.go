// Package postgres provides the PostgreSQL implementation of the uptime repository.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statusdeck/statusdeck/internal/domain"
)

// Repository implements the uptime.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RecordCheck upserts the daily counters for a service.
func (r *Repository) RecordCheck(ctx context.Context, serviceID string, day time.Time, failed bool) error {
	failures := 0
	if failed {
		failures = 1
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO uptime_records (service_id, day, checks, failures)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (service_id, day)
		DO UPDATE SET checks = uptime_records.checks + 1,
		              failures = uptime_records.failures + $3
	`, serviceID, day, failures)
	if err != nil {
		return fmt.Errorf("record uptime check: %w", err)
	}
	return nil
}

// ListRange retrieves uptime records for a service between two days inclusive.
func (r *Repository) ListRange(ctx context.Context, serviceID string, from, to time.Time) ([]domain.UptimeRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, service_id, day, checks, failures
		FROM uptime_records
		WHERE service_id = $1 AND day BETWEEN $2 AND $3
		ORDER BY day
	`, serviceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list uptime records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.UptimeRecord, 0)
	for rows.Next() {
		var rec domain.UptimeRecord
		if err := rows.Scan(&rec.ID, &rec.ServiceID, &rec.Day, &rec.Checks, &rec.Failures); err != nil {
			return nil, fmt.Errorf("scan uptime record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
