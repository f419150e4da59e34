// Package uptime tracks per-service daily uptime statistics.
package uptime

import (
	"context"
	"time"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Repository defines the interface for uptime data operations.
type Repository interface {
	// RecordCheck increments the daily counters for a service. A failed
	// check increments both checks and failures.
	RecordCheck(ctx context.Context, serviceID string, day time.Time, failed bool) error
	ListRange(ctx context.Context, serviceID string, from, to time.Time) ([]domain.UptimeRecord, error)
}
