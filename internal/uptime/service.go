package uptime

import (
	"context"
	"time"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// DefaultWindowDays is the default uptime history window.
const DefaultWindowDays = 90

// MaxWindowDays caps the requested history window.
const MaxWindowDays = 365

// Service implements uptime business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new uptime service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RecordCheck records the outcome of one health check for a service.
// Services in major or partial outage count as failed checks.
func (s *Service) RecordCheck(ctx context.Context, service *domain.Service) error {
	failed := service.Status == domain.ServiceStatusMajorOutage ||
		service.Status == domain.ServiceStatusPartialOutage
	day := s.now().UTC().Truncate(24 * time.Hour)
	return s.repo.RecordCheck(ctx, service.ID, day, failed)
}

// DayStat is one day of uptime history.
type DayStat struct {
	Day      time.Time `json:"day"`
	Checks   int       `json:"checks"`
	Failures int       `json:"failures"`
	Percent  float64   `json:"percent"`
}

// History contains the uptime history of a service over a window.
type History struct {
	ServiceID string    `json:"service_id"`
	Days      []DayStat `json:"days"`
	Overall   float64   `json:"overall"`
}

// GetHistory returns per-day uptime for the last `days` days plus the
// overall percentage across the window. Days without records count as
// fully up.
func (s *Service) GetHistory(ctx context.Context, serviceID string, days int) (*History, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	if days > MaxWindowDays {
		days = MaxWindowDays
	}

	to := s.now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -(days - 1))

	records, err := s.repo.ListRange(ctx, serviceID, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]domain.UptimeRecord, len(records))
	for _, rec := range records {
		byDay[rec.Day.UTC().Truncate(24*time.Hour)] = rec
	}

	history := &History{
		ServiceID: serviceID,
		Days:      make([]DayStat, 0, days),
	}

	var totalChecks, totalFailures int
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		stat := DayStat{Day: day, Percent: 100.0}
		if rec, ok := byDay[day]; ok {
			stat.Checks = rec.Checks
			stat.Failures = rec.Failures
			stat.Percent = rec.Percent()
			totalChecks += rec.Checks
			totalFailures += rec.Failures
		}
		history.Days = append(history.Days, stat)
	}

	history.Overall = 100.0
	if totalChecks > 0 {
		history.Overall = float64(totalChecks-totalFailures) / float64(totalChecks) * 100.0
	}

	return history, nil
}
