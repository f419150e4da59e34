package domain

import "time"

// UptimeRecord aggregates health checks for one service over one UTC day.
type UptimeRecord struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	Day       time.Time `json:"day"`
	Checks    int       `json:"checks"`
	Failures  int       `json:"failures"`
}

// Percent returns the uptime percentage for the day.
// A day with no checks counts as fully up.
func (r *UptimeRecord) Percent() float64 {
	if r.Checks == 0 {
		return 100.0
	}
	return float64(r.Checks-r.Failures) / float64(r.Checks) * 100.0
}
