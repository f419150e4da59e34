// Package chat mirrors the aggregate system status to the chat platform:
// change alerts, a single live status message edited in place, and
// admin-triggered announcements.
package chat

import (
	"context"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Repository defines the interface for chat data access.
type Repository interface {
	GetSettings(ctx context.Context) (*domain.ChatSettings, error)
	UpdateSettings(ctx context.Context, settings *domain.ChatSettings) error

	// GetLatestStatusMessage returns the most recent record, or
	// ErrNoStatusMessage if none has been posted yet.
	GetLatestStatusMessage(ctx context.Context) (*domain.StatusMessageRecord, error)
	CreateStatusMessage(ctx context.Context, record *domain.StatusMessageRecord) error
}
