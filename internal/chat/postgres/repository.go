// Package postgres provides the PostgreSQL implementation of the chat repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statusdeck/statusdeck/internal/chat"
	"github.com/statusdeck/statusdeck/internal/domain"
)

// Repository implements the chat.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetSettings returns the singleton settings row.
func (r *Repository) GetSettings(ctx context.Context) (*domain.ChatSettings, error) {
	query := `
		SELECT bot_token, channel_id, enabled, updated_at
		FROM chat_settings
		WHERE id
	`

	var settings domain.ChatSettings
	err := r.db.QueryRow(ctx, query).Scan(
		&settings.BotToken,
		&settings.ChannelID,
		&settings.Enabled,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get chat settings: %w", err)
	}
	return &settings, nil
}

// UpdateSettings overwrites the singleton settings row.
func (r *Repository) UpdateSettings(ctx context.Context, settings *domain.ChatSettings) error {
	query := `
		UPDATE chat_settings
		SET bot_token = $1, channel_id = $2, enabled = $3, updated_at = $4
		WHERE id
	`

	if _, err := r.db.Exec(ctx, query,
		settings.BotToken,
		settings.ChannelID,
		settings.Enabled,
		settings.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update chat settings: %w", err)
	}
	return nil
}

// GetLatestStatusMessage returns the most recently posted status message.
func (r *Repository) GetLatestStatusMessage(ctx context.Context) (*domain.StatusMessageRecord, error) {
	query := `
		SELECT id, message_id, channel_id, content, created_at
		FROM status_messages
		ORDER BY created_at DESC
		LIMIT 1
	`

	var record domain.StatusMessageRecord
	err := r.db.QueryRow(ctx, query).Scan(
		&record.ID,
		&record.MessageID,
		&record.ChannelID,
		&record.Content,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNoStatusMessage
		}
		return nil, fmt.Errorf("get latest status message: %w", err)
	}
	return &record, nil
}

// CreateStatusMessage records a newly posted status message.
func (r *Repository) CreateStatusMessage(ctx context.Context, record *domain.StatusMessageRecord) error {
	query := `
		INSERT INTO status_messages (message_id, channel_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		record.MessageID,
		record.ChannelID,
		record.Content,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("create status message: %w", err)
	}
	return nil
}
