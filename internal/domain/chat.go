package domain

import "time"

// StatusMessageRecord is the most recent live status message posted to the
// chat platform. The latest record decides whether a refresh edits the
// existing message in place or posts a new one.
type StatusMessageRecord struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	ChannelID string    `json:"channel_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSettings holds the chat platform integration configuration.
// Managed through the admin surface and stored in the database.
type ChatSettings struct {
	BotToken  string    `json:"bot_token"`
	ChannelID string    `json:"channel_id"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsConfigured reports whether the integration has the credentials it
// needs to talk to the chat platform.
func (s *ChatSettings) IsConfigured() bool {
	return s.BotToken != "" && s.ChannelID != ""
}
