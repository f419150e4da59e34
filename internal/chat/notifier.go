package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/statusdeck/statusdeck/internal/chat/discord"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/ctxlog"
	"github.com/statusdeck/statusdeck/internal/status"
)

const (
	// minRefreshInterval is the cooperative rate limit on live status
	// refreshes. Calls arriving sooner are no-ops.
	minRefreshInterval = time.Minute

	// freshnessWindow bounds how old the live status message may be
	// before a refresh posts a new one instead of editing in place.
	freshnessWindow = 24 * time.Hour

	presenceText = "Watching service health"
)

// PlatformClient covers the chat platform calls the notifier makes.
type PlatformClient interface {
	CurrentUser(ctx context.Context) (*discord.User, error)
	GetChannel(ctx context.Context, channelID string) (*discord.Channel, error)
	UpdatePresence(ctx context.Context, status, text string) error
	CreateMessage(ctx context.Context, channelID string, payload discord.MessagePayload) (*discord.Message, error)
	EditMessage(ctx context.Context, channelID, messageID string, payload discord.MessagePayload) (*discord.Message, error)
}

// ClientFactory builds a platform client for a bot token. Settings can
// change at runtime, so clients are built per resolved token.
type ClientFactory func(token string) PlatformClient

// CheckResult reports the outcome of a status check.
type CheckResult struct {
	Status   domain.SystemStatus `json:"status"`
	Changed  bool                `json:"changed"`
	Notified bool                `json:"notified"`
	Error    string              `json:"error,omitempty"`
}

// RefreshResult reports the outcome of a live status refresh.
type RefreshResult struct {
	Posted    bool   `json:"posted"`
	MessageID string `json:"message_id,omitempty"`
	Skipped   string `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// AnnouncementResult reports the outcome of an announcement post.
type AnnouncementResult struct {
	Posted    bool   `json:"posted"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Notifier mirrors the aggregate system status to the chat platform.
// All operations that touch its memory are serialized by a single
// mutex so concurrent triggers cannot interleave alerts or refreshes.
type Notifier struct {
	repo     Repository
	clients  ClientFactory
	fallback domain.ChatSettings

	mu                sync.Mutex
	lastStatus        *domain.SystemStatus
	lastEmbedUpdateAt time.Time

	now func() time.Time
}

// NewNotifier creates a notifier. The fallback settings come from static
// configuration and apply when no settings row has been saved.
func NewNotifier(repo Repository, clients ClientFactory, fallback domain.ChatSettings) *Notifier {
	return &Notifier{
		repo:     repo,
		clients:  clients,
		fallback: fallback,
		now:      time.Now,
	}
}

// resolveSettings returns the effective settings, preferring saved
// settings over the static fallback field by field.
func (n *Notifier) resolveSettings(ctx context.Context) (domain.ChatSettings, error) {
	effective := n.fallback

	saved, err := n.repo.GetSettings(ctx)
	if err != nil {
		return domain.ChatSettings{}, fmt.Errorf("load chat settings: %w", err)
	}
	if saved.BotToken != "" {
		effective.BotToken = saved.BotToken
	}
	if saved.ChannelID != "" {
		effective.ChannelID = saved.ChannelID
	}
	if saved.Enabled {
		effective.Enabled = true
	}

	if !effective.Enabled {
		return domain.ChatSettings{}, ErrDisabled
	}
	if !effective.IsConfigured() {
		return domain.ChatSettings{}, ErrNotConfigured
	}
	return effective, nil
}

// CheckAndMaybeAlert records the current aggregate status and posts a
// change alert when the status degraded since the previous check.
// Recoveries update memory silently. A failed post is reported in the
// result but does not fail the check and does not reset the remembered
// status, so a flapping alert is sent at most once per transition.
func (n *Notifier) CheckAndMaybeAlert(ctx context.Context, current domain.SystemStatus) CheckResult {
	n.mu.Lock()
	defer n.mu.Unlock()

	logger := ctxlog.FromContext(ctx)

	result := CheckResult{Status: current}
	prev := n.lastStatus
	result.Changed = prev != nil && *prev != current

	if result.Changed && status.IsDegradation(*prev, current) {
		result.Notified = true
		if err := n.postAlert(ctx, *prev, current); err != nil {
			logger.Error("failed to post status alert",
				"prev", *prev, "current", current, "error", err)
			messagesTotal.WithLabelValues("alert", "error").Inc()
			result.Error = err.Error()
		} else {
			logger.Info("posted status alert", "prev", *prev, "current", current)
			messagesTotal.WithLabelValues("alert", "ok").Inc()
		}
	}

	n.lastStatus = &current
	return result
}

func (n *Notifier) postAlert(ctx context.Context, prev, current domain.SystemStatus) error {
	settings, err := n.resolveSettings(ctx)
	if err != nil {
		return err
	}

	client := n.clients(settings.BotToken)
	embed := BuildAlertEmbed(prev, current, n.now())
	_, err = client.CreateMessage(ctx, settings.ChannelID, discord.MessagePayload{
		Embeds: []discord.Embed{embed},
	})
	return err
}

// RefreshLiveStatus brings the pinned status message up to date. Within
// minRefreshInterval of the last successful refresh the call is a no-op.
// A message newer than freshnessWindow is edited in place; otherwise a
// fresh message is posted and recorded. The refresh timestamp only
// advances when the platform confirmed the message, so a failed refresh
// is retried by the next trigger.
func (n *Notifier) RefreshLiveStatus(ctx context.Context, services []domain.Service, aggregate domain.SystemStatus) RefreshResult {
	n.mu.Lock()
	defer n.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	now := n.now()

	if !n.lastEmbedUpdateAt.IsZero() && now.Sub(n.lastEmbedUpdateAt) < minRefreshInterval {
		refreshSkippedTotal.Inc()
		return RefreshResult{Skipped: "refreshed recently"}
	}

	settings, err := n.resolveSettings(ctx)
	if err != nil {
		return RefreshResult{Error: err.Error()}
	}
	client := n.clients(settings.BotToken)

	// Presence is cosmetic; a failure never blocks the refresh.
	if err := client.UpdatePresence(ctx, "dnd", presenceText); err != nil {
		logger.Debug("failed to update presence", "error", err)
	}

	embed := BuildLiveStatusEmbed(services, aggregate, now)
	payload := discord.MessagePayload{Embeds: []discord.Embed{embed}}

	latest, err := n.repo.GetLatestStatusMessage(ctx)
	if err != nil && !errors.Is(err, ErrNoStatusMessage) {
		return RefreshResult{Error: fmt.Sprintf("load status message: %v", err)}
	}

	if latest != nil && now.Sub(latest.CreatedAt) < freshnessWindow {
		msg, err := client.EditMessage(ctx, latest.ChannelID, latest.MessageID, payload)
		if err != nil {
			logger.Error("failed to edit status message",
				"message_id", latest.MessageID, "error", err)
			messagesTotal.WithLabelValues("status_edit", "error").Inc()
			return RefreshResult{Error: err.Error()}
		}

		messagesTotal.WithLabelValues("status_edit", "ok").Inc()
		n.lastEmbedUpdateAt = now
		return RefreshResult{Posted: true, MessageID: msg.ID}
	}

	msg, err := client.CreateMessage(ctx, settings.ChannelID, payload)
	if err != nil {
		logger.Error("failed to post status message", "error", err)
		messagesTotal.WithLabelValues("status_post", "error").Inc()
		return RefreshResult{Error: err.Error()}
	}

	record := &domain.StatusMessageRecord{
		MessageID: msg.ID,
		ChannelID: settings.ChannelID,
		Content:   fmt.Sprintf("status: %s", aggregate),
		CreatedAt: now,
	}
	if err := n.repo.CreateStatusMessage(ctx, record); err != nil {
		// The message is live; losing the record only means the next
		// stale refresh posts again instead of editing.
		logger.Error("failed to record status message",
			"message_id", msg.ID, "error", err)
	}

	messagesTotal.WithLabelValues("status_post", "ok").Inc()
	n.lastEmbedUpdateAt = now
	return RefreshResult{Posted: true, MessageID: msg.ID}
}

// PostAnnouncement posts a one-off announcement embed.
func (n *Notifier) PostAnnouncement(ctx context.Context, title, content string, color int) AnnouncementResult {
	n.mu.Lock()
	defer n.mu.Unlock()

	settings, err := n.resolveSettings(ctx)
	if err != nil {
		return AnnouncementResult{Error: err.Error()}
	}

	client := n.clients(settings.BotToken)
	embed := BuildAnnouncementEmbed(title, content, color, n.now())
	msg, err := client.CreateMessage(ctx, settings.ChannelID, discord.MessagePayload{
		Embeds: []discord.Embed{embed},
	})
	if err != nil {
		ctxlog.FromContext(ctx).Error("failed to post announcement", "error", err)
		messagesTotal.WithLabelValues("announcement", "error").Inc()
		return AnnouncementResult{Error: err.Error()}
	}

	messagesTotal.WithLabelValues("announcement", "ok").Inc()
	return AnnouncementResult{Posted: true, MessageID: msg.ID}
}

// VerifyConnection checks the saved credentials against the platform:
// the token resolves to a bot user and the channel is visible.
func (n *Notifier) VerifyConnection(ctx context.Context) error {
	settings, err := n.resolveSettings(ctx)
	if err != nil {
		return err
	}

	client := n.clients(settings.BotToken)
	if _, err := client.CurrentUser(ctx); err != nil {
		return fmt.Errorf("verify bot token: %w", err)
	}
	if _, err := client.GetChannel(ctx, settings.ChannelID); err != nil {
		return fmt.Errorf("verify channel: %w", err)
	}
	return nil
}

// GetSettings returns the saved settings with the token redacted.
func (n *Notifier) GetSettings(ctx context.Context) (*domain.ChatSettings, error) {
	settings, err := n.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chat settings: %w", err)
	}
	if settings.BotToken != "" {
		settings.BotToken = "********"
	}
	return settings, nil
}

// UpdateSettings persists new settings.
func (n *Notifier) UpdateSettings(ctx context.Context, settings *domain.ChatSettings) error {
	settings.UpdatedAt = n.now()
	if err := n.repo.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("save chat settings: %w", err)
	}
	ctxlog.FromContext(ctx).Info("chat settings updated", "enabled", settings.Enabled)
	return nil
}
