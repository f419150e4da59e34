package chat

import (
	"context"
	"testing"
	"time"

	"github.com/statusdeck/statusdeck/internal/chat/discord"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	settings    domain.ChatSettings
	settingsErr error
	latest      *domain.StatusMessageRecord
	created     []*domain.StatusMessageRecord
	createErr   error
}

func (m *mockRepository) GetSettings(_ context.Context) (*domain.ChatSettings, error) {
	if m.settingsErr != nil {
		return nil, m.settingsErr
	}
	settings := m.settings
	return &settings, nil
}

func (m *mockRepository) UpdateSettings(_ context.Context, settings *domain.ChatSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockRepository) GetLatestStatusMessage(_ context.Context) (*domain.StatusMessageRecord, error) {
	if m.latest == nil {
		return nil, ErrNoStatusMessage
	}
	record := *m.latest
	return &record, nil
}

func (m *mockRepository) CreateStatusMessage(_ context.Context, record *domain.StatusMessageRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, record)
	m.latest = record
	return nil
}

type mockClient struct {
	createErr   error
	editErr     error
	presenceErr error

	created      []discord.MessagePayload
	edited       []string
	presences    []string
	nextID       int
	lastChannel  string
	lastEditedCh string
}

func (m *mockClient) CurrentUser(_ context.Context) (*discord.User, error) {
	return &discord.User{ID: "bot", Bot: true}, nil
}

func (m *mockClient) GetChannel(_ context.Context, channelID string) (*discord.Channel, error) {
	return &discord.Channel{ID: channelID}, nil
}

func (m *mockClient) UpdatePresence(_ context.Context, status, _ string) error {
	m.presences = append(m.presences, status)
	return m.presenceErr
}

func (m *mockClient) CreateMessage(_ context.Context, channelID string, payload discord.MessagePayload) (*discord.Message, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	m.created = append(m.created, payload)
	m.lastChannel = channelID
	return &discord.Message{ID: messageID(m.nextID), ChannelID: channelID}, nil
}

func (m *mockClient) EditMessage(_ context.Context, channelID, messageID string, _ discord.MessagePayload) (*discord.Message, error) {
	if m.editErr != nil {
		return nil, m.editErr
	}
	m.edited = append(m.edited, messageID)
	m.lastEditedCh = channelID
	return &discord.Message{ID: messageID, ChannelID: channelID}, nil
}

func messageID(n int) string {
	return "msg-" + string(rune('0'+n))
}

func newTestNotifier(repo *mockRepository, client *mockClient) (*Notifier, *time.Time) {
	if repo.settings == (domain.ChatSettings{}) {
		repo.settings = domain.ChatSettings{
			BotToken:  "token",
			ChannelID: "chan-1",
			Enabled:   true,
		}
	}

	notifier := NewNotifier(repo, func(string) PlatformClient { return client }, domain.ChatSettings{})

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return clock }
	return notifier, &clock
}

func TestCheckAndMaybeAlertDegradation(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{}
	notifier, _ := newTestNotifier(repo, client)
	ctx := context.Background()

	// First observation establishes a baseline without alerting.
	result := notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusOperational)
	assert.False(t, result.Changed)
	assert.False(t, result.Notified)
	assert.Empty(t, client.created)

	result = notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusDegraded)
	assert.True(t, result.Changed)
	assert.True(t, result.Notified)
	assert.Empty(t, result.Error)
	require.Len(t, client.created, 1)
	assert.Equal(t, "chan-1", client.lastChannel)
	require.Len(t, client.created[0].Embeds, 1)
	assert.Equal(t, ColorDegraded, client.created[0].Embeds[0].Color)
}

func TestCheckAndMaybeAlertRecoveryIsSilent(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{}
	notifier, _ := newTestNotifier(repo, client)
	ctx := context.Background()

	notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusOutage)

	result := notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusOperational)
	assert.True(t, result.Changed)
	assert.False(t, result.Notified)
	assert.Empty(t, client.created)
}

func TestCheckAndMaybeAlertUnchangedStatus(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{}
	notifier, _ := newTestNotifier(repo, client)
	ctx := context.Background()

	notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusDegraded)
	client.created = nil

	result := notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusDegraded)
	assert.False(t, result.Changed)
	assert.False(t, result.Notified)
	assert.Empty(t, client.created)
}

func TestCheckAndMaybeAlertPostFailure(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{createErr: &discord.APIError{StatusCode: 502, Retryable: true}}
	notifier, _ := newTestNotifier(repo, client)
	ctx := context.Background()

	notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusOperational)

	result := notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusOutage)
	assert.True(t, result.Notified)
	assert.NotEmpty(t, result.Error)

	// The transition is remembered even though the post failed, so the
	// same status does not alert again.
	client.createErr = nil
	result = notifier.CheckAndMaybeAlert(ctx, domain.SystemStatusOutage)
	assert.False(t, result.Changed)
	assert.False(t, result.Notified)
	assert.Empty(t, client.created)
}

func TestRefreshLiveStatusPostsFirstMessage(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{}
	notifier, _ := newTestNotifier(repo, client)

	services := []domain.Service{
		{Name: "API", Status: domain.ServiceStatusOperational},
	}

	result := notifier.RefreshLiveStatus(context.Background(), services, domain.SystemStatusOperational)
	assert.True(t, result.Posted)
	assert.Empty(t, result.Error)
	require.Len(t, client.created, 1)
	require.Len(t, repo.created, 1)
	assert.Equal(t, result.MessageID, repo.created[0].MessageID)
	assert.Equal(t, []string{"dnd"}, client.presences)
}

func TestRefreshLiveStatusEditsFreshMessage(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{}
	notifier, clock := newTestNotifier(repo, client)

	repo.latest = &domain.StatusMessageRecord{
		ID:        "rec-1",
		MessageID: "msg-old",
		ChannelID: "chan-1",
		CreatedAt: clock.Add(-time.Hour),
	}

	result := notifier.RefreshLiveStatus(context.Background(), nil, domain.SystemStatusOperational)
	assert.True(t, result.Posted)
	assert.Equal(t, "msg-old", result.MessageID)
	assert.Equal(t, []string{"msg-old"}, client.edited)
	assert.Empty(t, client.created)
	assert.Empty(t, repo.created)
}

func TestRefreshLiveStatusRepostsStaleMessage(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{}
	notifier, clock := newTestNotifier(repo, client)

	repo.latest = &domain.StatusMessageRecord{
		ID:        "rec-1",
		MessageID: "msg-old",
		ChannelID: "chan-1",
		CreatedAt: clock.Add(-25 * time.Hour),
	}

	result := notifier.RefreshLiveStatus(context.Background(), nil, domain.SystemStatusOperational)
	assert.True(t, result.Posted)
	assert.NotEqual(t, "msg-old", result.MessageID)
	assert.Empty(t, client.edited)
	require.Len(t, client.created, 1)
	require.Len(t, repo.created, 1)
}

func TestRefreshLiveStatusRateLimited(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{}
	notifier, clock := newTestNotifier(repo, client)
	ctx := context.Background()

	first := notifier.RefreshLiveStatus(ctx, nil, domain.SystemStatusOperational)
	require.True(t, first.Posted)

	*clock = clock.Add(30 * time.Second)
	second := notifier.RefreshLiveStatus(ctx, nil, domain.SystemStatusOperational)
	assert.False(t, second.Posted)
	assert.NotEmpty(t, second.Skipped)
	assert.Len(t, client.created, 1)

	*clock = clock.Add(31 * time.Second)
	third := notifier.RefreshLiveStatus(ctx, nil, domain.SystemStatusOperational)
	assert.True(t, third.Posted)
}

func TestRefreshLiveStatusFailureDoesNotStartCooldown(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{createErr: &discord.APIError{StatusCode: 500, Retryable: true}}
	notifier, _ := newTestNotifier(repo, client)
	ctx := context.Background()

	result := notifier.RefreshLiveStatus(ctx, nil, domain.SystemStatusOperational)
	assert.False(t, result.Posted)
	assert.NotEmpty(t, result.Error)

	// The failed attempt left no cooldown, so an immediate retry goes
	// through once the platform recovers.
	client.createErr = nil
	result = notifier.RefreshLiveStatus(ctx, nil, domain.SystemStatusOperational)
	assert.True(t, result.Posted)
}

func TestRefreshLiveStatusPresenceFailureIsIgnored(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{presenceErr: &discord.APIError{StatusCode: 403}}
	notifier, _ := newTestNotifier(repo, client)

	result := notifier.RefreshLiveStatus(context.Background(), nil, domain.SystemStatusOperational)
	assert.True(t, result.Posted)
	assert.Empty(t, result.Error)
}

func TestRefreshLiveStatusDisabled(t *testing.T) {
	repo := &mockRepository{settings: domain.ChatSettings{
		BotToken:  "token",
		ChannelID: "chan-1",
		Enabled:   false,
	}}
	client := &mockClient{}
	notifier, _ := newTestNotifier(repo, client)

	result := notifier.RefreshLiveStatus(context.Background(), nil, domain.SystemStatusOperational)
	assert.False(t, result.Posted)
	assert.Equal(t, ErrDisabled.Error(), result.Error)
	assert.Empty(t, client.created)
}

func TestRefreshLiveStatusNotConfigured(t *testing.T) {
	repo := &mockRepository{settings: domain.ChatSettings{Enabled: true}}
	client := &mockClient{}
	notifier, _ := newTestNotifier(repo, client)

	result := notifier.RefreshLiveStatus(context.Background(), nil, domain.SystemStatusOperational)
	assert.Equal(t, ErrNotConfigured.Error(), result.Error)
}

func TestFallbackSettingsApply(t *testing.T) {
	repo := &mockRepository{settings: domain.ChatSettings{Enabled: false}}
	client := &mockClient{}

	notifier := NewNotifier(repo, func(string) PlatformClient { return client }, domain.ChatSettings{
		BotToken:  "static-token",
		ChannelID: "static-chan",
		Enabled:   true,
	})
	notifier.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	result := notifier.RefreshLiveStatus(context.Background(), nil, domain.SystemStatusOperational)
	assert.True(t, result.Posted)
	assert.Equal(t, "static-chan", client.lastChannel)
}

func TestPostAnnouncement(t *testing.T) {
	repo := &mockRepository{}
	client := &mockClient{}
	notifier, _ := newTestNotifier(repo, client)

	result := notifier.PostAnnouncement(context.Background(), "Maintenance", "DB upgrade at 02:00 UTC", 0)
	assert.True(t, result.Posted)
	require.Len(t, client.created, 1)
	require.Len(t, client.created[0].Embeds, 1)
	assert.Equal(t, "Maintenance", client.created[0].Embeds[0].Title)
	assert.Equal(t, ColorInfo, client.created[0].Embeds[0].Color)
}

func TestGetSettingsRedactsToken(t *testing.T) {
	repo := &mockRepository{settings: domain.ChatSettings{
		BotToken:  "secret",
		ChannelID: "chan-1",
		Enabled:   true,
	}}
	notifier, _ := newTestNotifier(repo, &mockClient{})

	settings, err := notifier.GetSettings(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "secret", settings.BotToken)
	assert.Equal(t, "chan-1", settings.ChannelID)
}
