//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChatCommands exercises the bot command surface end to end against
// the fake chat platform. The notifier carries process-lifetime state
// (last status, refresh cooldown), so the scenario runs as ordered
// subtests on one shared client.
func TestChatCommands(t *testing.T) {
	client := newTestClient(t)
	loginAsAdmin(t, client)
	deleteAllServices(t)
	resetChatState(t)

	createService(t, client, "API", "chat-api", "Core", "operational")
	createService(t, client, "Web", "chat-web", "Core", "operational")

	t.Run("malformed body is rejected", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", nil)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", map[string]string{"action": "reboot-everything"})
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("check admin", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", map[string]string{
			"action": "check-admin",
			"token":  client.Token,
		})
		require.NoError(t, err)
		var result struct {
			IsAdmin bool `json:"is_admin"`
		}
		decodeBody(t, resp, &result)
		assert.True(t, result.IsAdmin)

		resp, err = client.POST("/api/v1/chat/commands", map[string]string{
			"action": "check-admin",
			"token":  "garbage",
		})
		require.NoError(t, err)
		decodeBody(t, resp, &result)
		assert.False(t, result.IsAdmin)
	})

	t.Run("check status", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", map[string]string{"action": "check-status"})
		require.NoError(t, err)
		var result struct {
			Status   string           `json:"status"`
			Services []map[string]any `json:"services"`
		}
		decodeBody(t, resp, &result)
		assert.Equal(t, "operational", result.Status)
		assert.Len(t, result.Services, 2)
	})

	t.Run("baseline system check does not alert", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", map[string]string{"action": "check-system-status"})
		require.NoError(t, err)
		var result struct {
			Status   string `json:"status"`
			Changed  bool   `json:"changed"`
			Notified bool   `json:"notified"`
		}
		decodeBody(t, resp, &result)
		assert.Equal(t, "operational", result.Status)
		assert.False(t, result.Changed)
		assert.False(t, result.Notified)
		assert.Empty(t, chatPlatform.CreatedMessages())
	})

	t.Run("degradation alerts and posts live status", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", map[string]string{
			"action":  "update-status",
			"service": "chat-api",
			"status":  "major_outage",
		})
		require.NoError(t, err)
		var result struct {
			Check struct {
				Changed  bool `json:"changed"`
				Notified bool `json:"notified"`
			} `json:"check"`
			Refresh struct {
				Posted    bool   `json:"posted"`
				MessageID string `json:"message_id"`
			} `json:"refresh"`
		}
		decodeBody(t, resp, &result)
		assert.True(t, result.Check.Changed)
		assert.True(t, result.Check.Notified)
		assert.True(t, result.Refresh.Posted)

		created := chatPlatform.CreatedMessages()
		require.Len(t, created, 2)

		var alertSeen, liveSeen bool
		for _, msg := range created {
			assert.Equal(t, "chan-test", msg.ChannelID)
			text := embedText(msg)
			if strings.Contains(text, "System status changed") {
				alertSeen = true
				assert.Contains(t, text, "Outage")
			}
			if strings.Contains(text, "System Status") && strings.Contains(text, "**API**") {
				liveSeen = true
				assert.Contains(t, text, "Core")
			}
		}
		assert.True(t, alertSeen, "expected a change alert")
		assert.True(t, liveSeen, "expected a live status message")

		presences := chatPlatform.Presences()
		require.NotEmpty(t, presences)
		assert.Equal(t, "dnd", presences[len(presences)-1])
	})

	t.Run("refresh cooldown skips the next refresh", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", map[string]string{"action": "auto-update-embed"})
		require.NoError(t, err)
		var result struct {
			Posted  bool   `json:"posted"`
			Skipped string `json:"skipped"`
		}
		decodeBody(t, resp, &result)
		assert.False(t, result.Posted)
		assert.NotEmpty(t, result.Skipped)
	})

	t.Run("recovery is silent", func(t *testing.T) {
		before := len(chatPlatform.CreatedMessages())

		resp, err := client.POST("/api/v1/chat/commands", map[string]string{
			"action":  "update-status",
			"service": "chat-api",
			"status":  "operational",
		})
		require.NoError(t, err)
		var result struct {
			Check struct {
				Changed  bool `json:"changed"`
				Notified bool `json:"notified"`
			} `json:"check"`
		}
		decodeBody(t, resp, &result)
		assert.True(t, result.Check.Changed)
		assert.False(t, result.Check.Notified)
		assert.Len(t, chatPlatform.CreatedMessages(), before)
	})

	t.Run("send announcement", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", map[string]string{
			"action":  "send-announcement",
			"title":   "Planned maintenance",
			"content": "Database upgrade at 02:00 UTC.",
		})
		require.NoError(t, err)
		var result struct {
			Posted    bool   `json:"posted"`
			MessageID string `json:"message_id"`
		}
		decodeBody(t, resp, &result)
		assert.True(t, result.Posted)
		assert.NotEmpty(t, result.MessageID)

		created := chatPlatform.CreatedMessages()
		require.NotEmpty(t, created)
		assert.Contains(t, embedTitles(created[len(created)-1]), "Planned maintenance")
	})

	t.Run("unknown service reports error in body", func(t *testing.T) {
		resp, err := client.POST("/api/v1/chat/commands", map[string]string{
			"action":  "update-status",
			"service": "nope",
			"status":  "degraded",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result struct {
			Error string `json:"error"`
		}
		decodeBody(t, resp, &result)
		assert.NotEmpty(t, result.Error)
	})
}

func TestChatSettings(t *testing.T) {
	client := newTestClient(t)
	loginAsAdmin(t, client)

	resp, err := client.GET("/api/v1/chat/settings")
	require.NoError(t, err)
	var settings struct {
		Data struct {
			BotToken  string `json:"bot_token"`
			ChannelID string `json:"channel_id"`
			Enabled   bool   `json:"enabled"`
		} `json:"data"`
	}
	decodeBody(t, resp, &settings)

	update := map[string]interface{}{
		"bot_token":  "updated-token",
		"channel_id": "chan-updated",
		"enabled":    true,
	}
	resp, err = client.PUT("/api/v1/chat/settings", update)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.GET("/api/v1/chat/settings")
	require.NoError(t, err)
	decodeBody(t, resp, &settings)
	assert.Equal(t, "chan-updated", settings.Data.ChannelID)
	assert.True(t, settings.Data.Enabled)
	// The token never comes back in the clear.
	assert.NotEqual(t, "updated-token", settings.Data.BotToken)

	// Restore the fake platform settings for other tests.
	resp, err = client.PUT("/api/v1/chat/settings", map[string]interface{}{
		"bot_token":  "",
		"channel_id": "",
		"enabled":    false,
	})
	require.NoError(t, err)
	_ = resp.Body.Close()

	// Settings routes require authentication.
	anon := newTestClient(t)
	resp, err = anon.GET("/api/v1/chat/settings")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
