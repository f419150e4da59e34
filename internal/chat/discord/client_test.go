package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL:   server.URL,
		Token:     "test-token",
		RateLimit: 1000,
	})
	return client, server
}

func TestCurrentUser(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/@me", r.URL.Path)
		assert.Equal(t, "Bot test-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(User{ID: "bot-1", Username: "statusbot", Bot: true})
	})
	defer server.Close()

	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bot-1", user.ID)
	assert.True(t, user.Bot)
}

func TestCreateMessage(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/chan-1/messages", r.URL.Path)

		var payload MessagePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Embeds, 1)
		assert.Equal(t, "System Status", payload.Embeds[0].Title)

		_ = json.NewEncoder(w).Encode(Message{ID: "msg-1", ChannelID: "chan-1"})
	})
	defer server.Close()

	msg, err := client.CreateMessage(context.Background(), "chan-1", MessagePayload{
		Embeds: []Embed{{Title: "System Status"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msg.ID)
}

func TestEditMessage(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/channels/chan-1/messages/msg-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Message{ID: "msg-1", ChannelID: "chan-1"})
	})
	defer server.Close()

	msg, err := client.EditMessage(context.Background(), "chan-1", "msg-1", MessagePayload{})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msg.ID)
}

func TestServerErrorIsRetryable(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.True(t, apiErr.IsRetryable())
}

func TestClientErrorIsPermanent(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Missing Access"}`))
	})
	defer server.Close()

	_, err := client.GetChannel(context.Background(), "chan-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.False(t, apiErr.IsRetryable())
}

func TestRateLimitedIsRetryable(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	err := client.UpdatePresence(context.Background(), "dnd", "watching")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsRetryable())
}
