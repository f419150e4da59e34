//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/statusdeck/statusdeck/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password-123"
)

var registerAdminOnce sync.Once

// loginAsAdmin ensures the admin account exists and logs the client in.
// The first registered user gets the admin role.
func loginAsAdmin(t *testing.T, client *testutil.Client) {
	t.Helper()

	registerAdminOnce.Do(func() {
		resp, err := client.POST("/api/v1/auth/register", map[string]string{
			"email":    adminEmail,
			"password": adminPassword,
		})
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	client.LoginAs(t, adminEmail, adminPassword)
}

// createService creates a service through the admin API and returns its slug.
func createService(t *testing.T, client *testutil.Client, name, slug, group, status string) {
	t.Helper()

	resp, err := client.POST("/api/v1/services", map[string]interface{}{
		"name":   name,
		"slug":   slug,
		"group":  group,
		"status": status,
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// deleteAllServices clears the services table between tests.
func deleteAllServices(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(context.Background(), "DELETE FROM services")
	require.NoError(t, err)
}

// resetChatState clears persisted chat records so refresh tests start clean.
func resetChatState(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(context.Background(), "DELETE FROM status_messages")
	require.NoError(t, err)
	chatPlatform.Reset()
}

// fakeChatPlatform is an in-memory stand-in for the chat platform REST API.
// It records every message created or edited so tests can assert on the
// mirror's behavior.
type fakeChatPlatform struct {
	server *httptest.Server

	mu        sync.Mutex
	nextID    int
	created   []recordedMessage
	edited    []recordedMessage
	presences []string
}

type recordedMessage struct {
	ChannelID string
	MessageID string
	Body      map[string]interface{}
}

func newFakeChatPlatform() *fakeChatPlatform {
	f := &fakeChatPlatform{}

	r := chi.NewRouter()
	r.Get("/users/@me", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]interface{}{"id": "bot-1", "username": "statusdeck", "bot": true})
	})
	r.Patch("/users/@me/settings", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(req.Body).Decode(&body)
		f.mu.Lock()
		if status, ok := body["status"].(string); ok {
			f.presences = append(f.presences, status)
		}
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/channels/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, map[string]interface{}{"id": chi.URLParam(req, "id"), "name": "status"})
	})
	r.Post("/channels/{id}/messages", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(req.Body).Decode(&body)

		f.mu.Lock()
		f.nextID++
		id := "msg-" + strconv.Itoa(f.nextID)
		f.created = append(f.created, recordedMessage{
			ChannelID: chi.URLParam(req, "id"),
			MessageID: id,
			Body:      body,
		})
		f.mu.Unlock()

		writeJSON(w, map[string]interface{}{"id": id, "channel_id": chi.URLParam(req, "id")})
	})
	r.Patch("/channels/{id}/messages/{mid}", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(req.Body).Decode(&body)

		f.mu.Lock()
		f.edited = append(f.edited, recordedMessage{
			ChannelID: chi.URLParam(req, "id"),
			MessageID: chi.URLParam(req, "mid"),
			Body:      body,
		})
		f.mu.Unlock()

		writeJSON(w, map[string]interface{}{
			"id":         chi.URLParam(req, "mid"),
			"channel_id": chi.URLParam(req, "id"),
		})
	})

	f.server = httptest.NewServer(r)
	return f
}

func (f *fakeChatPlatform) URL() string { return f.server.URL }

func (f *fakeChatPlatform) Close() { f.server.Close() }

func (f *fakeChatPlatform) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = nil
	f.edited = nil
	f.presences = nil
}

func (f *fakeChatPlatform) CreatedMessages() []recordedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedMessage(nil), f.created...)
}

func (f *fakeChatPlatform) EditedMessages() []recordedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedMessage(nil), f.edited...)
}

func (f *fakeChatPlatform) Presences() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.presences...)
}

// embedTitles extracts embed titles from a recorded message payload.
func embedTitles(msg recordedMessage) []string {
	embeds, ok := msg.Body["embeds"].([]interface{})
	if !ok {
		return nil
	}
	titles := make([]string, 0, len(embeds))
	for _, e := range embeds {
		if m, ok := e.(map[string]interface{}); ok {
			if title, ok := m["title"].(string); ok {
				titles = append(titles, title)
			}
		}
	}
	return titles
}

// embedText flattens a recorded message's embeds into a single string
// for substring assertions.
func embedText(msg recordedMessage) string {
	var b strings.Builder
	embeds, ok := msg.Body["embeds"].([]interface{})
	if !ok {
		return ""
	}
	for _, e := range embeds {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		for _, key := range []string{"title", "description"} {
			if s, ok := m[key].(string); ok {
				b.WriteString(s)
				b.WriteString("\n")
			}
		}
		if fields, ok := m["fields"].([]interface{}); ok {
			for _, fi := range fields {
				if fm, ok := fi.(map[string]interface{}); ok {
					fmt.Fprintf(&b, "%v\n%v\n", fm["name"], fm["value"])
				}
			}
		}
	}
	return b.String()
}

// decodeBody asserts a 200 response and decodes its JSON body into v.
func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
