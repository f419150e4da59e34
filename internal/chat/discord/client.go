// Package discord provides a minimal client for the chat platform's REST API,
// covering the calls the status notifier needs.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://discord.com/api/v10"
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 5
)

// Config holds client configuration.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // requests per second
}

// Client talks to the chat platform's REST API with a bot token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateLimit <= 0 {
		config.RateLimit = defaultRateLimit
	}

	return &Client{
		baseURL: config.BaseURL,
		token:   config.Token,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), int(config.RateLimit)+1),
	}
}

// CurrentUser fetches the bot's own identity.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/@me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetChannel fetches a channel, verifying the bot can see it.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	var channel Channel
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID, nil, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// UpdatePresence sets the bot's presence and custom status text.
func (c *Client) UpdatePresence(ctx context.Context, status, text string) error {
	payload := presencePayload{Status: status}
	if text != "" {
		payload.CustomStatus = &customStatus{Text: text}
	}
	return c.do(ctx, http.MethodPatch, "/users/@me/settings", payload, nil)
}

// CreateMessage posts a new message to a channel.
func (c *Client) CreateMessage(ctx context.Context, channelID string, payload MessagePayload) (*Message, error) {
	var msg Message
	if err := c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessage edits an existing message in place.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, payload MessagePayload) (*Message, error) {
	var msg Message
	path := "/channels/" + channelID + "/messages/" + messageID
	if err := c.do(ctx, http.MethodPatch, path, payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("send request: %v", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	slog.Debug("chat api call", "method", method, "path", path, "status", resp.StatusCode)

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// APIError is a structured error from the chat platform.
type APIError struct {
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("chat api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("chat api error: %s", e.Message)
}

// IsRetryable reports whether the failure is temporary.
func (e *APIError) IsRetryable() bool { return e.Retryable }

func newAPIError(status int, body []byte) *APIError {
	msg := string(body)
	if len(msg) > 512 {
		msg = msg[:512]
	}

	switch {
	case status == http.StatusTooManyRequests:
		return &APIError{StatusCode: status, Message: "rate limited", Retryable: true}
	case status >= 500:
		return &APIError{StatusCode: status, Message: msg, Retryable: true}
	default:
		return &APIError{StatusCode: status, Message: msg, Retryable: false}
	}
}
