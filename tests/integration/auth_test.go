//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/statusdeck/statusdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	client := newTestClient(t)
	loginAsAdmin(t, client)

	// Later registrations get the viewer role.
	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"email":    "viewer@example.com",
		"password": "viewer-password-1",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &registered)
	assert.Equal(t, "viewer", registered.Data.Role)

	// Duplicate registration conflicts.
	resp, err = client.POST("/api/v1/auth/register", map[string]string{
		"email":    "viewer@example.com",
		"password": "viewer-password-1",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	viewer := newTestClient(t)
	viewer.LoginAs(t, "viewer@example.com", "viewer-password-1")

	var me struct {
		Data struct {
			Email string `json:"email"`
		} `json:"data"`
	}
	resp, err = viewer.GET("/api/v1/me")
	require.NoError(t, err)
	decodeBody(t, resp, &me)
	assert.Equal(t, "viewer@example.com", me.Data.Email)

	// Viewers cannot use the admin surface.
	resp, err = viewer.POST("/api/v1/services", map[string]string{
		"name": "Nope",
		"slug": "nope",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	client := newTestClient(t)
	loginAsAdmin(t, client)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    adminEmail,
		"password": "wrong-password",
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRotation(t *testing.T) {
	client := newTestClient(t)
	loginAsAdmin(t, client)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	})
	require.NoError(t, err)
	var login struct {
		Data struct {
			Tokens struct {
				RefreshToken string `json:"refresh_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	decodeBody(t, resp, &login)
	require.NotEmpty(t, login.Data.Tokens.RefreshToken)

	resp, err = client.POST("/api/v1/auth/refresh", map[string]string{
		"refresh_token": login.Data.Tokens.RefreshToken,
	})
	require.NoError(t, err)
	var refreshed struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	decodeBody(t, resp, &refreshed)
	require.NotEmpty(t, refreshed.Data.AccessToken)

	// The old refresh token is spent.
	resp, err = client.POST("/api/v1/auth/refresh", map[string]string{
		"refresh_token": login.Data.Tokens.RefreshToken,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}
