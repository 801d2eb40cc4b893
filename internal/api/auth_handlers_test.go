package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/service"
)

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "alice",
		"password": "secret1",
		"email":    "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[domain.User](t, resp)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "success", env.Message)
	assert.Equal(t, "alice", env.Data.Username)
	assert.NotZero(t, env.Data.ID)
	assert.NotContains(t, resp.Body.String(), "password")
}

func TestRegister_Duplicate(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "alice",
		"password": "secret1",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeEnvelope[any](t, resp).Error)
}

func TestRegister_Validation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "bob",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, 400, env.Code)
	assert.Equal(t, "VALIDATION", env.Error)
}

func TestRegister_MissingFieldIsValidationError(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{"username": "bob"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, "VALIDATION", env.Error)
	assert.NotEmpty(t, env.Details)
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "ALICE@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[service.LoginResponse](t, resp)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.NotEmpty(t, env.Data.RefreshToken)
	assert.Greater(t, env.Data.ExpireTime, int64(0))
	assert.Equal(t, "alice", env.Data.User.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": "alice",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope[any](t, resp).Error)
}

func TestRefreshAndLogout(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.Code)
	login := decodeEnvelope[service.LoginResponse](t, resp).Data

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	refreshed := decodeEnvelope[service.RefreshResponse](t, resp).Data
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token cannot be used as a refresh token.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": login.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/auth/logout", bearer(login.AccessToken), map[string]any{
		"refresh_token": login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, "logged out", env.Message)

	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/v1/users/me", bearer(login.AccessToken)).Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "TOKEN_REVOKED", decodeEnvelope[any](t, resp).Error)

	// The separately refreshed access token is still valid.
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/users/me", bearer(refreshed.AccessToken)).Code)
}

func TestLogout_WithoutBody(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/auth/logout", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/v1/users/me", bearer(token)).Code)
}

func TestLogout_RequiresToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/logout")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
