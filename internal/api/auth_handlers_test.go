package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":       "new@test.com",
		"password":    "CorrectHorse9!",
		"displayName": "Newcomer",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body AuthResponse
	require.NoError(t, unmarshalBody(resp, &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.NotEmpty(t, body.RefreshToken)
	assert.NotEmpty(t, body.SessionID)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, "new@test.com", body.User.Email)
	assert.Equal(t, "Newcomer", body.User.DisplayName)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "taken@test.com")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "taken@test.com",
		"password": "CorrectHorse9!",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestRegister_Validation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"missing email", map[string]any{"password": "CorrectHorse9!"}},
		{"bad email", map[string]any{"email": "not-an-email", "password": "CorrectHorse9!"}},
		{"short password", map[string]any{"email": "short@test.com", "password": "tiny"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/register", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		})
	}
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "login@test.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@test.com",
		"password": "CorrectHorse9!",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body AuthResponse
	require.NoError(t, unmarshalBody(resp, &body))
	assert.NotEmpty(t, body.AccessToken)

	// Email lookup is case-insensitive.
	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "LOGIN@test.com",
		"password": "CorrectHorse9!",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	// Wrong password and unknown user both come back as 401 with the same message.
	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@test.com",
		"password": "WrongHorse9!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "nobody@test.com",
		"password": "CorrectHorse9!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "refresh@test.com",
		"password": "CorrectHorse9!",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var registered AuthResponse
	require.NoError(t, unmarshalBody(resp, &registered))

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refreshToken": registered.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var refreshed AuthResponse
	require.NoError(t, unmarshalBody(resp, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, registered.SessionID, refreshed.SessionID)

	// The old refresh token is spent.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refreshToken": registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "logout@test.com",
		"password": "CorrectHorse9!",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var registered AuthResponse
	require.NoError(t, unmarshalBody(resp, &registered))

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"sessionId": registered.SessionID,
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	// Refresh no longer works for the revoked session.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refreshToken": registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetCurrentUser(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerTestUser(t, "me@test.com")

	resp := ts.api.Get("/api/v1/users/me", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var user UserResponse
	require.NoError(t, unmarshalBody(resp, &user))
	assert.Equal(t, "me@test.com", user.Email)

	// No token and garbage tokens are both 401.
	resp = ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/users/me", "Authorization: Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, unmarshalBody(resp, &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
}
