package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbjournal/orb-server/internal/auth"
	domainerrors "github.com/orbjournal/orb-server/internal/errors"
	"github.com/orbjournal/orb-server/internal/store/sqlite"
	"github.com/orbjournal/orb-server/internal/validation"
)

// setupAuthTest creates an auth service backed by a temporary SQLite store.
func setupAuthTest(t *testing.T) *AuthService {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sessionService := NewSessionService(s, tokenService, testLogger())
	return NewAuthService(s, tokenService, sessionService, validation.New(), testLogger())
}

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Email:       "user@example.com",
		Password:    "CorrectHorse9!",
		DisplayName: "Example User",
	}
}

func TestAuthService_Register(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", resp.User.Email)
	assert.Equal(t, "Example User", resp.User.DisplayName)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int((15 * time.Minute).Seconds()), resp.ExpiresIn)

	// The access token round-trips through verification.
	user, claims, err := svc.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	// Same address with different case still collides.
	req := validRegisterRequest()
	req.Email = "USER@example.com"
	_, err = svc.Register(ctx, req)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing email", func(r *RegisterRequest) { r.Email = "" }},
		{"malformed email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"missing password", func(r *RegisterRequest) { r.Password = "" }},
		{"short password", func(r *RegisterRequest) { r.Password = "tiny" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(&req)

			_, err := svc.Register(ctx, req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "user@example.com",
		Password: "CorrectHorse9!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// Lookup ignores email case.
	_, err = svc.Login(ctx, LoginRequest{
		Email:    "User@Example.com",
		Password: "CorrectHorse9!",
	})
	require.NoError(t, err)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	// Wrong password and unknown user produce the identical error, so a
	// caller cannot probe which addresses are registered.
	_, wrongPw := svc.Login(ctx, LoginRequest{
		Email:    "user@example.com",
		Password: "WrongHorse9!",
	})
	require.Error(t, wrongPw)

	_, unknown := svc.Login(ctx, LoginRequest{
		Email:    "ghost@example.com",
		Password: "CorrectHorse9!",
	})
	require.Error(t, unknown)

	var e1, e2 *domainerrors.Error
	require.ErrorAs(t, wrongPw, &e1)
	require.ErrorAs(t, unknown, &e2)
	assert.Equal(t, domainerrors.CodeInvalidCredentials, e1.Code)
	assert.Equal(t, e1.Code, e2.Code)
	assert.Equal(t, e1.Message, e2.Message)
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, registered.SessionID, refreshed.SessionID)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The session rotated away from the old token.
	_, err = svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: registered.RefreshToken})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeTokenExpired, domainErr.Code)

	// The new token still works.
	_, err = svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: refreshed.RefreshToken})
	require.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	svc := setupAuthTest(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, registered.SessionID))

	_, err = svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: registered.RefreshToken})
	require.Error(t, err)

	// Logging out a dead session again is not an error.
	require.NoError(t, svc.Logout(ctx, registered.SessionID))
}

func TestAuthService_VerifyAccessToken_Garbage(t *testing.T) {
	svc := setupAuthTest(t)

	_, _, err := svc.VerifyAccessToken(context.Background(), "v4.local.garbage")
	require.Error(t, err)
}
