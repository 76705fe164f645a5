package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbjournal/orb-server/internal/domain"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("CorrectHorse9!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword(hash, "CorrectHorse9!")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "WrongHorse9!")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	h1, err := HashPassword("CorrectHorse9!")
	require.NoError(t, err)
	h2, err := HashPassword("CorrectHorse9!")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHashPassword_RejectsOversized(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", maxPasswordLength+1))
	assert.Error(t, err)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("not-a-hash", "whatever")
	assert.Error(t, err)
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	dir := t.TempDir()

	key1, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key1, 32)

	// A second load returns the same key.
	key2, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	// A different directory yields a different key.
	key3, err := LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3)
}

func newTestTokenService(t *testing.T, accessDuration time.Duration) *TokenService {
	t.Helper()

	key, err := LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)

	svc, err := NewTokenService(key, accessDuration, 30*24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)

	user := &domain.User{ID: "user-abc", Email: "user@example.com"}
	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-abc", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestAccessToken_Expired(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)

	token, err := svc.GenerateAccessToken(&domain.User{ID: "user-abc", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestAccessToken_WrongKey(t *testing.T) {
	issuer := newTestTokenService(t, 15*time.Minute)
	verifier := newTestTokenService(t, 15*time.Minute)

	token, err := issuer.GenerateAccessToken(&domain.User{ID: "user-abc", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestNewTokenService_RejectsBadKeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestRefreshTokens(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)

	tok1, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	tok2, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok2)

	// Hashing is deterministic and never yields the raw token.
	assert.Equal(t, HashRefreshToken(tok1), HashRefreshToken(tok1))
	assert.NotEqual(t, tok1, HashRefreshToken(tok1))
	assert.NotEqual(t, HashRefreshToken(tok1), HashRefreshToken(tok2))
}
