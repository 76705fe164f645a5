package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/orbjournal/orb-server/internal/auth"
	"github.com/orbjournal/orb-server/internal/service"
	"github.com/orbjournal/orb-server/internal/store/sqlite"
	"github.com/orbjournal/orb-server/internal/validation"
)

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer builds a server backed by a throwaway SQLite database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(authKey, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	validator := validation.New()
	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, validator, logger)
	orbService := service.NewOrbService(st, validator, logger)

	services := &Services{
		Auth:    authService,
		Session: sessionService,
		Orb:     orbService,
	}

	router := chi.NewRouter()
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Orb Journal API Test", "1.0.0")
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: NewRateLimiter(100, time.Minute, 50),
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerOrbRoutes()

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, api),
	}
}

// registerTestUser registers a user and returns a bearer token.
func (ts *testServer) registerTestUser(t *testing.T, email string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":       email,
		"password":    "CorrectHorse9!",
		"displayName": "Test User",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var body AuthResponse
	require.NoError(t, unmarshalBody(resp, &body))
	require.NotEmpty(t, body.AccessToken)

	return body.AccessToken
}

func unmarshalBody(resp *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(resp.Body.Bytes(), v)
}
