//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"school-auth/internal/config"
	"school-auth/internal/database"
	"school-auth/internal/handler"
	"school-auth/internal/middleware"
	"school-auth/internal/repository"
	"school-auth/internal/router"
	"school-auth/internal/service"
)

const (
	adminEmail    = "root@school.edu"
	adminPassword = "root-password-1"
)

// newServer wires the full stack against the database in TEST_DATABASE_URL.
// The users table is truncated first, so point it at a throwaway database.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE users`)
	require.NoError(t, err)

	cfg := &config.Config{
		RequestTimeout:    10 * time.Second,
		JWTSecret:         "integration-secret",
		JWTValidity:       24 * time.Hour,
		AuthLookupTimeout: 5 * time.Second,
		PublicPaths:       config.DefaultPublicPaths,
		BcryptCost:        4,
		CORSOrigins:       []string{"*"},
		RateLimitRPM:      1000,
		AuthRateLimitRPM:  1000,
	}

	users := repository.NewUserRepository(db.Pool)
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTValidity)
	require.NoError(t, err)
	account := service.NewAuthService(users, tokens, cfg.BcryptCost)
	require.NoError(t, account.EnsureBootstrapAdmin(ctx, adminEmail, adminPassword))

	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)
	public, err := middleware.NewPublicPaths(cfg.PublicPaths)
	require.NoError(t, err)
	auth := middleware.NewAuthMiddleware(tokens, service.NewPrincipalService(users, cfg.AuthLookupTimeout), public, middleware.NewResponder(metrics), metrics)

	server := httptest.NewServer(router.New(cfg, auth, metrics, registry, router.Handlers{
		Auth:   handler.NewAuthHandler(account),
		User:   handler.NewUserHandler(account),
		System: handler.NewSystemHandler(db, users),
		Docs:   handler.NewDocsHandler(router.DocsURL()),
	}))
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, method string, path string, token string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func login(t *testing.T, server *httptest.Server, email string, password string) string {
	t.Helper()

	status, body := call(t, server, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.NotEmpty(t, env.Data.Token)
	return env.Data.Token
}
