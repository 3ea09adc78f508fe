package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/txnhub/txnhub/internal/config"
	"github.com/txnhub/txnhub/internal/db"
	apphttp "github.com/txnhub/txnhub/internal/http"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password-123"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		Port:                0,
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		AdminEmail:          adminEmail,
		AdminPassword:       adminPassword,
	}
}

// setupRouter needs a reachable Postgres; the suite is skipped when
// TEST_DB_DSN is not set.
func setupRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping integration test")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := testConfig()

	resetDB(t, pool)

	if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
		t.Fatalf("Failed to seed admin: %v", err)
	}

	return apphttp.NewRouter(logger, pool, cfg, nil, nil), pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE transactions, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// helpers

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func doLogin(router http.Handler, username, password string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustLogin(t *testing.T, router http.Handler, username, password string) string {
	t.Helper()

	w := doLogin(router, username, password)

	if w.Code != http.StatusOK {
		t.Fatalf("login(%s) got status %d, want %d, body=%s", username, w.Code, http.StatusOK, w.Body.String())
	}

	var token tokenResponse

	mustReadJSON(t, w, &token)

	if token.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want %q", token.TokenType, "bearer")
	}

	if strings.TrimSpace(token.AccessToken) == "" {
		t.Fatalf("expected access_token, got empty")
	}

	return token.AccessToken
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func TestAuthIntegration_LoginAndWhoami(t *testing.T) {
	router, _ := setupRouter(t)

	token := mustLogin(t, router, adminEmail, adminPassword)

	w := doRequest(router, http.MethodGet, "/whoami", "", token)

	if w.Code != http.StatusOK {
		t.Fatalf("whoami got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	mustReadJSON(t, w, &me)

	if me.Email != adminEmail {
		t.Errorf("email = %q, want %q", me.Email, adminEmail)
	}

	if me.Role != "admin" {
		t.Errorf("role = %q, want %q", me.Role, "admin")
	}

	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("whoami leaks password material: %s", w.Body.String())
	}
}

func TestAuthIntegration_InvalidCredentialsAreUniform(t *testing.T) {
	router, _ := setupRouter(t)

	wrongPassword := doLogin(router, adminEmail, "not-the-password")
	unknownEmail := doLogin(router, "nobody@example.com", "whatever123")

	for name, w := range map[string]*httptest.ResponseRecorder{
		"wrong_password": wrongPassword,
		"unknown_email":  unknownEmail,
	} {
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s got status %d, want %d, body=%s", name, w.Code, http.StatusUnauthorized, w.Body.String())
		}
	}

	// the two denials must be indistinguishable
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("denial bodies differ: %q vs %q", wrongPassword.Body.String(), unknownEmail.Body.String())
	}

	var e apiErrorResponse

	mustReadJSON(t, wrongPassword, &e)

	if e.Error.Code != "invalid_credentials" {
		t.Errorf("error code = %q, want %q", e.Error.Code, "invalid_credentials")
	}
}

func TestAuthIntegration_WhoamiRequiresToken(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/whoami", "", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("whoami(no token) got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
}

func TestHealthIntegration(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("health got status %d, want 200", w.Code)
	}

	if strings.TrimSpace(w.Body.String()) != "OK" {
		t.Errorf("health body = %q, want OK", w.Body.String())
	}
}
