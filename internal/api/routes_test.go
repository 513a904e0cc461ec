package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"memebot/internal/bot"
	"memebot/internal/config"
	"memebot/internal/models"
	"memebot/pkg/crypto"
)

func testDeps(t *testing.T, tokenHash string) Dependencies {
	t.Helper()

	store := bot.NewPositionStore(4, zap.NewNop())
	bl := bot.NewBlacklist()
	bl.Add(models.WsolMint, "SOL", models.BlacklistReasonManual, time.Hour, time.Now())

	return Dependencies{
		Config: &config.Config{
			Security: config.SecurityConfig{APITokenHash: tokenHash},
		},
		Logger:    zap.NewNop(),
		Store:     store,
		Blacklist: bl,
	}
}

func TestSetupRoutesHealth(t *testing.T) {
	router := SetupRoutes(testDeps(t, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestSetupRoutesMetrics(t *testing.T) {
	router := SetupRoutes(testDeps(t, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rec.Code)
	}
}

func TestSetupRoutesNilDepsSkipped(t *testing.T) {
	// Engine не задан - endpoints движка не регистрируются
	router := SetupRoutes(testDeps(t, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bot/status", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("bot/status without engine = %d, want 404", rec.Code)
	}

	// Blacklist задан - endpoint работает
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/blacklist", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("blacklist status = %d, want 200", rec.Code)
	}
}

func TestSetupRoutesAuthProtectsAPI(t *testing.T) {
	hash, err := crypto.HashPassword("token123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	router := SetupRoutes(testDeps(t, hash))

	// Без токена - 401
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/blacklist", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("blacklist without token = %d, want 401", rec.Code)
	}

	// С токеном - 200
	req := httptest.NewRequest(http.MethodGet, "/api/v1/blacklist", nil)
	req.Header.Set("Authorization", "Bearer token123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("blacklist with token = %d, want 200", rec.Code)
	}

	// Health остаётся открытым
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health with auth enabled = %d, want 200", rec.Code)
	}
}
