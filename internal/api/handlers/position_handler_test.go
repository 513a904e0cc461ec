package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"memebot/internal/bot"
	"memebot/internal/models"
)

func newTestStore(t *testing.T, positions ...*models.Position) *bot.PositionStore {
	t.Helper()
	store := bot.NewPositionStore(10, zap.NewNop())
	for _, p := range positions {
		if !store.Open(p) {
			t.Fatalf("failed to open position %s", p.Address)
		}
	}
	return store
}

func openPosition(address string) *models.Position {
	return &models.Position{
		Address:    address,
		Symbol:     "DOG",
		EntryPrice: 1.0,
		PeakPrice:  1.0,
		Quantity:   100,
		SizeQuote:  0.5,
		Tier:       models.TierAPlus,
		State:      models.PositionStateUnarmed,
		OpenedAt:   time.Now(),
	}
}

func TestPositionHandlerList(t *testing.T) {
	store := newTestStore(t, openPosition(models.WsolMint))
	h := NewPositionHandler(store, &fakeEngine{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/positions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("List status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), models.WsolMint) {
		t.Errorf("body missing position address: %s", rec.Body.String())
	}
}

func TestPositionHandlerGet(t *testing.T) {
	store := newTestStore(t, openPosition(models.WsolMint))
	h := NewPositionHandler(store, &fakeEngine{}, zap.NewNop())

	tests := []struct {
		name       string
		address    string
		wantStatus int
	}{
		{"found", models.WsolMint, http.StatusOK},
		{"not found", "MintMissing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/positions/"+tt.address, nil)
			req = mux.SetURLVars(req, map[string]string{"address": tt.address})

			rec := httptest.NewRecorder()
			h.Get(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Get status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestPositionHandlerClose(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		closeErr   error
		withPos    bool
		wantStatus int
		wantCalls  int
	}{
		{"success", models.WsolMint, nil, true, http.StatusOK, 1},
		{"invalid address", "not-base58!!", nil, false, http.StatusBadRequest, 0},
		{"not found", models.WsolMint, nil, false, http.StatusNotFound, 0},
		{"execution failed", models.WsolMint, errStore, true, http.StatusBadGateway, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var store *bot.PositionStore
			if tt.withPos {
				store = newTestStore(t, openPosition(tt.address))
			} else {
				store = newTestStore(t)
			}

			engine := &fakeEngine{closeErr: tt.closeErr}
			h := NewPositionHandler(store, engine, zap.NewNop())

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/positions/"+tt.address, nil)
			req = mux.SetURLVars(req, map[string]string{"address": tt.address})

			rec := httptest.NewRecorder()
			h.Close(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Close status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if len(engine.closeCalls) != tt.wantCalls {
				t.Errorf("close calls = %d, want %d", len(engine.closeCalls), tt.wantCalls)
			}
		})
	}
}
