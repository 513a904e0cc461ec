package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"memebot/internal/config"
	"memebot/internal/models"
)

func gateStrategy() config.StrategyConfig {
	return config.StrategyConfig{
		ProbeNotional: 0.01,
		ProbeCooldown: 24 * time.Hour,
		AllowedVenues: []string{"Raydium", "Orca"},
		RouteCheck:    config.RouteCheckStrict,
	}
}

func newTestGate(strategy config.StrategyConfig, store *PositionStore, bl *Blacklist, exec Executor) *EntryGate {
	return NewEntryGate(strategy, store, bl, exec, zap.NewNop())
}

func gateCandidate() models.Candidate {
	return models.Candidate{Address: "mintX", Symbol: "XXX", PriceUsd: 1.0}
}

// TestEntryGate_Admit проверяет допуск чистого кандидата
func TestEntryGate_Admit(t *testing.T) {
	store := newTestStore(4)
	exec := newFakeExecutor(10)
	gate := newTestGate(gateStrategy(), store, NewBlacklist(), exec)

	if err := gate.Admit(context.Background(), gateCandidate(), t0); err != nil {
		t.Fatalf("Admit() error: %v", err)
	}

	// Зонд котирует обе стороны
	if got := exec.quoteCount(); got != 2 {
		t.Errorf("probe quote count = %d, want 2 (round-trip)", got)
	}
	// Зонд ничего не исполняет
	if got := exec.swapCount(); got != 0 {
		t.Errorf("probe executed %d swaps, want 0", got)
	}
}

// TestEntryGate_DenyOpenPosition проверяет отказ при открытой позиции
func TestEntryGate_DenyOpenPosition(t *testing.T) {
	store := newTestStore(4)
	store.Open(testPosition("mintX", 1.0))
	exec := newFakeExecutor(10)
	gate := newTestGate(gateStrategy(), store, NewBlacklist(), exec)

	err := gate.Admit(context.Background(), gateCandidate(), t0)
	if !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("Admit() error = %v, want ErrAlreadyOpen", err)
	}
	// До зонда дело не дошло
	if exec.quoteCount() != 0 {
		t.Error("probe ran for an already open position")
	}
}

// TestEntryGate_DenyBlacklisted проверяет отказ для заблокированного токена
func TestEntryGate_DenyBlacklisted(t *testing.T) {
	bl := NewBlacklist()
	bl.Add("mintX", "XXX", models.BlacklistReasonProbe, 24*time.Hour, t0)
	exec := newFakeExecutor(10)
	gate := newTestGate(gateStrategy(), newTestStore(4), bl, exec)

	err := gate.Admit(context.Background(), gateCandidate(), t0)
	if !errors.Is(err, ErrBlacklisted) {
		t.Errorf("Admit() error = %v, want ErrBlacklisted", err)
	}

	// После истечения срока токен снова допускается
	if err := gate.Admit(context.Background(), gateCandidate(), t0.Add(25*time.Hour)); err != nil {
		t.Errorf("Admit() after expiry error: %v", err)
	}
}

// TestEntryGate_Whitelist проверяет режим белого списка
func TestEntryGate_Whitelist(t *testing.T) {
	strategy := gateStrategy()
	strategy.Whitelist = []string{"allowed1", "allowed2"}
	gate := newTestGate(strategy, newTestStore(4), NewBlacklist(), newFakeExecutor(10))

	err := gate.Admit(context.Background(), gateCandidate(), t0)
	if !errors.Is(err, ErrNotWhitelisted) {
		t.Errorf("Admit() error = %v, want ErrNotWhitelisted", err)
	}

	ok := models.Candidate{Address: "allowed1", Symbol: "OK1"}
	if err := gate.Admit(context.Background(), ok, t0); err != nil {
		t.Errorf("Admit(whitelisted) error: %v", err)
	}
}

// TestEntryGate_ProbeFailureBlacklists проверяет, что провал зонда
// блокирует токен на 24 часа
func TestEntryGate_ProbeFailureBlacklists(t *testing.T) {
	bl := NewBlacklist()
	exec := newFakeExecutor(10)
	exec.failQuotes("mintX")
	gate := newTestGate(gateStrategy(), newTestStore(4), bl, exec)

	err := gate.Admit(context.Background(), gateCandidate(), t0)
	if !errors.Is(err, ErrProbeFailed) {
		t.Fatalf("Admit() error = %v, want ErrProbeFailed", err)
	}

	if !bl.Contains("mintX", t0.Add(23*time.Hour)) {
		t.Error("token not blacklisted for probe cooldown")
	}
	if bl.Contains("mintX", t0.Add(25*time.Hour)) {
		t.Error("probe blacklist did not expire after 24h")
	}

	entries := bl.List(t0)
	if len(entries) != 1 || entries[0].Reason != models.BlacklistReasonProbe {
		t.Errorf("blacklist entries = %+v, want one PROBE_FAILED", entries)
	}
}

// TestEntryGate_RouteCheck проверяет allow-list площадок маршрута
func TestEntryGate_RouteCheck(t *testing.T) {
	tests := []struct {
		name      string
		venues    []string
		routeMode string
		wantErr   bool
	}{
		{
			name: "all hops allowed, strict", routeMode: config.RouteCheckStrict,
			venues: []string{"Raydium", "Orca"}, wantErr: false,
		},
		{
			name: "second hop not allowed, strict", routeMode: config.RouteCheckStrict,
			venues: []string{"Raydium", "ObscureSwap"}, wantErr: true,
		},
		{
			name: "second hop not allowed, permissive", routeMode: config.RouteCheckPermissive,
			venues: []string{"Raydium", "ObscureSwap"}, wantErr: false,
		},
		{
			name: "first hop not allowed, permissive", routeMode: config.RouteCheckPermissive,
			venues: []string{"ObscureSwap", "Raydium"}, wantErr: true,
		},
		{
			name: "empty route, strict", routeMode: config.RouteCheckStrict,
			venues: []string{}, wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := gateStrategy()
			strategy.RouteCheck = tt.routeMode
			exec := newFakeExecutor(10)
			exec.venues = tt.venues
			bl := NewBlacklist()
			gate := newTestGate(strategy, newTestStore(4), bl, exec)

			err := gate.Admit(context.Background(), gateCandidate(), t0)
			if tt.wantErr {
				if !errors.Is(err, ErrRouteDenied) {
					t.Errorf("Admit() error = %v, want ErrRouteDenied", err)
				}
				// Запрещённый маршрут блокирует токен как провал зонда
				if !bl.Contains("mintX", t0.Add(23*time.Hour)) {
					t.Error("route denial did not blacklist the token")
				}
			} else if err != nil {
				t.Errorf("Admit() error = %v, want nil", err)
			}
		})
	}
}
