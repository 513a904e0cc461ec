package bot

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"memebot/internal/models"
)

func newTestStore(maxOpen int) *PositionStore {
	return NewPositionStore(maxOpen, zap.NewNop())
}

func testPosition(address string, entry float64) *models.Position {
	return &models.Position{
		Address:    address,
		Symbol:     "TST",
		EntryPrice: entry,
		PeakPrice:  entry,
		Quantity:   1000,
		Tier:       models.TierAPlus,
		State:      models.PositionStateUnarmed,
		OpenedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestPositionStore_OpenDuplicate проверяет, что дубликат открытия - no-op
func TestPositionStore_OpenDuplicate(t *testing.T) {
	s := newTestStore(4)

	if !s.Open(testPosition("mint1", 1.0)) {
		t.Fatal("first Open failed")
	}
	if s.Open(testPosition("mint1", 2.0)) {
		t.Error("duplicate Open succeeded, want no-op")
	}

	p, _ := s.Get("mint1")
	if p.EntryPrice != 1.0 {
		t.Errorf("duplicate Open mutated position: entry = %v, want 1.0", p.EntryPrice)
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
}

// TestPositionStore_Cap проверяет лимит одновременных позиций
func TestPositionStore_Cap(t *testing.T) {
	s := newTestStore(2)

	s.Open(testPosition("mint1", 1))
	s.Open(testPosition("mint2", 1))

	if s.CanOpenMore() {
		t.Error("CanOpenMore = true at cap")
	}
	if s.Open(testPosition("mint3", 1)) {
		t.Error("Open above cap succeeded")
	}
	if s.Count() != 2 {
		t.Errorf("Count = %d, want 2", s.Count())
	}

	// Закрытие освобождает слот
	s.Close("mint1")
	if !s.CanOpenMore() {
		t.Error("CanOpenMore = false after close")
	}
	if !s.Open(testPosition("mint3", 1)) {
		t.Error("Open after freeing a slot failed")
	}
}

// TestPositionStore_PeakMonotonic проверяет монотонность пиковой цены
func TestPositionStore_PeakMonotonic(t *testing.T) {
	s := newTestStore(4)
	s.Open(testPosition("mint1", 1.0))

	updates := []struct {
		price float64
		want  float64
	}{
		{price: 1.5, want: 1.5},
		{price: 1.2, want: 1.5}, // ниже пика - игнорируется
		{price: 1.5, want: 1.5}, // равно пику - игнорируется
		{price: 2.0, want: 2.0},
		{price: 0, want: 2.0},
		{price: -1, want: 2.0},
	}

	for _, u := range updates {
		s.UpdatePeak("mint1", u.price)
		p, _ := s.Get("mint1")
		if p.PeakPrice != u.want {
			t.Errorf("after UpdatePeak(%v): peak = %v, want %v", u.price, p.PeakPrice, u.want)
		}
	}
}

// TestPositionStore_CloseMissing проверяет, что закрытие отсутствующей позиции - no-op
func TestPositionStore_CloseMissing(t *testing.T) {
	s := newTestStore(4)

	if _, ok := s.Close("unknown"); ok {
		t.Error("Close(missing) = ok, want no-op")
	}
}

// TestPositionStore_SetState проверяет допустимость переходов состояния
func TestPositionStore_SetState(t *testing.T) {
	s := newTestStore(4)
	s.Open(testPosition("mint1", 1))

	if !s.SetState("mint1", models.PositionStateArmed) {
		t.Error("UNARMED -> ARMED rejected")
	}
	if !s.SetState("mint1", models.PositionStateClosing) {
		t.Error("ARMED -> CLOSING rejected")
	}
	// CLOSING -> ARMED допустим (откат неудачного закрытия)
	if !s.SetState("mint1", models.PositionStateArmed) {
		t.Error("CLOSING -> ARMED rejected")
	}
	s.SetState("mint1", models.PositionStateClosing)
	if !s.SetState("mint1", models.PositionStateClosed) {
		t.Error("CLOSING -> CLOSED rejected")
	}
	if s.SetState("mint1", models.PositionStateUnarmed) {
		t.Error("transition out of CLOSED succeeded")
	}
	if s.SetState("unknown", models.PositionStateArmed) {
		t.Error("SetState(missing) = true")
	}
}

// TestPositionStore_OnChange проверяет, что каждая мутация триггерит снапшот
func TestPositionStore_OnChange(t *testing.T) {
	s := newTestStore(4)
	changes := 0
	s.SetOnChange(func() { changes++ })

	s.Open(testPosition("mint1", 1.0)) // +1
	s.UpdatePeak("mint1", 2.0)         // +1
	s.UpdatePeak("mint1", 1.5)         // пик не изменился, без снапшота
	s.SetState("mint1", models.PositionStateArmed) // +1
	s.Close("mint1")                   // +1
	s.Close("mint1")                   // no-op, без снапшота

	if changes != 4 {
		t.Errorf("onChange calls = %d, want 4", changes)
	}
}

// TestPositionStore_ListDeterministic проверяет детерминированный порядок обхода
func TestPositionStore_ListDeterministic(t *testing.T) {
	s := newTestStore(10)
	for _, a := range []string{"c", "a", "b"} {
		s.Open(testPosition(a, 1))
	}

	list := s.List()
	want := []string{"a", "b", "c"}
	for i, p := range list {
		if p.Address != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, p.Address, want[i])
		}
	}
}

// TestPositionStore_Restore проверяет восстановление после рестарта
func TestPositionStore_Restore(t *testing.T) {
	snap := map[string]models.Position{
		"mint1": {Address: "mint1", EntryPrice: 1, PeakPrice: 2, State: models.PositionStateArmed},
		"mint2": {Address: "mint2", EntryPrice: 1, PeakPrice: 1, State: models.PositionStateClosing},
		"mint3": {Address: "mint3", EntryPrice: 1, PeakPrice: 0.5, State: models.PositionStateUnarmed},
	}

	s := newTestStore(10)
	s.Restore(snap)

	if s.Count() != 3 {
		t.Fatalf("Count after restore = %d, want 3", s.Count())
	}

	// ARMED сохраняется как есть
	p1, _ := s.Get("mint1")
	if p1.State != models.PositionStateArmed {
		t.Errorf("mint1 state = %s, want ARMED", p1.State)
	}

	// Незавершённое закрытие возвращается в открытое состояние
	p2, _ := s.Get("mint2")
	if p2.State != models.PositionStateUnarmed {
		t.Errorf("mint2 state = %s, want UNARMED after interrupted close", p2.State)
	}

	// Пик не может быть ниже входа
	p3, _ := s.Get("mint3")
	if p3.PeakPrice != 1 {
		t.Errorf("mint3 peak = %v, want raised to entry 1", p3.PeakPrice)
	}
}
