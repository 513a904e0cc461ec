package bot

import (
	"testing"
	"time"

	"memebot/internal/models"
)

var t0 = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// TestBlacklist_AddContains проверяет блокировку и истечение срока
func TestBlacklist_AddContains(t *testing.T) {
	b := NewBlacklist()
	b.Add("mint1", "AAA", models.BlacklistReasonProbe, 24*time.Hour, t0)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "right after add", at: t0, want: true},
		{name: "one second before expiry", at: t0.Add(24*time.Hour - time.Second), want: true},
		{name: "exactly at expiry", at: t0.Add(24 * time.Hour), want: false},
		{name: "after expiry", at: t0.Add(25 * time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Отдельный список на каждый случай: Contains удаляет истёкшие записи
			bl := NewBlacklist()
			bl.Add("mint1", "AAA", models.BlacklistReasonProbe, 24*time.Hour, t0)
			if got := bl.Contains("mint1", tt.at); got != tt.want {
				t.Errorf("Contains at %v = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	if b.Contains("unknown", t0) {
		t.Error("Contains(unknown) = true, want false")
	}
}

// TestBlacklist_LazyExpiry проверяет ленивое удаление истёкших записей
func TestBlacklist_LazyExpiry(t *testing.T) {
	b := NewBlacklist()
	b.Add("mint1", "AAA", models.BlacklistReasonProbe, time.Hour, t0)

	if got := b.Size(t0); got != 1 {
		t.Fatalf("Size = %d, want 1", got)
	}

	// После обращения с истёкшим сроком запись физически удаляется
	later := t0.Add(2 * time.Hour)
	if b.Contains("mint1", later) {
		t.Error("Contains after expiry = true, want false")
	}
	if got := len(b.Snapshot()); got != 0 {
		t.Errorf("entry not removed lazily, snapshot size = %d", got)
	}
}

// TestBlacklist_ReAdd проверяет продление блокировки повторным добавлением
func TestBlacklist_ReAdd(t *testing.T) {
	b := NewBlacklist()
	b.Add("mint1", "AAA", models.BlacklistReasonProbe, time.Hour, t0)
	b.Add("mint1", "AAA", models.BlacklistReasonExecFailures, 6*time.Hour, t0)

	if !b.Contains("mint1", t0.Add(5*time.Hour)) {
		t.Error("re-add did not extend the entry")
	}

	entries := b.List(t0)
	if len(entries) != 1 {
		t.Fatalf("List() = %d entries, want 1", len(entries))
	}
	if entries[0].Reason != models.BlacklistReasonExecFailures {
		t.Errorf("Reason = %s, want %s", entries[0].Reason, models.BlacklistReasonExecFailures)
	}
}

// TestBlacklist_Remove проверяет ручное снятие блокировки
func TestBlacklist_Remove(t *testing.T) {
	b := NewBlacklist()
	b.Add("mint1", "AAA", models.BlacklistReasonManual, time.Hour, t0)

	if !b.Remove("mint1") {
		t.Error("Remove(existing) = false, want true")
	}
	if b.Contains("mint1", t0) {
		t.Error("Contains after Remove = true")
	}
	if b.Remove("mint1") {
		t.Error("Remove(missing) = true, want false")
	}
}

// TestBlacklist_SnapshotRestore проверяет восстановление из снапшота
func TestBlacklist_SnapshotRestore(t *testing.T) {
	b := NewBlacklist()
	b.Add("active", "AAA", models.BlacklistReasonProbe, 24*time.Hour, t0)
	b.Add("expired", "BBB", models.BlacklistReasonProbe, time.Hour, t0)

	snap := b.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot size = %d, want 2", len(snap))
	}

	// Восстановление через 2 часа: истёкшая запись отбрасывается
	restored := NewBlacklist()
	restored.Restore(snap, t0.Add(2*time.Hour))

	if !restored.Contains("active", t0.Add(2*time.Hour)) {
		t.Error("active entry lost on restore")
	}
	if restored.Contains("expired", t0.Add(2*time.Hour)) {
		t.Error("expired entry survived restore")
	}
	if got := len(restored.Snapshot()); got != 1 {
		t.Errorf("restored size = %d, want 1", got)
	}
}

// TestFailureTracker проверяет счётчик подряд идущих неудач
func TestFailureTracker(t *testing.T) {
	f := NewFailureTracker()

	if got := f.RecordFailure("mint1"); got != 1 {
		t.Errorf("first failure count = %d, want 1", got)
	}
	if got := f.RecordFailure("mint1"); got != 2 {
		t.Errorf("second failure count = %d, want 2", got)
	}
	if got := f.Count("mint1"); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}

	// Счётчики независимы по адресам
	if got := f.RecordFailure("mint2"); got != 1 {
		t.Errorf("other address count = %d, want 1", got)
	}

	// Успех сбрасывает серию
	f.Reset("mint1")
	if got := f.Count("mint1"); got != 0 {
		t.Errorf("Count after Reset = %d, want 0", got)
	}
	if got := f.RecordFailure("mint1"); got != 1 {
		t.Errorf("count after reset and failure = %d, want 1", got)
	}
}
