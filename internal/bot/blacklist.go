package bot

import (
	"sync"
	"time"

	"memebot/internal/models"
)

// Blacklist - временный чёрный список адресов токенов
//
// Записи хранятся в памяти и истекают лениво: запись с прошедшим
// сроком удаляется при первом обращении к ней. Периодической очистки
// нет, список никогда не вырастает больше числа проверенных токенов.
//
// Потокобезопасен: планировщик пишет, API читает.
type Blacklist struct {
	mu      sync.RWMutex
	entries map[string]models.BlacklistEntry
}

// NewBlacklist создаёт пустой чёрный список
func NewBlacklist() *Blacklist {
	return &Blacklist{
		entries: make(map[string]models.BlacklistEntry),
	}
}

// Add добавляет адрес на срок ttl. Повторный Add перезаписывает
// запись (продление срока).
func (b *Blacklist) Add(address, symbol, reason string, ttl time.Duration, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[address] = models.BlacklistEntry{
		Address:   address,
		Symbol:    symbol,
		Reason:    reason,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Contains сообщает, заблокирован ли адрес на момент now.
// Истёкшая запись удаляется при обращении.
func (b *Blacklist) Contains(address string, now time.Time) bool {
	b.mu.RLock()
	entry, ok := b.entries[address]
	b.mu.RUnlock()

	if !ok {
		return false
	}
	if entry.Active(now) {
		return true
	}

	// Лениво удаляем истёкшую запись
	b.mu.Lock()
	// Перепроверка: запись могла быть продлена между блокировками
	if e, ok := b.entries[address]; ok && !e.Active(now) {
		delete(b.entries, address)
	}
	b.mu.Unlock()

	return false
}

// Remove снимает блокировку досрочно (ручное управление через API)
func (b *Blacklist) Remove(address string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[address]; !ok {
		return false
	}
	delete(b.entries, address)
	return true
}

// List возвращает активные записи на момент now
func (b *Blacklist) List(now time.Time) []models.BlacklistEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.BlacklistEntry, 0, len(b.entries))
	for _, e := range b.entries {
		if e.Active(now) {
			out = append(out, e)
		}
	}
	return out
}

// Size возвращает количество активных записей на момент now
func (b *Blacklist) Size(now time.Time) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, e := range b.entries {
		if e.Active(now) {
			n++
		}
	}
	return n
}

// Snapshot возвращает копию всех записей для сохранения на диск
func (b *Blacklist) Snapshot() map[string]models.BlacklistEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]models.BlacklistEntry, len(b.entries))
	for k, v := range b.entries {
		out[k] = v
	}
	return out
}

// Restore загружает записи из снапшота, отбрасывая истёкшие
func (b *Blacklist) Restore(entries map[string]models.BlacklistEntry, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, v := range entries {
		if v.Active(now) {
			b.entries[k] = v
		}
	}
}

// ============================================================
// Счётчик подряд неудачных исполнений
// ============================================================

// FailureTracker считает подряд идущие неудачи исполнения по адресу.
// Успешное исполнение сбрасывает счётчик.
type FailureTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewFailureTracker создаёт пустой счётчик неудач
func NewFailureTracker() *FailureTracker {
	return &FailureTracker{counts: make(map[string]int)}
}

// RecordFailure увеличивает счётчик и возвращает новое значение
func (f *FailureTracker) RecordFailure(address string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counts[address]++
	return f.counts[address]
}

// Reset сбрасывает счётчик после успешного исполнения
func (f *FailureTracker) Reset(address string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.counts, address)
}

// Count возвращает текущее значение счётчика
func (f *FailureTracker) Count(address string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.counts[address]
}
