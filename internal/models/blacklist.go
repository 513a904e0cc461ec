package models

import "time"

// BlacklistEntry представляет запись в чёрном списке токенов.
//
// В отличие от постоянного списка, записи ограничены по времени:
// токен заблокирован только пока now < ExpiresAt. Просроченные записи
// не удаляются активно - проверка выполняется лениво при обращении.
type BlacklistEntry struct {
	Address   string    `json:"address" db:"address"`       // mint адрес токена
	Symbol    string    `json:"symbol" db:"symbol"`         // тикер на момент блокировки
	Reason    string    `json:"reason" db:"reason"`         // PROBE_FAILED, EXEC_FAILURES, MANUAL
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Причины попадания в чёрный список
const (
	BlacklistReasonProbe        = "PROBE_FAILED"  // провален honeypot-зонд (кулдаун 24ч)
	BlacklistReasonExecFailures = "EXEC_FAILURES" // серия неудачных исполнений (кулдаун 6ч)
	BlacklistReasonManual       = "MANUAL"        // добавлен вручную через API
)

// Active возвращает true если запись ещё действует
func (e *BlacklistEntry) Active(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}
