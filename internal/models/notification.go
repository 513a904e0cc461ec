package models

import "time"

// Notification представляет уведомление о событии
type Notification struct {
	ID        int64                  `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	Type      string                 `json:"type" db:"type"`         // BUY, SELL, PROBE_FAIL, BLACKLIST, HALT, RESUME, ERROR
	Severity  string                 `json:"severity" db:"severity"` // info, warn, error
	Address   string                 `json:"address,omitempty" db:"address"`
	Message   string                 `json:"message" db:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" db:"meta"` // дополнительные данные (JSON в БД)
}

// Типы уведомлений
const (
	NotificationTypeBuy       = "BUY"        // открытие позиции
	NotificationTypeSell      = "SELL"       // закрытие позиции
	NotificationTypeProbeFail = "PROBE_FAIL" // провал honeypot-зонда
	NotificationTypeBlacklist = "BLACKLIST"  // токен добавлен в чёрный список
	NotificationTypeHalt      = "HALT"       // торговля остановлена
	NotificationTypeResume    = "RESUME"     // торговля возобновлена
	NotificationTypeError     = "ERROR"      // ошибка исполнения/API
)

// Уровни важности
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)
