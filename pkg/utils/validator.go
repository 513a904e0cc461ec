package utils

// validator.go - валидация входных данных API
//
// Проверки параметров, приходящих снаружи (REST endpoints).
// Возвращают error с описанием проблемы или nil.

import (
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

// ValidateMintAddress проверяет mint адрес Solana:
// валидный base58 и 32 байта после декодирования
func ValidateMintAddress(address string) error {
	if address == "" {
		return fmt.Errorf("mint address is empty")
	}
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("mint address is not valid base58: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("mint address must decode to 32 bytes, got %d", len(raw))
	}
	return nil
}

// ValidateLimit проверяет параметр limit для выборок
func ValidateLimit(limit, max int) error {
	if limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", limit)
	}
	if max > 0 && limit > max {
		return fmt.Errorf("limit must not exceed %d, got %d", max, limit)
	}
	return nil
}

// ValidateDuration проверяет длительность (например TTL записи чёрного списка)
func ValidateDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	if d > 365*24*time.Hour {
		return fmt.Errorf("duration too long: %s", d)
	}
	return nil
}
