package bot

import "memebot/internal/models"

// ValidTransitions определяет допустимые переходы между состояниями позиции
//
// ARMED - производное состояние: пересчитывается на каждом тике из
// прироста пика от входа. Пик монотонен, поэтому обратного перехода
// ARMED -> UNARMED нет.
// CLOSING -> UNARMED/ARMED - откат при неудачном исполнении выхода.
var ValidTransitions = map[string][]string{
	models.PositionStateUnarmed: {models.PositionStateArmed, models.PositionStateClosing},
	models.PositionStateArmed:   {models.PositionStateClosing},
	models.PositionStateClosing: {models.PositionStateClosed, models.PositionStateUnarmed, models.PositionStateArmed},
	models.PositionStateClosed:  {}, // терминальное
}

// CanTransition проверяет допустимость перехода
func CanTransition(from, to string) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// StateInfo возвращает описание состояния для UI
func StateInfo(s string) string {
	switch s {
	case models.PositionStateUnarmed:
		return "Позиция открыта (трейлинг не активирован)"
	case models.PositionStateArmed:
		return "Позиция открыта (трейлинг активирован)"
	case models.PositionStateClosing:
		return "Закрытие позиции..."
	case models.PositionStateClosed:
		return "Позиция закрыта"
	default:
		return "Неизвестное состояние"
	}
}

// IsOpen возвращает true если позиция ещё удерживается
func IsOpen(s string) bool {
	return s == models.PositionStateUnarmed || s == models.PositionStateArmed || s == models.PositionStateClosing
}
