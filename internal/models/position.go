package models

import "time"

// Position представляет открытую позицию по токену.
//
// Создаётся при успешном входе, владеет ею исключительно PositionStore.
// Мутируется только ExitEngine (пиковая цена, состояние) и уничтожается
// при выходе. Инвариант: PeakPrice >= EntryPrice после первого наблюдения.
type Position struct {
	Address    string    `json:"address"`     // mint адрес (ключ, одна позиция на адрес)
	Symbol     string    `json:"symbol"`      // тикер для отображения
	EntryPrice float64   `json:"entry_price"` // цена входа в референсной единице (USD)
	PeakPrice  float64   `json:"peak_price"`  // максимум наблюдавшейся цены (монотонно растёт)
	Quantity   float64   `json:"quantity"`    // количество купленных токенов
	SizeQuote  float64   `json:"size_quote"`  // потрачено квотируемого актива (SOL)
	Tier       Tier      `json:"tier"`        // уровень на момент входа (для аудита)
	State      string    `json:"state"`       // UNARMED, ARMED, CLOSING, CLOSED
	OpenedAt   time.Time `json:"opened_at"`
}

// Состояния позиции (state machine выхода)
const (
	PositionStateUnarmed = "OPEN_UNARMED" // трейлинг не активирован
	PositionStateArmed   = "OPEN_ARMED"   // прибыль достигла триггера трейлинга
	PositionStateClosing = "CLOSING"      // идёт попытка закрытия
	PositionStateClosed  = "CLOSED"       // терминальное, позиция удалена из стора
)

// Причины закрытия позиции
const (
	CloseReasonStopLoss   = "STOP_LOSS"
	CloseReasonTrailingTP = "TRAILING_TP"
	CloseReasonManual     = "MANUAL" // принудительное закрытие через API
)

// GainFromEntry возвращает долю прироста от цены входа при текущей цене
func (p *Position) GainFromEntry(current float64) float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	return (current - p.EntryPrice) / p.EntryPrice
}

// LossFromEntry возвращает долю просадки от цены входа (положительное число = убыток)
func (p *Position) LossFromEntry(current float64) float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	return (p.EntryPrice - current) / p.EntryPrice
}

// DropFromPeak возвращает долю отката от пиковой цены
func (p *Position) DropFromPeak(current float64) float64 {
	if p.PeakPrice <= 0 {
		return 0
	}
	return (p.PeakPrice - current) / p.PeakPrice
}
