package bot

import (
	"math"

	"go.uber.org/zap"

	"memebot/internal/models"
)

// ExitDecision - результат проверки одной позиции на выход
type ExitDecision struct {
	ShouldClose bool
	Reason      string  // STOP_LOSS или TRAILING_TP
	Price       float64 // цена, по которой принято решение
}

// ExitEngine - машина состояний выхода из позиции
//
// На каждом тике для каждой открытой позиции:
// 1. Некорректная цена (<= 0, NaN, Inf) - позиция пропускается до
//    следующего тика, состояние не меняется
// 2. Обновление пика (до всех проверок, пик монотонен)
// 3. Стоп-лосс: просадка от входа >= stopLossPct - закрытие.
//    Проверяется первым и имеет приоритет над трейлингом
// 4. Активация трейлинга: прирост пика от входа >= trailingTriggerPct.
//    Условие производное - пересчитывается каждый тик от пиковой цены,
//    отдельный защёлкивающийся флаг не хранится
// 5. Трейлинг-выход: активирован и откат от пика >= trailingThrowbackPct
type ExitEngine struct {
	stopLossPct          float64
	trailingTriggerPct   float64
	trailingThrowbackPct float64

	store  *PositionStore
	logger *zap.Logger
}

// NewExitEngine создаёт машину выхода с порогами-долями (0.10 = 10%)
func NewExitEngine(stopLossPct, trailingTriggerPct, trailingThrowbackPct float64, store *PositionStore, logger *zap.Logger) *ExitEngine {
	return &ExitEngine{
		stopLossPct:          stopLossPct,
		trailingTriggerPct:   trailingTriggerPct,
		trailingThrowbackPct: trailingThrowbackPct,
		store:                store,
		logger:               logger,
	}
}

// Evaluate проверяет одну позицию при текущей цене
//
// Побочные эффекты: обновляет пик и состояние UNARMED/ARMED в сторе.
// Решение о закрытии исполняет вызывающий (Engine), не сама машина.
func (e *ExitEngine) Evaluate(address string, price float64) ExitDecision {
	if !validPrice(price) {
		e.logger.Debug("skipping position: invalid price",
			zap.String("address", address),
			zap.Float64("price", price))
		return ExitDecision{}
	}

	// Пик обновляется до проверок, чтобы откат считался от свежего максимума
	e.store.UpdatePeak(address, price)

	p, ok := e.store.Get(address)
	if !ok {
		return ExitDecision{}
	}

	// Стоп-лосс проверяется первым: при одновременном выполнении обоих
	// условий побеждает стоп-лосс
	if p.LossFromEntry(price) >= e.stopLossPct {
		return ExitDecision{ShouldClose: true, Reason: models.CloseReasonStopLoss, Price: price}
	}

	// Активация производная, но считается от пика: пик монотонен,
	// поэтому однажды активированный трейлинг не дезактивируется,
	// даже если текущий прирост упал ниже триггера
	armed := p.GainFromEntry(p.PeakPrice) >= e.trailingTriggerPct
	if armed && p.State == models.PositionStateUnarmed {
		e.store.SetState(address, models.PositionStateArmed)
	}

	if armed && p.DropFromPeak(price) >= e.trailingThrowbackPct {
		return ExitDecision{ShouldClose: true, Reason: models.CloseReasonTrailingTP, Price: price}
	}

	return ExitDecision{}
}

// validPrice отсекает нулевые, отрицательные и нечисловые цены
func validPrice(price float64) bool {
	return price > 0 && !math.IsNaN(price) && !math.IsInf(price, 0)
}
