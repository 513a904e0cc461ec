package models

import "time"

// TradeRecord представляет закрытую сделку для журнала в БД
type TradeRecord struct {
	ID         int64     `json:"id" db:"id"`
	Address    string    `json:"address" db:"address"`       // mint адрес токена
	Symbol     string    `json:"symbol" db:"symbol"`         // тикер
	Tier       Tier      `json:"tier" db:"tier"`             // уровень на момент входа
	EntryPrice float64   `json:"entry_price" db:"entry_price"`
	ExitPrice  float64   `json:"exit_price" db:"exit_price"`
	PnlPct     float64   `json:"pnl_pct" db:"pnl_pct"`       // результат в процентах от входа
	Reason     string    `json:"reason" db:"reason"`         // STOP_LOSS, TRAILING_TP, MANUAL
	Signature  string    `json:"signature" db:"signature"`   // подпись транзакции продажи (пусто в SIMU)
	OpenedAt   time.Time `json:"opened_at" db:"opened_at"`
	ClosedAt   time.Time `json:"closed_at" db:"closed_at"`
}

// TradeSummary представляет агрегированную сводку торговли
//
// Используется endpoint'ом /api/v1/stats/summary и ежедневной сводкой
// (аналог /summary из исходного бота).
type TradeSummary struct {
	TotalTrades  int     `json:"total_trades"`
	TotalPnlPct  float64 `json:"total_pnl_pct"` // сумма pnl_pct по всем сделкам
	TodayTrades  int     `json:"today_trades"`
	TodayPnlPct  float64 `json:"today_pnl_pct"`
	StopLosses   int     `json:"stop_losses"`   // закрытий по стоп-лоссу (всего)
	TrailingTPs  int     `json:"trailing_tps"`  // закрытий по трейлингу (всего)
	WinningCount int     `json:"winning_count"` // сделок с pnl_pct > 0
}
