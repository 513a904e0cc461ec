package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"memebot/internal/models"
)

// Ошибки репозитория сделок
var (
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeRepository - работа с таблицей trades (журнал закрытых сделок)
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository создает новый экземпляр репозитория
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// RecordTrade сохраняет закрытую сделку
func (r *TradeRepository) RecordTrade(ctx context.Context, trade *models.TradeRecord) error {
	query := `
		INSERT INTO trades (address, symbol, tier, entry_price, exit_price, pnl_pct, reason, signature, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	if trade.ClosedAt.IsZero() {
		trade.ClosedAt = time.Now()
	}

	return r.db.QueryRowContext(
		ctx,
		query,
		trade.Address,
		trade.Symbol,
		trade.Tier,
		trade.EntryPrice,
		trade.ExitPrice,
		trade.PnlPct,
		trade.Reason,
		trade.Signature,
		trade.OpenedAt,
		trade.ClosedAt,
	).Scan(&trade.ID)
}

// GetByID возвращает сделку по ID
func (r *TradeRepository) GetByID(ctx context.Context, id int64) (*models.TradeRecord, error) {
	query := `
		SELECT id, address, symbol, tier, entry_price, exit_price, pnl_pct, reason, signature, opened_at, closed_at
		FROM trades
		WHERE id = $1`

	trade := &models.TradeRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&trade.ID,
		&trade.Address,
		&trade.Symbol,
		&trade.Tier,
		&trade.EntryPrice,
		&trade.ExitPrice,
		&trade.PnlPct,
		&trade.Reason,
		&trade.Signature,
		&trade.OpenedAt,
		&trade.ClosedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}

	return trade, nil
}

// GetRecent возвращает последние N сделок
func (r *TradeRepository) GetRecent(ctx context.Context, limit int) ([]*models.TradeRecord, error) {
	query := `
		SELECT id, address, symbol, tier, entry_price, exit_price, pnl_pct, reason, signature, opened_at, closed_at
		FROM trades
		ORDER BY closed_at DESC
		LIMIT $1`

	return r.queryTrades(ctx, query, limit)
}

// GetByAddress возвращает сделки по mint адресу токена
func (r *TradeRepository) GetByAddress(ctx context.Context, address string, limit int) ([]*models.TradeRecord, error) {
	query := `
		SELECT id, address, symbol, tier, entry_price, exit_price, pnl_pct, reason, signature, opened_at, closed_at
		FROM trades
		WHERE address = $1
		ORDER BY closed_at DESC
		LIMIT $2`

	return r.queryTrades(ctx, query, address, limit)
}

// GetSummary возвращает агрегированную сводку торговли.
// Сегодняшними считаются сделки, закрытые после since.
func (r *TradeRepository) GetSummary(ctx context.Context, since time.Time) (*models.TradeSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(pnl_pct), 0),
			COUNT(*) FILTER (WHERE closed_at >= $1),
			COALESCE(SUM(pnl_pct) FILTER (WHERE closed_at >= $1), 0),
			COUNT(*) FILTER (WHERE reason = $2),
			COUNT(*) FILTER (WHERE reason = $3),
			COUNT(*) FILTER (WHERE pnl_pct > 0)
		FROM trades`

	summary := &models.TradeSummary{}
	err := r.db.QueryRowContext(ctx, query, since, models.CloseReasonStopLoss, models.CloseReasonTrailingTP).Scan(
		&summary.TotalTrades,
		&summary.TotalPnlPct,
		&summary.TodayTrades,
		&summary.TodayPnlPct,
		&summary.StopLosses,
		&summary.TrailingTPs,
		&summary.WinningCount,
	)
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// DeleteOlderThan удаляет сделки старше указанной даты
func (r *TradeRepository) DeleteOlderThan(ctx context.Context, timestamp time.Time) (int64, error) {
	query := `DELETE FROM trades WHERE closed_at < $1`

	result, err := r.db.ExecContext(ctx, query, timestamp)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Count возвращает общее количество сделок
func (r *TradeRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM trades`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *TradeRepository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]*models.TradeRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*models.TradeRecord
	for rows.Next() {
		trade := &models.TradeRecord{}
		err := rows.Scan(
			&trade.ID,
			&trade.Address,
			&trade.Symbol,
			&trade.Tier,
			&trade.EntryPrice,
			&trade.ExitPrice,
			&trade.PnlPct,
			&trade.Reason,
			&trade.Signature,
			&trade.OpenedAt,
			&trade.ClosedAt,
		)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return trades, nil
}
