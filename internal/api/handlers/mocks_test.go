package handlers

import (
	"context"
	"errors"
	"time"

	"memebot/internal/bot"
	"memebot/internal/models"
)

// ============================================================
// Фейки зависимостей handlers
// ============================================================

type fakeEngine struct {
	halted     bool
	closeErr   error
	closeCalls []string
}

func (f *fakeEngine) Halt()          { f.halted = true }
func (f *fakeEngine) Resume()        { f.halted = false }
func (f *fakeEngine) IsHalted() bool { return f.halted }

func (f *fakeEngine) SnapshotStatus() bot.Status {
	return bot.Status{
		Halted:        f.halted,
		Mode:          "SIMU",
		OpenPositions: 1,
		MaxPositions:  4,
		StartedAt:     time.Now().Add(-90 * time.Second),
	}
}

func (f *fakeEngine) ClosePositionManually(_ context.Context, address string) error {
	f.closeCalls = append(f.closeCalls, address)
	return f.closeErr
}

type fakeTradeStore struct {
	trades []*models.TradeRecord
	err    error

	lastLimit   int
	lastAddress string
}

func (f *fakeTradeStore) GetRecent(_ context.Context, limit int) ([]*models.TradeRecord, error) {
	f.lastLimit = limit
	return f.trades, f.err
}

func (f *fakeTradeStore) GetByAddress(_ context.Context, address string, limit int) ([]*models.TradeRecord, error) {
	f.lastAddress = address
	f.lastLimit = limit
	return f.trades, f.err
}

func (f *fakeTradeStore) GetSummary(_ context.Context, _ time.Time) (*models.TradeSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.TradeSummary{TotalTrades: 12, TodayTrades: 3, WinningCount: 7}, nil
}

type fakeNotificationStore struct {
	notifications []*models.Notification
	err           error

	lastType string
}

func (f *fakeNotificationStore) GetRecent(_ context.Context, limit int) ([]*models.Notification, error) {
	return f.notifications, f.err
}

func (f *fakeNotificationStore) GetByType(_ context.Context, ntype string, limit int) ([]*models.Notification, error) {
	f.lastType = ntype
	return f.notifications, f.err
}

var errStore = errors.New("store unavailable")
