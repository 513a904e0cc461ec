package executor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"memebot/internal/models"
)

// PriceFunc возвращает текущую цену токена в единицах квотируемого актива
type PriceFunc func(ctx context.Context, address string) (float64, error)

// SimulatedExecutor исполняет сделки на бумаге
//
// Котировки считаются от рыночной цены токена, маршрут отдаётся через
// разрешённые площадки. Баланс виртуальный и меняется только свопами.
type SimulatedExecutor struct {
	prices PriceFunc
	venues []string
	logger *zap.Logger

	mu      sync.Mutex
	balance float64
}

// NewSimulatedExecutor создаёт симулятор со стартовым балансом
func NewSimulatedExecutor(startBalance float64, venues []string, prices PriceFunc, logger *zap.Logger) *SimulatedExecutor {
	return &SimulatedExecutor{
		prices:  prices,
		venues:  venues,
		logger:  logger,
		balance: startBalance,
	}
}

// Quote строит виртуальную котировку по рыночной цене
func (e *SimulatedExecutor) Quote(ctx context.Context, inputMint, outputMint string, amount float64) (*models.Quote, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("simulator: amount must be positive, got %v", amount)
	}

	var out float64
	switch {
	case inputMint == models.WsolMint:
		price, err := e.prices(ctx, outputMint)
		if err != nil {
			return nil, fmt.Errorf("simulator: price %s: %w", outputMint, err)
		}
		out = amount / price
	case outputMint == models.WsolMint:
		price, err := e.prices(ctx, inputMint)
		if err != nil {
			return nil, fmt.Errorf("simulator: price %s: %w", inputMint, err)
		}
		out = amount * price
	default:
		return nil, fmt.Errorf("simulator: one side of the swap must be WSOL")
	}

	venues := e.venues
	if len(venues) > 1 {
		venues = venues[:1] // симулируем прямой своп в один хоп
	}

	return &models.Quote{
		InputMint:  inputMint,
		OutputMint: outputMint,
		InAmount:   amount,
		OutAmount:  out,
		Venues:     venues,
	}, nil
}

// Swap применяет котировку к виртуальному балансу
func (e *SimulatedExecutor) Swap(ctx context.Context, q *models.Quote) (*models.TxResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if q.InputMint == models.WsolMint {
		if q.InAmount > e.balance {
			return nil, fmt.Errorf("simulator: insufficient balance: need %v, have %v", q.InAmount, e.balance)
		}
		e.balance -= q.InAmount
	} else {
		e.balance += q.OutAmount
	}

	e.logger.Debug("simulated swap executed",
		zap.String("input_mint", q.InputMint),
		zap.String("output_mint", q.OutputMint),
		zap.Float64("in_amount", q.InAmount),
		zap.Float64("out_amount", q.OutAmount),
		zap.Float64("balance", e.balance))

	return &models.TxResult{OutAmount: q.OutAmount}, nil
}

// Balance возвращает виртуальный баланс квотируемого актива
func (e *SimulatedExecutor) Balance(ctx context.Context) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance, nil
}
