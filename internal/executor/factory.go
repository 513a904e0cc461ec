package executor

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"memebot/internal/bot"
	"memebot/internal/config"
)

// NewExecutor создаёт исполнителя по режиму из конфигурации
func NewExecutor(cfg config.ExecutorConfig, security config.SecurityConfig, venues []string, prices PriceFunc, logger *zap.Logger) (bot.Executor, error) {
	switch cfg.Mode {
	case config.ModeSimu:
		return NewSimulatedExecutor(cfg.SimStartBalance, venues, prices, logger), nil

	case config.ModeReal:
		wallet, err := LoadWallet(cfg.PrivateKey, security.EncryptionKey)
		if err != nil {
			return nil, err
		}
		client := &http.Client{Timeout: cfg.QuoteTimeout}
		if client.Timeout <= 0 {
			client.Timeout = 10 * time.Second
		}
		logger.Info("real executor initialized", zap.String("wallet", wallet.Address()))
		return NewJupiterExecutor("", cfg.RPCEndpoint, client, wallet, cfg.SlippageBps, logger), nil

	default:
		return nil, fmt.Errorf("unsupported executor mode: %s", cfg.Mode)
	}
}
