package market

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"memebot/internal/bot"
	"memebot/internal/config"
	"memebot/internal/models"
	"memebot/pkg/retry"
)

// Source - один внешний источник рыночных данных
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Candidate, error)
}

// PriceSource - источник с точечным запросом цены по адресу
type PriceSource interface {
	Price(ctx context.Context, address string) (float64, error)
}

// Scanner опрашивает источники по приоритету и сводит результаты
//
// Дедупликация по mint адресу: при совпадении побеждает источник,
// стоящий раньше в списке. Падение одного источника не срывает
// сканирование - используются остальные.
type Scanner struct {
	sources []Source
	prices  PriceSource
	logger  *zap.Logger
	retry   retry.Config

	// Цены последнего удачного сканирования (кэш для Price)
	mu       sync.RWMutex
	lastSeen map[string]float64
}

// NewScanner создаёт сканер из списка источников по конфигурации
func NewScanner(cfg config.ScannerConfig, logger *zap.Logger) (*Scanner, error) {
	client := NewHTTPClient(DefaultHTTPClientConfig())

	var sources []Source
	var prices PriceSource
	for _, name := range cfg.Sources {
		switch name {
		case "dexscreener":
			ds := NewDexScreenerSource("", client, cfg.RateLimit, cfg.MaxCandidates)
			sources = append(sources, ds)
			prices = ds
		case "gecko":
			sources = append(sources, NewGeckoSource("", client, cfg.RateLimit, cfg.MaxCandidates))
		case "birdeye":
			if cfg.BirdeyeAPIKey == "" {
				return nil, fmt.Errorf("birdeye source requires BIRDEYE_API_KEY")
			}
			sources = append(sources, NewBirdeyeSource("", cfg.BirdeyeAPIKey, client, cfg.RateLimit, cfg.MaxCandidates))
		default:
			return nil, fmt.Errorf("unknown market source %q", name)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no market sources configured")
	}

	return newScanner(sources, prices, logger), nil
}

// newScanner - конструктор для тестов с произвольными источниками
func newScanner(sources []Source, prices PriceSource, logger *zap.Logger) *Scanner {
	return &Scanner{
		sources:  sources,
		prices:   prices,
		logger:   logger,
		retry:    retry.DefaultConfig(),
		lastSeen: make(map[string]float64),
	}
}

// Scan опрашивает все источники и возвращает дедуплицированный список
func (s *Scanner) Scan(ctx context.Context) ([]models.Candidate, error) {
	seen := make(map[string]bool)
	var merged []models.Candidate
	var failed int

	for _, src := range s.sources {
		candidates, err := s.fetchWithRetry(ctx, src)
		if err != nil {
			failed++
			bot.ScanErrors.WithLabelValues(src.Name()).Inc()
			s.logger.Warn("market source failed",
				zap.String("source", src.Name()),
				zap.Error(err))
			continue
		}

		bot.ScanCandidates.WithLabelValues(src.Name()).Set(float64(len(candidates)))
		for _, c := range candidates {
			if seen[c.Address] {
				continue
			}
			seen[c.Address] = true
			merged = append(merged, c)
		}
	}

	if failed == len(s.sources) {
		return nil, fmt.Errorf("all %d market sources failed", failed)
	}

	// Обновляем кэш цен последнего тика
	s.mu.Lock()
	s.lastSeen = make(map[string]float64, len(merged))
	for _, c := range merged {
		s.lastSeen[c.Address] = c.PriceUsd
	}
	s.mu.Unlock()

	return merged, nil
}

// Price возвращает цену токена: сперва из последнего сканирования,
// затем точечным запросом к DexScreener
func (s *Scanner) Price(ctx context.Context, address string) (float64, error) {
	s.mu.RLock()
	price, ok := s.lastSeen[address]
	s.mu.RUnlock()
	if ok && price > 0 {
		return price, nil
	}

	if s.prices == nil {
		return 0, fmt.Errorf("no price source for %s", address)
	}
	return s.prices.Price(ctx, address)
}

func (s *Scanner) fetchWithRetry(ctx context.Context, src Source) ([]models.Candidate, error) {
	return retry.DoWithResult(ctx, func() ([]models.Candidate, error) {
		return src.Fetch(ctx)
	}, s.retry)
}

// Проверка соответствия интерфейсу движка
var _ bot.MarketData = (*Scanner)(nil)
