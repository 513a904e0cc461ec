package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"memebot/internal/config"
	"memebot/internal/models"
)

// Причины отказа во входе
var (
	ErrAlreadyOpen    = errors.New("position already open")
	ErrBlacklisted    = errors.New("token is blacklisted")
	ErrNotWhitelisted = errors.New("token is not in whitelist")
	ErrProbeFailed    = errors.New("honeypot probe failed")
	ErrRouteDenied    = errors.New("route venue not allowed")
)

// Executor - исполнитель свопов (Jupiter в REAL, симулятор в SIMU)
//
// Гейт и движок используют один и тот же интерфейс: зонд проходит тем же
// путём, что и реальная сделка.
type Executor interface {
	// Quote запрашивает котировку свопа amount входного актива
	Quote(ctx context.Context, inputMint, outputMint string, amount float64) (*models.Quote, error)

	// Swap исполняет своп по котировке
	Swap(ctx context.Context, q *models.Quote) (*models.TxResult, error)

	// Balance возвращает доступный баланс квотируемого актива
	Balance(ctx context.Context) (float64, error)
}

// EntryGate - последний рубеж перед открытием позиции
//
// Порядок проверок (дешёвые раньше сетевых):
// 1. Позиция по адресу уже открыта - отказ
// 2. Адрес в чёрном списке - отказ
// 3. Белый список задан и адрес не в нём - отказ
// 4. Honeypot-зонд: котировка в обе стороны на probeNotional; обе должны
//    пройти, и каждая площадка маршрута должна быть в allow-list
//    (в permissive режиме - только первая). Провал зонда блокирует
//    адрес на probeCooldown.
type EntryGate struct {
	store     *PositionStore
	blacklist *Blacklist
	executor  Executor
	logger    *zap.Logger

	probeNotional float64
	probeCooldown time.Duration
	allowedVenues map[string]bool
	routeCheck    string
	whitelist     map[string]bool
}

// NewEntryGate создаёт гейт входа
func NewEntryGate(cfg config.StrategyConfig, store *PositionStore, blacklist *Blacklist, executor Executor, logger *zap.Logger) *EntryGate {
	allowed := make(map[string]bool, len(cfg.AllowedVenues))
	for _, v := range cfg.AllowedVenues {
		allowed[v] = true
	}

	var whitelist map[string]bool
	if len(cfg.Whitelist) > 0 {
		whitelist = make(map[string]bool, len(cfg.Whitelist))
		for _, a := range cfg.Whitelist {
			whitelist[a] = true
		}
	}

	return &EntryGate{
		store:         store,
		blacklist:     blacklist,
		executor:      executor,
		logger:        logger,
		probeNotional: cfg.ProbeNotional,
		probeCooldown: cfg.ProbeCooldown,
		allowedVenues: allowed,
		routeCheck:    cfg.RouteCheck,
		whitelist:     whitelist,
	}
}

// Admit решает, допускается ли кандидат к входу
//
// Возвращает nil при допуске. Ошибка всегда оборачивает одну из
// сентинельных причин (errors.Is).
func (g *EntryGate) Admit(ctx context.Context, c models.Candidate, now time.Time) error {
	if g.store.Has(c.Address) {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, c.Address)
	}

	if g.blacklist.Contains(c.Address, now) {
		return fmt.Errorf("%w: %s", ErrBlacklisted, c.Address)
	}

	if g.whitelist != nil && !g.whitelist[c.Address] {
		return fmt.Errorf("%w: %s", ErrNotWhitelisted, c.Address)
	}

	if err := g.probe(ctx, c); err != nil {
		ProbeFailures.Inc()
		g.blacklist.Add(c.Address, c.Symbol, models.BlacklistReasonProbe, g.probeCooldown, now)
		g.logger.Warn("probe failed, token blacklisted",
			zap.String("address", c.Address),
			zap.String("symbol", c.Symbol),
			zap.Duration("cooldown", g.probeCooldown),
			zap.Error(err))
		return err
	}

	return nil
}

// probe выполняет honeypot-зонд: котировка покупки и обратной продажи
func (g *EntryGate) probe(ctx context.Context, c models.Candidate) error {
	buy, err := g.executor.Quote(ctx, models.WsolMint, c.Address, g.probeNotional)
	if err != nil {
		return fmt.Errorf("%w: buy quote: %v", ErrProbeFailed, err)
	}
	if buy.OutAmount <= 0 {
		return fmt.Errorf("%w: buy quote returned zero out amount", ErrProbeFailed)
	}
	if err := g.checkRoute(buy.Venues); err != nil {
		return err
	}

	sell, err := g.executor.Quote(ctx, c.Address, models.WsolMint, buy.OutAmount)
	if err != nil {
		return fmt.Errorf("%w: sell quote: %v", ErrProbeFailed, err)
	}
	if sell.OutAmount <= 0 {
		return fmt.Errorf("%w: sell quote returned zero out amount", ErrProbeFailed)
	}
	if err := g.checkRoute(sell.Venues); err != nil {
		return err
	}

	return nil
}

// checkRoute проверяет площадки маршрута против allow-list
//
// strict: каждый хоп маршрута должен быть разрешён
// permissive: достаточно первого хопа
func (g *EntryGate) checkRoute(venues []string) error {
	if len(venues) == 0 {
		return fmt.Errorf("%w: empty route", ErrRouteDenied)
	}

	toCheck := venues
	if g.routeCheck == config.RouteCheckPermissive {
		toCheck = venues[:1]
	}

	for _, v := range toCheck {
		if !g.allowedVenues[v] {
			return fmt.Errorf("%w: %s", ErrRouteDenied, v)
		}
	}
	return nil
}
