package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"memebot/internal/config"
	"memebot/internal/models"
	"memebot/pkg/retry"
)

// MarketData - источник рыночных данных (реализуется internal/market)
type MarketData interface {
	// Scan возвращает свежий список кандидатов со всех источников
	Scan(ctx context.Context) ([]models.Candidate, error)

	// Price возвращает текущую цену токена, которого может не быть
	// в выборке сканера (для открытых позиций)
	Price(ctx context.Context, address string) (float64, error)
}

// Notifier - получатель событий бота (websocket hub + журнал в БД)
type Notifier interface {
	Notify(n *models.Notification)
}

// TradeRecorder - журнал закрытых сделок (реализуется internal/repository)
type TradeRecorder interface {
	RecordTrade(ctx context.Context, t *models.TradeRecord) error
}

// StateSaver - сохранение горячего состояния на диск (internal/storage)
type StateSaver interface {
	SavePositions(positions map[string]models.Position) error
	SaveBlacklist(entries map[string]models.BlacklistEntry) error
}

// Engine - однопоточный планировщик торгового цикла
//
// Каждый тик выполняет фазы строго по порядку:
// 1. Проверка флага остановки (no-op тик, сохранение состояния продолжается)
// 2. Сканирование рынка
// 3. Проверка выходов по всем открытым позициям
// 4. Ранжирование кандидатов и попытки входа до лимита позиций
// 5. Сохранение состояния
//
// Никакого параллелизма внутри тика: фазы идут последовательно, ошибка
// по одному токену логируется и не прерывает остальных. Начатый тик
// не отменяется - halt вступает в силу со следующего тика.
type Engine struct {
	cfg    *config.Config
	logger *zap.Logger

	market   MarketData
	executor Executor

	scorer     *Scorer
	sizer      *Sizer
	store      *PositionStore
	blacklist  *Blacklist
	failures   *FailureTracker
	entryGate  *EntryGate
	exitEngine *ExitEngine

	notifier Notifier
	trades   TradeRecorder
	saver    StateSaver

	// Конфигурация повторов критичной продажи
	sellRetry retry.Config

	// 1 = остановлен (no-op тики)
	halted int32

	startedAt time.Time
}

// NewEngine собирает планировщик из готовых компонентов
func NewEngine(
	cfg *config.Config,
	logger *zap.Logger,
	market MarketData,
	executor Executor,
	store *PositionStore,
	blacklist *Blacklist,
	notifier Notifier,
	trades TradeRecorder,
	saver StateSaver,
) *Engine {
	failures := NewFailureTracker()
	e := &Engine{
		cfg:        cfg,
		logger:     logger,
		market:     market,
		executor:   executor,
		scorer:     NewScorer(cfg.Strategy),
		sizer:      NewSizer(cfg.Strategy.TierPct, cfg.Strategy.MinNotional),
		store:      store,
		blacklist:  blacklist,
		failures:   failures,
		entryGate:  NewEntryGate(cfg.Strategy, store, blacklist, executor, logger),
		exitEngine: NewExitEngine(cfg.Strategy.StopLossPct, cfg.Strategy.TrailingTriggerPct, cfg.Strategy.TrailingThrowbackPct, store, logger),
		notifier:   notifier,
		trades:     trades,
		saver:      saver,
		sellRetry:  retry.AggressiveConfig(),
		startedAt:  time.Now(),
	}

	if cfg.Bot.StartHalted {
		atomic.StoreInt32(&e.halted, 1)
	}

	store.SetOnChange(e.persistPositions)
	return e
}

// Run запускает цикл тиков до отмены контекста
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("engine started",
		zap.Duration("tick_interval", e.cfg.Bot.TickInterval),
		zap.String("mode", e.cfg.Executor.Mode),
		zap.Int("max_open_positions", e.cfg.Bot.MaxOpenPositions))

	ticker := time.NewTicker(e.cfg.Bot.TickInterval)
	defer ticker.Stop()

	// Первый тик сразу, не дожидаясь интервала
	e.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick выполняет один торговый цикл
func (e *Engine) Tick(ctx context.Context) {
	start := time.Now()

	defer func() {
		UpdateStateGauges(e.store.Count(), e.blacklist.Size(time.Now()), e.IsHalted())
	}()

	if e.IsHalted() {
		e.persist()
		RecordTick("halted", time.Since(start).Seconds())
		return
	}

	candidates := e.scan(ctx)

	// Карта цен текущего тика: для позиций, попавших в выборку,
	// цена берётся без дополнительного запроса
	prices := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		prices[c.Address] = c.PriceUsd
	}

	e.evaluateExits(ctx, prices)
	e.evaluateEntries(ctx, candidates, start)

	e.persist()
	RecordTick("ok", time.Since(start).Seconds())
}

// scan опрашивает источники; ошибка сканирования не срывает тик -
// выходы проверяются по точечным запросам цен
func (e *Engine) scan(ctx context.Context) []models.Candidate {
	candidates, err := e.market.Scan(ctx)
	if err != nil {
		e.logger.Error("market scan failed", zap.Error(err))
		return nil
	}
	return candidates
}

// evaluateExits проверяет все открытые позиции на стоп-лосс и трейлинг
func (e *Engine) evaluateExits(ctx context.Context, prices map[string]float64) {
	for _, p := range e.store.List() {
		price, ok := prices[p.Address]
		if !ok {
			var err error
			price, err = e.market.Price(ctx, p.Address)
			if err != nil {
				e.logger.Warn("price lookup failed, position skipped this tick",
					zap.String("address", p.Address),
					zap.String("symbol", p.Symbol),
					zap.Error(err))
				continue
			}
		}

		decision := e.exitEngine.Evaluate(p.Address, price)
		if decision.ShouldClose {
			e.closePosition(ctx, p.Address, decision.Reason, decision.Price)
		}
	}
}

// evaluateEntries ранжирует кандидатов и пытается войти до лимита позиций
func (e *Engine) evaluateEntries(ctx context.Context, candidates []models.Candidate, now time.Time) {
	type scored struct {
		candidate models.Candidate
		tier      models.Tier
	}

	accepted := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		tier := e.scorer.Classify(c)
		RecordTier(string(tier))
		if tier.Accepted() {
			accepted = append(accepted, scored{candidate: c, tier: tier})
		}
	}

	// Детерминированное ранжирование: убывание ранга, при равенстве -
	// возрастание адреса
	sort.Slice(accepted, func(i, j int) bool {
		ri := e.rank(accepted[i].candidate)
		rj := e.rank(accepted[j].candidate)
		if ri != rj {
			return ri > rj
		}
		return accepted[i].candidate.Address < accepted[j].candidate.Address
	})

	for _, s := range accepted {
		if !e.store.CanOpenMore() {
			break
		}

		if err := e.entryGate.Admit(ctx, s.candidate, now); err != nil {
			if errors.Is(err, ErrProbeFailed) || errors.Is(err, ErrRouteDenied) {
				e.notify(models.NotificationTypeProbeFail, models.SeverityWarn, s.candidate.Address,
					fmt.Sprintf("probe failed for %s: %v", s.candidate.Symbol, err))
			}
			e.logger.Debug("entry denied",
				zap.String("address", s.candidate.Address),
				zap.String("symbol", s.candidate.Symbol),
				zap.Error(err))
			continue
		}

		e.openPosition(ctx, s.candidate, string(s.tier), now)
	}
}

// rank возвращает значение для сортировки кандидатов
func (e *Engine) rank(c models.Candidate) float64 {
	if e.cfg.Strategy.Ranking == config.RankingComposite {
		// Моментум, взвешенный логарифмом объёма
		return c.PriceChangePct * math.Log1p(c.Volume24hUsd)
	}
	return c.PriceChangePct
}

// openPosition исполняет покупку и регистрирует позицию
func (e *Engine) openPosition(ctx context.Context, c models.Candidate, tier string, now time.Time) {
	balance, err := e.executor.Balance(ctx)
	if err != nil {
		e.logger.Error("balance lookup failed", zap.Error(err))
		return
	}

	size := e.sizer.Size(balance, tier)
	if size <= 0 {
		e.logger.Debug("zero size, entry skipped",
			zap.String("address", c.Address),
			zap.Float64("balance", balance),
			zap.String("tier", tier))
		return
	}

	quote, err := e.executor.Quote(ctx, models.WsolMint, c.Address, size)
	if err != nil {
		e.recordExecFailure(c.Address, c.Symbol, "buy", now, err)
		return
	}

	result, err := e.executor.Swap(ctx, quote)
	if err != nil {
		e.recordExecFailure(c.Address, c.Symbol, "buy", now, err)
		return
	}

	e.failures.Reset(c.Address)
	RecordTrade("buy", true)

	pos := &models.Position{
		Address:    c.Address,
		Symbol:     c.Symbol,
		EntryPrice: c.PriceUsd,
		PeakPrice:  c.PriceUsd,
		Quantity:   result.OutAmount,
		SizeQuote:  size,
		Tier:       models.Tier(tier),
		State:      models.PositionStateUnarmed,
		OpenedAt:   now,
	}
	if !e.store.Open(pos) {
		return
	}

	e.logger.Info("position opened",
		zap.String("address", c.Address),
		zap.String("symbol", c.Symbol),
		zap.String("tier", tier),
		zap.Float64("entry_price", c.PriceUsd),
		zap.Float64("size_quote", size))

	e.notify(models.NotificationTypeBuy, models.SeverityInfo, c.Address,
		fmt.Sprintf("BUY %s @ %.8f (%s, %.4f SOL)", c.Symbol, c.PriceUsd, tier, size))
}

// closePosition исполняет продажу; неудача оставляет позицию открытой
func (e *Engine) closePosition(ctx context.Context, address, reason string, price float64) {
	p, ok := e.store.Get(address)
	if !ok {
		return
	}

	prevState := p.State
	if !e.store.SetState(address, models.PositionStateClosing) {
		return
	}

	// Продажа критична: повторяем с бэкоффом перед тем как сдаться
	var result *models.TxResult
	err := retry.Do(ctx, func() error {
		quote, qerr := e.executor.Quote(ctx, address, models.WsolMint, p.Quantity)
		if qerr != nil {
			return qerr
		}
		var serr error
		result, serr = e.executor.Swap(ctx, quote)
		return serr
	}, e.sellRetry)

	now := time.Now()
	if err != nil {
		// Откат: позиция остаётся открытой, счётчик неудач растёт
		e.store.SetState(address, prevState)
		e.recordExecFailure(address, p.Symbol, "sell", now, err)
		RecordTrade("sell", false)
		return
	}

	e.failures.Reset(address)
	e.store.SetState(address, models.PositionStateClosed)
	closed, ok := e.store.Close(address)
	if !ok {
		return
	}

	pnl := closed.GainFromEntry(price)
	RecordTrade("sell", true)
	RecordExit(reason, pnl)

	e.logger.Info("position closed",
		zap.String("address", address),
		zap.String("symbol", closed.Symbol),
		zap.String("reason", reason),
		zap.Float64("exit_price", price),
		zap.Float64("pnl_pct", pnl*100))

	record := &models.TradeRecord{
		Address:    closed.Address,
		Symbol:     closed.Symbol,
		Tier:       closed.Tier,
		EntryPrice: closed.EntryPrice,
		ExitPrice:  price,
		PnlPct:     pnl * 100,
		Reason:     reason,
		Signature:  result.Signature,
		OpenedAt:   closed.OpenedAt,
		ClosedAt:   now,
	}
	if e.trades != nil {
		if err := e.trades.RecordTrade(ctx, record); err != nil {
			e.logger.Error("trade record failed", zap.Error(err))
		}
	}

	e.notify(models.NotificationTypeSell, models.SeverityInfo, address,
		fmt.Sprintf("SELL %s @ %.8f (%s, pnl %+.1f%%)", closed.Symbol, price, reason, pnl*100))
}

// recordExecFailure учитывает неудачу исполнения и блокирует адрес
// после серии подряд идущих неудач
func (e *Engine) recordExecFailure(address, symbol, side string, now time.Time, err error) {
	count := e.failures.RecordFailure(address)
	ExecFailures.WithLabelValues(side).Inc()

	e.logger.Warn("swap execution failed",
		zap.String("address", address),
		zap.String("symbol", symbol),
		zap.String("side", side),
		zap.Int("consecutive_failures", count),
		zap.Error(err))

	if count >= e.cfg.Strategy.ExecFailThreshold {
		e.blacklist.Add(address, symbol, models.BlacklistReasonExecFailures, e.cfg.Strategy.ExecFailCooldown, now)
		e.failures.Reset(address)

		e.logger.Warn("token blacklisted after repeated execution failures",
			zap.String("address", address),
			zap.Int("failures", count),
			zap.Duration("cooldown", e.cfg.Strategy.ExecFailCooldown))

		e.notify(models.NotificationTypeBlacklist, models.SeverityWarn, address,
			fmt.Sprintf("%s blacklisted for %s after %d execution failures", symbol, e.cfg.Strategy.ExecFailCooldown, count))
	}
}

// ============================================================
// Управление и статус
// ============================================================

// Halt останавливает торговлю со следующего тика
func (e *Engine) Halt() {
	if atomic.CompareAndSwapInt32(&e.halted, 0, 1) {
		e.logger.Info("engine halted")
		e.notify(models.NotificationTypeHalt, models.SeverityWarn, "", "trading halted")
	}
}

// Resume возобновляет торговлю
func (e *Engine) Resume() {
	if atomic.CompareAndSwapInt32(&e.halted, 1, 0) {
		e.logger.Info("engine resumed")
		e.notify(models.NotificationTypeResume, models.SeverityInfo, "", "trading resumed")
	}
}

// IsHalted сообщает текущее значение флага остановки
func (e *Engine) IsHalted() bool {
	return atomic.LoadInt32(&e.halted) == 1
}

// Status - снимок состояния движка для API
type Status struct {
	Halted        bool      `json:"halted"`
	Mode          string    `json:"mode"`
	OpenPositions int       `json:"open_positions"`
	MaxPositions  int       `json:"max_positions"`
	BlacklistSize int       `json:"blacklist_size"`
	StartedAt     time.Time `json:"started_at"`
}

// SnapshotStatus возвращает снимок состояния движка
func (e *Engine) SnapshotStatus() Status {
	return Status{
		Halted:        e.IsHalted(),
		Mode:          e.cfg.Executor.Mode,
		OpenPositions: e.store.Count(),
		MaxPositions:  e.cfg.Bot.MaxOpenPositions,
		BlacklistSize: e.blacklist.Size(time.Now()),
		StartedAt:     e.startedAt,
	}
}

// ClosePositionManually принудительно закрывает позицию (API)
func (e *Engine) ClosePositionManually(ctx context.Context, address string) error {
	p, ok := e.store.Get(address)
	if !ok {
		return fmt.Errorf("position not found: %s", address)
	}

	price, err := e.market.Price(ctx, address)
	if err != nil {
		return fmt.Errorf("price lookup: %w", err)
	}

	e.closePosition(ctx, p.Address, models.CloseReasonManual, price)
	if e.store.Has(address) {
		return fmt.Errorf("close execution failed for %s", address)
	}
	return nil
}

// ============================================================
// Сохранение состояния
// ============================================================

// persist сохраняет позиции и чёрный список на диск
func (e *Engine) persist() {
	e.persistPositions()
	if e.saver == nil {
		return
	}
	if err := e.saver.SaveBlacklist(e.blacklist.Snapshot()); err != nil {
		e.logger.Error("blacklist snapshot failed", zap.Error(err))
	}
}

// persistPositions вызывается и как хук стора после каждой мутации
func (e *Engine) persistPositions() {
	if e.saver == nil {
		return
	}
	if err := e.saver.SavePositions(e.store.Snapshot()); err != nil {
		e.logger.Error("positions snapshot failed", zap.Error(err))
	}
}

func (e *Engine) notify(ntype, severity, address, message string) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(&models.Notification{
		Timestamp: time.Now(),
		Type:      ntype,
		Severity:  severity,
		Address:   address,
		Message:   message,
	})
}
