package bot

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"memebot/internal/models"
)

// PositionStore - единственный владелец открытых позиций
//
// Все мутации идут через методы стора; после каждой мутации вызывается
// onChange (снапшот на диск). Дубликат открытия и закрытие отсутствующей
// позиции - это no-op с записью в лог, не ошибка: планировщик не должен
// падать из-за рассинхронизации одного токена.
type PositionStore struct {
	mu        sync.RWMutex
	positions map[string]*models.Position
	maxOpen   int
	logger    *zap.Logger

	// Вызывается после каждой мутации (вне блокировки)
	onChange func()
}

// NewPositionStore создаёт стор с лимитом одновременных позиций
func NewPositionStore(maxOpen int, logger *zap.Logger) *PositionStore {
	return &PositionStore{
		positions: make(map[string]*models.Position),
		maxOpen:   maxOpen,
		logger:    logger,
	}
}

// SetOnChange устанавливает хук сохранения состояния
func (s *PositionStore) SetOnChange(fn func()) {
	s.onChange = fn
}

// CanOpenMore сообщает, не достигнут ли лимит открытых позиций
func (s *PositionStore) CanOpenMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.positions) < s.maxOpen
}

// Open регистрирует новую позицию
//
// Возвращает false если позиция по адресу уже открыта или достигнут
// лимит - в обоих случаях состояние не меняется.
func (s *PositionStore) Open(p *models.Position) bool {
	s.mu.Lock()

	if _, exists := s.positions[p.Address]; exists {
		s.mu.Unlock()
		s.logger.Warn("duplicate open ignored",
			zap.String("address", p.Address),
			zap.String("symbol", p.Symbol))
		return false
	}
	if len(s.positions) >= s.maxOpen {
		s.mu.Unlock()
		s.logger.Warn("open rejected: position limit reached",
			zap.String("address", p.Address),
			zap.Int("max_open", s.maxOpen))
		return false
	}

	if p.PeakPrice < p.EntryPrice {
		p.PeakPrice = p.EntryPrice
	}
	if p.State == "" {
		p.State = models.PositionStateUnarmed
	}
	s.positions[p.Address] = p
	s.mu.Unlock()

	s.notifyChange()
	return true
}

// UpdatePeak поднимает пиковую цену позиции. Пик монотонен:
// значение ниже текущего пика игнорируется.
func (s *PositionStore) UpdatePeak(address string, price float64) {
	s.mu.Lock()

	p, ok := s.positions[address]
	if !ok || price <= p.PeakPrice {
		s.mu.Unlock()
		return
	}
	p.PeakPrice = price
	s.mu.Unlock()

	s.notifyChange()
}

// SetState переводит позицию в новое состояние с проверкой допустимости
func (s *PositionStore) SetState(address, state string) bool {
	s.mu.Lock()

	p, ok := s.positions[address]
	if !ok {
		s.mu.Unlock()
		return false
	}
	if p.State == state {
		s.mu.Unlock()
		return true
	}
	if !CanTransition(p.State, state) {
		s.mu.Unlock()
		s.logger.Error("invalid state transition",
			zap.String("address", address),
			zap.String("from", p.State),
			zap.String("to", state))
		return false
	}
	p.State = state
	s.mu.Unlock()

	s.notifyChange()
	return true
}

// Close удаляет позицию из стора и возвращает её.
// Закрытие отсутствующей позиции - no-op с записью в лог.
func (s *PositionStore) Close(address string) (*models.Position, bool) {
	s.mu.Lock()

	p, ok := s.positions[address]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("close ignored: position not found",
			zap.String("address", address))
		return nil, false
	}
	delete(s.positions, address)
	s.mu.Unlock()

	s.notifyChange()
	return p, true
}

// Get возвращает копию позиции по адресу
func (s *PositionStore) Get(address string) (models.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[address]
	if !ok {
		return models.Position{}, false
	}
	return *p, true
}

// Has сообщает, открыта ли позиция по адресу
func (s *PositionStore) Has(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.positions[address]
	return ok
}

// List возвращает копии открытых позиций, отсортированные по адресу
// (детерминированный порядок обхода в тике)
func (s *PositionStore) List() []models.Position {
	s.mu.RLock()
	out := make([]models.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, *p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Count возвращает число открытых позиций
func (s *PositionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.positions)
}

// Snapshot возвращает копию всех позиций для сохранения на диск
func (s *PositionStore) Snapshot() map[string]models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Position, len(s.positions))
	for k, v := range s.positions {
		out[k] = *v
	}
	return out
}

// Restore загружает позиции из снапшота (восстановление после рестарта).
// Позиции в переходном состоянии CLOSING возвращаются в открытое:
// попытка закрытия не пережила рестарт и будет повторена движком.
func (s *PositionStore) Restore(positions map[string]models.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range positions {
		p := v
		if p.State == models.PositionStateClosing || p.State == models.PositionStateClosed {
			p.State = models.PositionStateUnarmed
		}
		if p.PeakPrice < p.EntryPrice {
			p.PeakPrice = p.EntryPrice
		}
		s.positions[k] = &p
	}

	if len(positions) > 0 {
		s.logger.Info("positions restored from snapshot",
			zap.Int("count", len(positions)))
	}
}

func (s *PositionStore) notifyChange() {
	if s.onChange != nil {
		s.onChange()
	}
}
