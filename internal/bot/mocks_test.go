package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"memebot/internal/models"
)

// fakeExecutor - управляемый исполнитель для тестов
//
// По умолчанию котирует любой своп 1:1 через Raydium и исполняет успешно.
type fakeExecutor struct {
	mu sync.Mutex

	balance float64
	venues  []string

	quoteErr map[string]error // ключ - mint токена (не-WSOL сторона свопа)
	swapErr  map[string]error

	quotes []string // журнал запрошенных котировок "in->out"
	swaps  []string // журнал исполненных свопов
}

func newFakeExecutor(balance float64) *fakeExecutor {
	return &fakeExecutor{
		balance:  balance,
		venues:   []string{"Raydium"},
		quoteErr: make(map[string]error),
		swapErr:  make(map[string]error),
	}
}

// tokenOf возвращает mint токена в паре с WSOL
func tokenOf(inputMint, outputMint string) string {
	if inputMint == models.WsolMint {
		return outputMint
	}
	return inputMint
}

func (f *fakeExecutor) Quote(ctx context.Context, inputMint, outputMint string, amount float64) (*models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.quotes = append(f.quotes, inputMint+"->"+outputMint)

	if err, ok := f.quoteErr[tokenOf(inputMint, outputMint)]; ok {
		return nil, err
	}

	venues := make([]string, len(f.venues))
	copy(venues, f.venues)
	return &models.Quote{
		InputMint:  inputMint,
		OutputMint: outputMint,
		InAmount:   amount,
		OutAmount:  amount, // 1:1 для простоты
		Venues:     venues,
	}, nil
}

func (f *fakeExecutor) Swap(ctx context.Context, q *models.Quote) (*models.TxResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token := tokenOf(q.InputMint, q.OutputMint)
	if err, ok := f.swapErr[token]; ok {
		return nil, err
	}

	f.swaps = append(f.swaps, q.InputMint+"->"+q.OutputMint)
	return &models.TxResult{Signature: "sig-" + token, OutAmount: q.OutAmount}, nil
}

func (f *fakeExecutor) Balance(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

func (f *fakeExecutor) failQuotes(mint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteErr[mint] = errors.New("no route found")
}

func (f *fakeExecutor) failSwaps(mint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swapErr[mint] = errors.New("transaction failed")
}

func (f *fakeExecutor) quoteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.quotes)
}

func (f *fakeExecutor) swapCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.swaps)
}

// fakeMarket - управляемый источник рыночных данных
type fakeMarket struct {
	mu         sync.Mutex
	candidates []models.Candidate
	prices     map[string]float64
	scanErr    error
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{prices: make(map[string]float64)}
}

func (m *fakeMarket) Scan(ctx context.Context) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	out := make([]models.Candidate, len(m.candidates))
	copy(out, m.candidates)
	return out, nil
}

func (m *fakeMarket) Price(ctx context.Context, address string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	price, ok := m.prices[address]
	if !ok {
		return 0, fmt.Errorf("no price for %s", address)
	}
	return price, nil
}

func (m *fakeMarket) set(candidates []models.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = candidates
	for _, c := range candidates {
		m.prices[c.Address] = c.PriceUsd
	}
}

func (m *fakeMarket) setPrice(address string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[address] = price
}

// fakeNotifier собирает уведомления
type fakeNotifier struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func (n *fakeNotifier) Notify(notif *models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notif)
}

func (n *fakeNotifier) byType(ntype string) []*models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []*models.Notification
	for _, x := range n.notifications {
		if x.Type == ntype {
			out = append(out, x)
		}
	}
	return out
}

// fakeTradeRecorder собирает записи о сделках
type fakeTradeRecorder struct {
	mu     sync.Mutex
	trades []*models.TradeRecord
}

func (r *fakeTradeRecorder) RecordTrade(ctx context.Context, t *models.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, t)
	return nil
}

// fakeSaver считает сохранения состояния
type fakeSaver struct {
	mu             sync.Mutex
	positionSaves  int
	blacklistSaves int
	lastPositions  map[string]models.Position
	lastBlacklist  map[string]models.BlacklistEntry
}

func (s *fakeSaver) SavePositions(positions map[string]models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positionSaves++
	s.lastPositions = positions
	return nil
}

func (s *fakeSaver) SaveBlacklist(entries map[string]models.BlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklistSaves++
	s.lastBlacklist = entries
	return nil
}
