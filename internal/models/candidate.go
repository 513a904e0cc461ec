package models

// Candidate представляет нормализованный снимок торгуемой пары на момент одного тика.
//
// Создаётся сканером заново на каждом тике из данных внешних провайдеров
// (DexScreener, GeckoTerminal, Birdeye) и после создания НЕ изменяется.
// Ключом служит mint адрес токена.
type Candidate struct {
	Address        string  `json:"address"`          // mint адрес токена (уникальный ключ)
	Symbol         string  `json:"symbol"`           // тикер, только для отображения
	PriceUsd       float64 `json:"price_usd"`        // текущая цена в USD (референсная единица)
	PriceChangePct float64 `json:"price_change_pct"` // изменение цены за окно, % (со знаком)
	LiquidityUsd   float64 `json:"liquidity_usd"`    // ликвидность пула, USD
	Volume24hUsd   float64 `json:"volume_24h_usd"`   // объём за 24 часа, USD
	PoolAgeSec     int64   `json:"pool_age_sec"`     // возраст пула, секунды
	QuoteSymbol    string  `json:"quote_symbol"`     // парный актив (SOL, USDC)
	Source         string  `json:"source"`           // источник данных (dexscreener, gecko, birdeye)
}

// Tier - дискретная оценка качества кандидата
type Tier string

// Уровни качества кандидата
const (
	TierAPlus    Tier = "A_PLUS"   // все жёсткие пороги выполнены
	TierA        Tier = "A"        // смягчённые пороги (90% ликвидности, 50% возраста)
	TierRejected Tier = "REJECTED" // не торгуем
)

// Accepted возвращает true если уровень допускает вход в позицию
func (t Tier) Accepted() bool {
	return t == TierAPlus || t == TierA
}
