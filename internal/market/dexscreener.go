package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"memebot/internal/models"
	"memebot/pkg/ratelimit"
	"memebot/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultDexScreenerURL - публичный API DexScreener (без ключа)
const DefaultDexScreenerURL = "https://api.dexscreener.com"

// DexScreenerSource - основной источник кандидатов
//
// Используется поиск по Solana-парам; кроме сканирования умеет точечный
// запрос цены по mint адресу (для открытых позиций, выпавших из выборки).
type DexScreenerSource struct {
	baseURL string
	client  *http.Client
	limiter *ratelimit.RateLimiter
	max     int
}

// NewDexScreenerSource создаёт источник DexScreener
func NewDexScreenerSource(baseURL string, client *http.Client, rps float64, max int) *DexScreenerSource {
	if baseURL == "" {
		baseURL = DefaultDexScreenerURL
	}
	return &DexScreenerSource{
		baseURL: baseURL,
		client:  client,
		limiter: ratelimit.NewRateLimiter(rps, rps),
		max:     max,
	}
}

// Name возвращает идентификатор источника
func (s *DexScreenerSource) Name() string { return "dexscreener" }

// Ответ DexScreener: и поиск, и запрос по токену возвращают список пар
type dexScreenerResponse struct {
	Pairs []dexScreenerPair `json:"pairs"`
}

type dexScreenerPair struct {
	ChainID   string `json:"chainId"`
	BaseToken struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	QuoteToken struct {
		Symbol string `json:"symbol"`
	} `json:"quoteToken"`
	PriceUsd    string `json:"priceUsd"` // строка в API
	PriceChange struct {
		H1 float64 `json:"h1"`
	} `json:"priceChange"`
	Liquidity struct {
		Usd float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PairCreatedAt int64 `json:"pairCreatedAt"` // unix миллисекунды
}

// Fetch возвращает свежие Solana-пары из поиска DexScreener
func (s *DexScreenerSource) Fetch(ctx context.Context) ([]models.Candidate, error) {
	body, err := s.get(ctx, s.baseURL+"/latest/dex/search?q=SOL")
	if err != nil {
		return nil, err
	}

	var resp dexScreenerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("dexscreener: decode: %w", err)
	}

	now := time.Now()
	out := make([]models.Candidate, 0, len(resp.Pairs))
	for _, p := range resp.Pairs {
		if p.ChainID != "solana" || p.BaseToken.Address == "" {
			continue
		}
		c, ok := p.toCandidate(now)
		if !ok {
			continue
		}
		out = append(out, c)
		if s.max > 0 && len(out) >= s.max {
			break
		}
	}
	return out, nil
}

// Price возвращает текущую цену токена по mint адресу
func (s *DexScreenerSource) Price(ctx context.Context, address string) (float64, error) {
	body, err := s.get(ctx, s.baseURL+"/latest/dex/tokens/"+address)
	if err != nil {
		return 0, err
	}

	var resp dexScreenerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("dexscreener: decode: %w", err)
	}

	for _, p := range resp.Pairs {
		if p.ChainID != "solana" {
			continue
		}
		price, err := strconv.ParseFloat(p.PriceUsd, 64)
		if err == nil && price > 0 {
			return price, nil
		}
	}
	return 0, fmt.Errorf("dexscreener: no price for %s", address)
}

func (s *DexScreenerSource) get(ctx context.Context, url string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dexscreener: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dexscreener: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dexscreener: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// toCandidate нормализует пару; пары без цены отбрасываются
func (p dexScreenerPair) toCandidate(now time.Time) (models.Candidate, bool) {
	price, err := strconv.ParseFloat(p.PriceUsd, 64)
	if err != nil || price <= 0 {
		return models.Candidate{}, false
	}

	var ageSec int64
	if p.PairCreatedAt > 0 {
		ageSec = int64(now.Sub(utils.FromUnixMillis(p.PairCreatedAt)).Seconds())
	}

	return models.Candidate{
		Address:        p.BaseToken.Address,
		Symbol:         p.BaseToken.Symbol,
		PriceUsd:       price,
		PriceChangePct: p.PriceChange.H1,
		LiquidityUsd:   p.Liquidity.Usd,
		Volume24hUsd:   p.Volume.H24,
		PoolAgeSec:     ageSec,
		QuoteSymbol:    p.QuoteToken.Symbol,
		Source:         "dexscreener",
	}, true
}
