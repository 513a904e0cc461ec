package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"memebot/internal/models"
	"memebot/pkg/ratelimit"
)

// DefaultBirdeyeURL - API Birdeye (требует ключ)
const DefaultBirdeyeURL = "https://public-api.birdeye.so"

// BirdeyeSource - дополнительный источник кандидатов.
// Подключается только при заданном API ключе.
type BirdeyeSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *ratelimit.RateLimiter
	max     int
}

// NewBirdeyeSource создаёт источник Birdeye
func NewBirdeyeSource(baseURL, apiKey string, client *http.Client, rps float64, max int) *BirdeyeSource {
	if baseURL == "" {
		baseURL = DefaultBirdeyeURL
	}
	return &BirdeyeSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		limiter: ratelimit.NewRateLimiter(rps, rps),
		max:     max,
	}
}

// Name возвращает идентификатор источника
func (s *BirdeyeSource) Name() string { return "birdeye" }

type birdeyeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Tokens []birdeyeToken `json:"tokens"`
	} `json:"data"`
}

type birdeyeToken struct {
	Address           string  `json:"address"`
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	V24hUSD           float64 `json:"v24hUSD"`
	V24hChangePercent float64 `json:"v24hChangePercent"`
	Liquidity         float64 `json:"liquidity"`
	CreatedAt         int64   `json:"createdAt"` // unix секунды, 0 если неизвестно
}

// Fetch возвращает токены Birdeye, отсортированные по объёму
func (s *BirdeyeSource) Fetch(ctx context.Context) ([]models.Candidate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/defi/tokenlist?sort_by=v24hUSD&sort_type=desc&limit=%d", s.baseURL, s.max)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("birdeye: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("x-chain", "solana")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("birdeye: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("birdeye: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("birdeye: %w", err)
	}

	var parsed birdeyeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("birdeye: decode: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("birdeye: api returned success=false")
	}

	now := time.Now()
	out := make([]models.Candidate, 0, len(parsed.Data.Tokens))
	for _, t := range parsed.Data.Tokens {
		if t.Address == "" || t.Price <= 0 {
			continue
		}
		var ageSec int64
		if t.CreatedAt > 0 {
			ageSec = now.Unix() - t.CreatedAt
		}
		out = append(out, models.Candidate{
			Address:        t.Address,
			Symbol:         t.Symbol,
			PriceUsd:       t.Price,
			PriceChangePct: t.V24hChangePercent,
			LiquidityUsd:   t.Liquidity,
			Volume24hUsd:   t.V24hUSD,
			PoolAgeSec:     ageSec,
			QuoteSymbol:    "SOL",
			Source:         "birdeye",
		})
	}
	return out, nil
}
