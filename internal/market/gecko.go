package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memebot/internal/models"
	"memebot/pkg/ratelimit"
)

// DefaultGeckoURL - публичный API GeckoTerminal (без ключа)
const DefaultGeckoURL = "https://api.geckoterminal.com/api/v2"

// GeckoSource - резервный источник кандидатов (trending пулы Solana)
type GeckoSource struct {
	baseURL string
	client  *http.Client
	limiter *ratelimit.RateLimiter
	max     int
}

// NewGeckoSource создаёт источник GeckoTerminal
func NewGeckoSource(baseURL string, client *http.Client, rps float64, max int) *GeckoSource {
	if baseURL == "" {
		baseURL = DefaultGeckoURL
	}
	return &GeckoSource{
		baseURL: baseURL,
		client:  client,
		limiter: ratelimit.NewRateLimiter(rps, rps),
		max:     max,
	}
}

// Name возвращает идентификатор источника
func (s *GeckoSource) Name() string { return "gecko" }

// GeckoTerminal использует формат JSON:API: данные в data[].attributes,
// числа приходят строками
type geckoResponse struct {
	Data []struct {
		Attributes geckoPoolAttributes `json:"attributes"`
	} `json:"data"`
}

type geckoPoolAttributes struct {
	Name              string `json:"name"` // "SYMBOL / SOL"
	BaseTokenPriceUsd string `json:"base_token_price_usd"`
	PoolCreatedAt     string `json:"pool_created_at"` // RFC3339
	ReserveInUsd      string `json:"reserve_in_usd"`
	Address           string `json:"address"`
	PriceChange       struct {
		H1 string `json:"h1"`
	} `json:"price_change_percentage"`
	Volume struct {
		H24 string `json:"h24"`
	} `json:"volume_usd"`
}

// Fetch возвращает trending пулы сети Solana
func (s *GeckoSource) Fetch(ctx context.Context) ([]models.Candidate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := s.baseURL + "/networks/solana/trending_pools"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("gecko: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gecko: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gecko: %w", err)
	}

	var parsed geckoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("gecko: decode: %w", err)
	}

	now := time.Now()
	out := make([]models.Candidate, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		c, ok := item.Attributes.toCandidate(now)
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

func (a geckoPoolAttributes) toCandidate(now time.Time) (models.Candidate, bool) {
	price := parseFloat(a.BaseTokenPriceUsd)
	if price <= 0 || a.Address == "" {
		return models.Candidate{}, false
	}

	var ageSec int64
	if created, err := time.Parse(time.RFC3339, a.PoolCreatedAt); err == nil {
		ageSec = int64(now.Sub(created).Seconds())
	}

	symbol := a.Name
	if i := strings.IndexByte(symbol, ' '); i > 0 {
		symbol = symbol[:i]
	}

	return models.Candidate{
		Address:        a.Address,
		Symbol:         symbol,
		PriceUsd:       price,
		PriceChangePct: parseFloat(a.PriceChange.H1),
		LiquidityUsd:   parseFloat(a.ReserveInUsd),
		Volume24hUsd:   parseFloat(a.Volume.H24),
		PoolAgeSec:     ageSec,
		QuoteSymbol:    "SOL",
		Source:         "gecko",
	}, true
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

