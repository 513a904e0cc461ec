package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"memebot/internal/models"
	"memebot/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultJupiterURL - API агрегатора Jupiter (v6)
const DefaultJupiterURL = "https://quote-api.jup.ag/v6"

const lamportsPerSol = 1e9

// JupiterExecutor исполняет свопы через агрегатор Jupiter
//
// Quote запрашивает маршрут, Swap строит транзакцию, подписывает её
// локальным кошельком и отправляет в RPC. Для Swap нужен сырой JSON
// последней котировки - он кэшируется по паре минтов.
type JupiterExecutor struct {
	baseURL     string
	rpcEndpoint string
	client      *http.Client
	wallet      *Wallet
	slippageBps int
	logger      *zap.Logger

	mu        sync.Mutex
	rawQuotes map[string][]byte // ключ: inputMint|outputMint
}

// NewJupiterExecutor создаёт исполнителя для режима REAL
func NewJupiterExecutor(baseURL, rpcEndpoint string, client *http.Client, wallet *Wallet, slippageBps int, logger *zap.Logger) *JupiterExecutor {
	if baseURL == "" {
		baseURL = DefaultJupiterURL
	}
	return &JupiterExecutor{
		baseURL:     baseURL,
		rpcEndpoint: rpcEndpoint,
		client:      client,
		wallet:      wallet,
		slippageBps: slippageBps,
		logger:      logger,
		rawQuotes:   make(map[string][]byte),
	}
}

type jupiterQuoteResponse struct {
	InAmount  string `json:"inAmount"`
	OutAmount string `json:"outAmount"`
	RoutePlan []struct {
		SwapInfo struct {
			Label string `json:"label"`
		} `json:"swapInfo"`
	} `json:"routePlan"`
}

// Quote запрашивает маршрут свопа у Jupiter
func (e *JupiterExecutor) Quote(ctx context.Context, inputMint, outputMint string, amount float64) (*models.Quote, error) {
	atomic := toAtomic(inputMint, amount)
	if atomic <= 0 {
		return nil, fmt.Errorf("jupiter: amount must be positive, got %v", amount)
	}

	url := fmt.Sprintf("%s/quote?inputMint=%s&outputMint=%s&amount=%d&slippageBps=%d",
		e.baseURL, inputMint, outputMint, atomic, e.slippageBps)

	body, err := e.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var parsed jupiterQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("jupiter: decode quote: %w", err)
	}

	outAtomic, err := strconv.ParseInt(parsed.OutAmount, 10, 64)
	if err != nil || outAtomic <= 0 {
		return nil, fmt.Errorf("jupiter: bad outAmount %q", parsed.OutAmount)
	}

	venues := make([]string, 0, len(parsed.RoutePlan))
	for _, hop := range parsed.RoutePlan {
		venues = append(venues, hop.SwapInfo.Label)
	}

	e.mu.Lock()
	e.rawQuotes[inputMint+"|"+outputMint] = body
	e.mu.Unlock()

	return &models.Quote{
		InputMint:  inputMint,
		OutputMint: outputMint,
		InAmount:   amount,
		OutAmount:  fromAtomic(outputMint, outAtomic),
		Venues:     venues,
	}, nil
}

// Swap строит, подписывает и отправляет транзакцию свопа
func (e *JupiterExecutor) Swap(ctx context.Context, q *models.Quote) (*models.TxResult, error) {
	e.mu.Lock()
	rawQuote, ok := e.rawQuotes[q.InputMint+"|"+q.OutputMint]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("jupiter: no cached quote for %s -> %s", q.InputMint, q.OutputMint)
	}

	reqBody, err := json.Marshal(map[string]interface{}{
		"quoteResponse":    jsoniter.RawMessage(rawQuote),
		"userPublicKey":    e.wallet.Address(),
		"wrapAndUnwrapSol": true,
	})
	if err != nil {
		return nil, fmt.Errorf("jupiter: encode swap request: %w", err)
	}

	body, err := e.post(ctx, e.baseURL+"/swap", reqBody)
	if err != nil {
		return nil, err
	}

	var swapResp struct {
		SwapTransaction string `json:"swapTransaction"`
	}
	if err := json.Unmarshal(body, &swapResp); err != nil {
		return nil, fmt.Errorf("jupiter: decode swap response: %w", err)
	}
	if swapResp.SwapTransaction == "" {
		return nil, fmt.Errorf("jupiter: empty swap transaction")
	}

	signed, err := e.wallet.SignTransaction(swapResp.SwapTransaction)
	if err != nil {
		return nil, err
	}

	signature, err := e.sendTransaction(ctx, signed)
	if err != nil {
		return nil, err
	}

	e.logger.Info("swap submitted",
		zap.String("input_mint", q.InputMint),
		zap.String("output_mint", q.OutputMint),
		zap.String("signature", signature))

	return &models.TxResult{
		Signature: signature,
		OutAmount: q.OutAmount,
	}, nil
}

// Balance возвращает баланс SOL кошелька через RPC
func (e *JupiterExecutor) Balance(ctx context.Context) (float64, error) {
	var resp struct {
		Result struct {
			Value int64 `json:"value"`
		} `json:"result"`
		Error *rpcError `json:"error"`
	}
	if err := e.rpcCall(ctx, "getBalance", []interface{}{e.wallet.Address()}, &resp); err != nil {
		return 0, err
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("jupiter: getBalance: %s", resp.Error.Message)
	}
	return float64(resp.Result.Value) / lamportsPerSol, nil
}

// sendTransaction отправляет подписанную транзакцию в RPC
func (e *JupiterExecutor) sendTransaction(ctx context.Context, signedBase64 string) (string, error) {
	var resp struct {
		Result string    `json:"result"`
		Error  *rpcError `json:"error"`
	}
	params := []interface{}{signedBase64, map[string]string{"encoding": "base64"}}
	if err := e.rpcCall(ctx, "sendTransaction", params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("jupiter: sendTransaction: %s", resp.Error.Message)
	}
	if resp.Result == "" {
		return "", fmt.Errorf("jupiter: empty transaction signature")
	}
	return resp.Result, nil
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *JupiterExecutor) rpcCall(ctx context.Context, method string, params []interface{}, out interface{}) error {
	reqBody, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return fmt.Errorf("jupiter: encode rpc request: %w", err)
	}

	// Транзиентные сбои RPC ретраим, ответ с ошибкой в теле - нет
	body, err := retry.DoWithResult(ctx, func() ([]byte, error) {
		return e.post(ctx, e.rpcEndpoint, reqBody)
	}, retry.ConservativeConfig())
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("jupiter: decode rpc response: %w", err)
	}
	return nil
}

func (e *JupiterExecutor) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("jupiter: %w", err)
	}
	return e.do(req)
}

func (e *JupiterExecutor) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("jupiter: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *JupiterExecutor) do(req *http.Request) ([]byte, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jupiter: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jupiter: status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// toAtomic переводит количество в минимальные единицы.
// SOL имеет 9 знаков; токены уже ходят в сырых единицах
// (Quantity позиции - это outAmount котировки покупки).
func toAtomic(mint string, amount float64) int64 {
	if mint == models.WsolMint {
		return int64(amount * lamportsPerSol)
	}
	return int64(amount)
}

func fromAtomic(mint string, atomic int64) float64 {
	if mint == models.WsolMint {
		return float64(atomic) / lamportsPerSol
	}
	return float64(atomic)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
