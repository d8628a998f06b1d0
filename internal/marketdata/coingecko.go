package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptofolio/internal/models"
	"cryptofolio/pkg/utils"
)

// DefaultBaseURL is the public CoinGecko API endpoint.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoConfig holds the price client configuration.
type CoinGeckoConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// CoinGeckoClient fetches simple spot prices from the CoinGecko API.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryCfg   utils.RetryConfig
}

// NewCoinGeckoClient creates a price client. The request timeout defaults
// to 10 seconds when unset.
func NewCoinGeckoClient(cfg CoinGeckoConfig) *CoinGeckoClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retryCfg := utils.DefaultRetryConfig()
	retryCfg.MaxAttempts = 2

	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retryCfg,
	}
}

// Prices returns current USD prices for the given asset ids. The response
// may omit ids the API does not know; those assets stay unpriced. A network
// or decode failure returns an empty map plus the error.
func (c *CoinGeckoClient) Prices(ctx context.Context, ids []string) (models.MarketData, error) {
	if len(ids) == 0 {
		return models.MarketData{}, nil
	}

	prices, err := utils.RetryWithResult(ctx, c.retryCfg, func() (models.MarketData, error) {
		return c.fetch(ctx, ids)
	})
	if err != nil {
		return models.MarketData{}, err
	}
	return prices, nil
}

func (c *CoinGeckoClient) fetch(ctx context.Context, ids []string) (models.MarketData, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")

	endpoint := c.baseURL + "/simple/price?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	// Response shape: {"bitcoin": {"usd": 64231.0}, ...}
	var payload map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding price response: %w", err)
	}

	prices := make(models.MarketData, len(payload))
	for id, quote := range payload {
		prices[id] = quote.USD
	}
	return prices, nil
}
