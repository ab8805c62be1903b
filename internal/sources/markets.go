package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pulsefeed/pulsefeed/internal/common"
	"github.com/pulsefeed/pulsefeed/internal/models"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultMarketTimeout is the default HTTP timeout for the markets endpoint.
	DefaultMarketTimeout = 15 * time.Second

	// DefaultMarketRateLimit is the default rate limit (requests per second).
	DefaultMarketRateLimit = 5
)

// marketRow is one element of the markets JSON array. Missing numeric fields
// decode to zero, which is the required defaulting.
type marketRow struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	CurrentPrice   float64 `json:"current_price"`
	MarketCap      float64 `json:"market_cap"`
	TotalVolume    float64 `json:"total_volume"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
	MarketCapRank  int     `json:"market_cap_rank"`
}

// MarketClient fetches market quotes from a JSON markets endpoint.
type MarketClient struct {
	baseURL    string
	currency   string
	perPage    int
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// MarketOption configures the MarketClient.
type MarketOption func(*MarketClient)

// WithMarketHTTPClient sets a custom HTTP client.
func WithMarketHTTPClient(httpClient *http.Client) MarketOption {
	return func(c *MarketClient) {
		c.httpClient = httpClient
	}
}

// WithMarketRateLimit sets a custom rate limit.
func WithMarketRateLimit(requestsPerSecond int) MarketOption {
	return func(c *MarketClient) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewMarketClient creates a market-data client from configuration.
func NewMarketClient(config common.MarketSourceConfig, logger arbor.ILogger, opts ...MarketOption) *MarketClient {
	c := &MarketClient{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		currency:  config.Currency,
		perPage:   config.PerPage,
		userAgent: config.UserAgent,
		httpClient: &http.Client{
			Timeout: common.ParseDurationOr(config.RequestTimeout, DefaultMarketTimeout),
		},
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(DefaultMarketRateLimit), DefaultMarketRateLimit),
	}
	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves one page of market quotes ordered by market cap. Records come
// back in rank order; the order is preserved.
func (c *MarketClient) Fetch(ctx context.Context) ([]*models.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Source: "markets", Err: err}
	}

	params := url.Values{}
	params.Set("vs_currency", c.currency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", fmt.Sprintf("%d", c.perPage))
	params.Set("page", "1")

	reqURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("url", c.baseURL+"/coins/markets").
		Msg("Markets API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: "markets", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: "markets", StatusCode: resp.StatusCode}
	}

	var rows []marketRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &FetchError{Source: "markets", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	now := time.Now().UTC()
	quotes := make([]*models.Quote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, &models.Quote{
			Symbol:     strings.ToUpper(row.Symbol),
			Name:       row.Name,
			Price:      row.CurrentPrice,
			MarketCap:  row.MarketCap,
			Volume24h:  row.TotalVolume,
			Change24h:  row.PriceChange24h,
			Rank:       row.MarketCapRank,
			CapturedAt: now,
		})
	}

	c.logger.Debug().
		Int("count", len(quotes)).
		Msg("Market quotes normalized")

	return quotes, nil
}
