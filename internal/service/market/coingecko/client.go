package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/pkg/httpx"
	"github.com/samber/lo"
)

const baseURL = "https://api.coingecko.com/api/v3"

// Coin is one row of GET /coins/markets.
type Coin struct {
	Id           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	CurrentPrice *float64 `json:"current_price"`
	High24h      *float64 `json:"high_24h"`
	Low24h       *float64 `json:"low_24h"`
}

type Client struct {
	baseURL    string
	httpClient httpx.Doer
	header     http.Header
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient httpx.Doer) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient key 为空时使用公共额度
func NewClient(key string, opts ...Option) *Client {
	client := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	client.header.Set("Accept", "application/json")
	if key != "" {
		client.header.Set("x-cg-demo-api-key", key)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Markets returns USD market data of the given symbols in one request.
func (c *Client) Markets(ctx context.Context, symbols []string) ([]Coin, error) {
	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("symbols", strings.Join(lo.Map(symbols, func(item string, index int) string {
		return strings.ToLower(item)
	}), ","))

	reqURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko: %w", errs.ErrTransport, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: coingecko: unauthorized", errs.ErrTransport)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: coingecko: rate limited", errs.ErrTransport)
	default:
		return nil, fmt.Errorf("%w: coingecko: unexpected status code %d", errs.ErrTransport, res.StatusCode)
	}

	var coins []Coin
	if err := json.NewDecoder(res.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("%w: coingecko: decoding markets response: %w", errs.ErrTransport, err)
	}
	return coins, nil
}
