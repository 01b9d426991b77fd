package profit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/pkg/httpx"
)

const (
	baseURL      = "https://api.profit.com/data-api"
	defaultLimit = 20
)

// Stock is the quote payload shared by the reference and quote endpoints.
type Stock struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Ticker string  `json:"ticker"`
	Broker string  `json:"broker"`
}

type stocksResponse struct {
	Data []Stock `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient httpx.Doer
	header     http.Header
	query      url.Values
	limit      int
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

// WithLimit 快照返回的股票数量
func WithLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

func NewClient(token string, opts ...Option) *Client {
	client := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		limit:      defaultLimit,
	}
	client.header.Set("Accept", "application/json")
	if token != "" {
		client.query.Set("token", token)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Stocks returns the live US stock listing.
func (c *Client) Stocks(ctx context.Context) ([]Stock, error) {
	query := c.cloneQuery()
	query.Set("limit", strconv.Itoa(c.limit))
	query.Set("country", "United States")
	query.Set("available_data", "live")
	query.Set("currency", "USD")

	var body stocksResponse
	if err := c.get(ctx, "/reference/stocks", query, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// Quote returns errs.ErrNotFound when the symbol is unknown upstream.
func (c *Client) Quote(ctx context.Context, symbol string) (Stock, error) {
	var stock Stock
	if err := c.get(ctx, "/market-data/quote/"+url.PathEscape(symbol), c.cloneQuery(), &stock); err != nil {
		return Stock{}, err
	}
	if stock.Symbol == "" {
		return Stock{}, fmt.Errorf("%w: stock %s", errs.ErrNotFound, symbol)
	}
	return stock, nil
}

func (c *Client) cloneQuery() url.Values {
	query := url.Values{}
	for k, v := range c.query {
		query[k] = append([]string(nil), v...)
	}
	return query
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: profit: %w", errs.ErrTransport, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: profit %s", errs.ErrNotFound, path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: profit: unauthorized", errs.ErrTransport)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: profit: rate limited", errs.ErrTransport)
	default:
		return fmt.Errorf("%w: profit: unexpected status code %d", errs.ErrTransport, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: profit: decoding %s response: %w", errs.ErrTransport, path, err)
	}
	return nil
}
