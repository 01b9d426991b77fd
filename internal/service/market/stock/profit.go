package stock

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/KNICEX/market-pulse/internal/service/market/profit"
	"github.com/KNICEX/market-pulse/pkg/decimalx"
	"github.com/samber/lo"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrency = 8

// ProfitAPI is the part of the Profit client the adapter uses.
type ProfitAPI interface {
	Stocks(ctx context.Context) ([]profit.Stock, error)
	Quote(ctx context.Context, symbol string) (profit.Stock, error)
}

type ProfitAdapter struct {
	client         ProfitAPI
	maxConcurrency int
	limiter        ratelimit.Limiter
}

type Option func(a *ProfitAdapter)

// WithMaxConcurrency 单次 FetchMany 同时在途的请求数
func WithMaxConcurrency(n int) Option {
	return func(a *ProfitAdapter) {
		if n > 0 {
			a.maxConcurrency = n
		}
	}
}

// WithRequestsPerSecond paces per-symbol quote requests. Zero leaves them unpaced.
func WithRequestsPerSecond(rps int) Option {
	return func(a *ProfitAdapter) {
		if rps > 0 {
			a.limiter = ratelimit.New(rps)
		}
	}
}

func NewProfitAdapter(client ProfitAPI, opts ...Option) market.Adapter {
	adapter := &ProfitAdapter{
		client:         client,
		maxConcurrency: defaultMaxConcurrency,
		limiter:        ratelimit.NewUnlimited(),
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

func (a *ProfitAdapter) MarketType() entity.MarketType {
	return entity.MarketStock
}

func (a *ProfitAdapter) FetchSnapshot(ctx context.Context) ([]market.Quote, error) {
	stocks, err := a.client.Stocks(ctx)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(stocks, func(item profit.Stock, index int) (market.Quote, bool) {
		if item.Symbol == "" {
			return market.Quote{}, false
		}
		return toQuote(item)
	}), nil
}

func (a *ProfitAdapter) FetchOne(ctx context.Context, instrument entity.Instrument) (market.Quote, error) {
	return a.fetchBySymbol(ctx, instrument.Symbol)
}

// FetchMany 每个 symbol 单独请求, 失败的 symbol 直接丢弃, 结果保持输入顺序
func (a *ProfitAdapter) FetchMany(ctx context.Context, symbols []string) ([]market.Quote, error) {
	quotes := make([]market.Quote, len(symbols))
	found := make([]bool, len(symbols))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.maxConcurrency)
	for i, symbol := range symbols {
		eg.Go(func() error {
			a.limiter.Take()
			quote, err := a.fetchBySymbol(ctx, symbol)
			if err != nil {
				slog.Warn("skip stock quote", "symbol", symbol, "error", err)
				return nil
			}
			quotes[i], found[i] = quote, true
			return nil
		})
	}
	_ = eg.Wait()

	return lo.Filter(quotes, func(item market.Quote, index int) bool {
		return found[index]
	}), nil
}

func (a *ProfitAdapter) fetchBySymbol(ctx context.Context, symbol string) (market.Quote, error) {
	stock, err := a.client.Quote(ctx, symbol)
	if err != nil {
		return market.Quote{}, err
	}
	quote, ok := toQuote(stock)
	// 没有价格的记录不算有效报价
	if !ok || !quote.Price.IsPositive() {
		return market.Quote{}, fmt.Errorf("%w: no price for stock %s", errs.ErrNotFound, symbol)
	}
	return quote, nil
}

func toQuote(stock profit.Stock) (market.Quote, bool) {
	price, ok := decimalx.FromFloat(stock.Price)
	if !ok {
		return market.Quote{}, false
	}
	return market.Quote{
		Symbol:     stock.Symbol,
		Name:       stock.Name,
		MarketType: entity.MarketStock,
		Price:      price,
		Ticker:     stock.Ticker,
		Broker:     stock.Broker,
	}, true
}
