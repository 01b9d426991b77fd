package stock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/KNICEX/market-pulse/internal/service/market/profit"
	"github.com/KNICEX/market-pulse/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfit struct {
	mu      sync.Mutex
	stocks  map[string]profit.Stock
	listing []profit.Stock
	err     error
	asked   []string
}

func (f *fakeProfit) Stocks(ctx context.Context) ([]profit.Stock, error) {
	return f.listing, f.err
}

func (f *fakeProfit) Quote(ctx context.Context, symbol string) (profit.Stock, error) {
	f.mu.Lock()
	f.asked = append(f.asked, symbol)
	f.mu.Unlock()
	if f.err != nil {
		return profit.Stock{}, f.err
	}
	stock, ok := f.stocks[symbol]
	if !ok {
		return profit.Stock{}, fmt.Errorf("%w: stock %s", errs.ErrNotFound, symbol)
	}
	return stock, nil
}

func TestProfitAdapter_FetchManyPartialBatch(t *testing.T) {
	client := &fakeProfit{stocks: map[string]profit.Stock{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc", Price: 227.52, Ticker: "AAPL.US", Broker: "NASDAQ"},
	}}
	adapter := NewProfitAdapter(client)

	quotes, err := adapter.FetchMany(context.Background(), []string{"AAPL", "NOPE"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "AAPL", quotes[0].Symbol)
	assert.Equal(t, entity.MarketStock, quotes[0].MarketType)
	assert.Equal(t, "NASDAQ", quotes[0].Broker)
	assert.ElementsMatch(t, []string{"AAPL", "NOPE"}, client.asked)
}

func TestProfitAdapter_FetchManyKeepsInputOrder(t *testing.T) {
	symbols := []string{"MSFT", "AAPL", "TSLA", "NVDA", "AMZN", "GOOG", "META", "NFLX", "AMD", "INTC"}
	client := &fakeProfit{stocks: lo.SliceToMap(symbols, func(item string) (string, profit.Stock) {
		return item, profit.Stock{Symbol: item, Name: item, Price: 10}
	})}
	adapter := NewProfitAdapter(client, WithMaxConcurrency(3), WithRequestsPerSecond(1000))

	quotes, err := adapter.FetchMany(context.Background(), symbols)
	require.NoError(t, err)
	assert.Equal(t, symbols, lo.Map(quotes, func(item market.Quote, index int) string {
		return item.Symbol
	}))
}

func TestProfitAdapter_FetchManyAllFailed(t *testing.T) {
	client := &fakeProfit{err: errs.ErrTransport}
	adapter := NewProfitAdapter(client)

	quotes, err := adapter.FetchMany(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestProfitAdapter_FetchOne(t *testing.T) {
	client := &fakeProfit{stocks: map[string]profit.Stock{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc", Price: 100},
	}}
	adapter := NewProfitAdapter(client)

	quote, err := adapter.FetchOne(context.Background(), entity.Instrument{Symbol: "AAPL", MarketType: entity.MarketStock})
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimalx.MustFromString("100")))

	_, err = adapter.FetchOne(context.Background(), entity.Instrument{Symbol: "NOPE", MarketType: entity.MarketStock})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProfitAdapter_QuoteWithoutPrice(t *testing.T) {
	client := &fakeProfit{stocks: map[string]profit.Stock{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc", Price: 100},
		"HALT": {Symbol: "HALT", Name: "Halted Corp"},
	}}
	adapter := NewProfitAdapter(client)

	_, err := adapter.FetchOne(context.Background(), entity.Instrument{Symbol: "HALT", MarketType: entity.MarketStock})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	quotes, err := adapter.FetchMany(context.Background(), []string{"HALT", "AAPL"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "AAPL", quotes[0].Symbol)
}

func TestProfitAdapter_FetchSnapshot(t *testing.T) {
	client := &fakeProfit{listing: []profit.Stock{
		{Symbol: "AAPL", Name: "Apple Inc", Price: 227.52},
		{Symbol: "", Name: "Broken"},
		{Symbol: "MSFT", Name: "Microsoft Corp", Price: 415.1},
	}}
	adapter := NewProfitAdapter(client)

	quotes, err := adapter.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	client.err = errors.Join(errs.ErrTransport, errors.New("boom"))
	_, err = adapter.FetchSnapshot(context.Background())
	assert.ErrorIs(t, err, errs.ErrTransport)
}
