// Package markettest provides an in-memory market.Adapter for tests.
package markettest

import (
	"context"
	"fmt"
	"sync"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/KNICEX/market-pulse/internal/errs"
	"github.com/KNICEX/market-pulse/internal/service/market"
	"github.com/KNICEX/market-pulse/pkg/decimalx"
	"github.com/samber/lo"
)

// Adapter serves quotes from a symbol → price table. Safe for concurrent use.
type Adapter struct {
	marketType entity.MarketType

	mu          sync.Mutex
	prices      map[string]string
	names       map[string]string
	snapshot    []string
	err         error
	manyCalls   [][]string
	oneCalls    []string
	snapshotCnt int
}

func NewAdapter(marketType entity.MarketType) *Adapter {
	return &Adapter{
		marketType: marketType,
		prices:     map[string]string{},
		names:      map[string]string{},
	}
}

// SetPrice also adds the symbol to the snapshot the first time it is seen.
func (a *Adapter) SetPrice(symbol, name, price string) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.prices[symbol]; !ok {
		a.snapshot = append(a.snapshot, symbol)
	}
	a.prices[symbol] = price
	a.names[symbol] = name
	return a
}

// SetError makes every call fail with err until cleared with nil.
func (a *Adapter) SetError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *Adapter) ManyCalls() [][]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]string(nil), a.manyCalls...)
}

func (a *Adapter) OneCalls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.oneCalls...)
}

func (a *Adapter) SnapshotCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotCnt
}

func (a *Adapter) MarketType() entity.MarketType {
	return a.marketType
}

func (a *Adapter) FetchSnapshot(ctx context.Context) ([]market.Quote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshotCnt++
	if a.err != nil {
		return nil, a.err
	}
	return a.quotes(a.snapshot), nil
}

func (a *Adapter) FetchOne(ctx context.Context, instrument entity.Instrument) (market.Quote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.oneCalls = append(a.oneCalls, instrument.Symbol)
	if a.err != nil {
		return market.Quote{}, a.err
	}
	quotes := a.quotes([]string{instrument.Symbol})
	if len(quotes) == 0 {
		return market.Quote{}, fmt.Errorf("%w: %s", errs.ErrNotFound, instrument.Symbol)
	}
	return quotes[0], nil
}

func (a *Adapter) FetchMany(ctx context.Context, symbols []string) ([]market.Quote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.manyCalls = append(a.manyCalls, append([]string{}, symbols...))
	if a.err != nil {
		return nil, a.err
	}
	return a.quotes(symbols), nil
}

func (a *Adapter) quotes(symbols []string) []market.Quote {
	return lo.FilterMap(symbols, func(item string, index int) (market.Quote, bool) {
		price, ok := a.prices[item]
		if !ok {
			return market.Quote{}, false
		}
		return market.Quote{
			Symbol:     item,
			Name:       a.names[item],
			MarketType: a.marketType,
			Price:      decimalx.MustFromString(price),
		}, true
	})
}
