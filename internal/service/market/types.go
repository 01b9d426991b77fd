package market

import (
	"context"

	"github.com/KNICEX/market-pulse/internal/entity"
	"github.com/shopspring/decimal"
)

// Quote 某个标的的实时报价, 不落库
type Quote struct {
	Symbol     string            `json:"symbol"`
	Name       string            `json:"name"`
	MarketType entity.MarketType `json:"marketType"`
	Price      decimal.Decimal   `json:"price"`

	// crypto
	DayHigh decimal.NullDecimal `json:"dayHigh,omitempty"`
	DayLow  decimal.NullDecimal `json:"dayLow,omitempty"`

	// stock
	Ticker string `json:"ticker,omitempty"`
	Broker string `json:"broker,omitempty"`
}

// QuoteOf is the zero-priced quote of a catalog instrument.
func QuoteOf(instrument entity.Instrument) Quote {
	return Quote{
		Symbol:     instrument.Symbol,
		Name:       instrument.Name,
		MarketType: instrument.MarketType,
		Price:      decimal.Zero,
	}
}

// Adapter fetches live quotes of one market from an upstream provider.
type Adapter interface {
	MarketType() entity.MarketType
	// FetchSnapshot 返回该市场默认的全部报价
	FetchSnapshot(ctx context.Context) ([]Quote, error)
	// FetchOne returns errs.ErrNotFound when the provider has no data for the instrument.
	FetchOne(ctx context.Context, instrument entity.Instrument) (Quote, error)
	// FetchMany is best effort: symbols the provider cannot resolve are dropped from the result.
	FetchMany(ctx context.Context, symbols []string) ([]Quote, error)
}
